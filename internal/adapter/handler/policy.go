package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	policydto "github.com/accordfamily/accord-backend/internal/adapter/dto/policy"
	"github.com/accordfamily/accord-backend/internal/usecase/policy"
)

const documentURLExpiry = 15 * time.Minute

// PolicyHandler handles court order endpoints
type PolicyHandler struct {
	policy *policy.Service
	logger *zap.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policyService *policy.Service, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{policy: policyService, logger: logger}
}

// Upload godoc
// @Summary Upload court orders, replacing the active set
// @Tags policy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body policy.UploadOrdersRequest true "Order text"
// @Success 201 {object} entities.Policy
// @Router /v1/policy/orders [post]
func (h *PolicyHandler) Upload(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req policydto.UploadOrdersRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	uploaded, err := h.policy.Upload(c.Request().Context(), policy.UploadInput{
		OrdersText:      req.OrdersText,
		UploadedByID:    user.ID,
		UploadedByEmail: user.Email,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, uploaded)
}

// ActiveOrders godoc
// @Summary Return the active court order text
// @Tags policy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} policy.OrdersResponse
// @Router /v1/policy/orders [get]
func (h *PolicyHandler) ActiveOrders(c echo.Context) error {
	text, err := h.policy.ActiveOrders(c.Request().Context())
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, policydto.OrdersResponse{OrdersText: text})
}

// DocumentURL godoc
// @Summary Return a presigned link to the archived order document
// @Tags policy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} policy.DocumentURLResponse
// @Router /v1/policy/orders/document [get]
func (h *PolicyHandler) DocumentURL(c echo.Context) error {
	url, err := h.policy.ActiveDocumentURL(c.Request().Context(), documentURLExpiry)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, policydto.DocumentURLResponse{
		URL:       url,
		ExpiresIn: int(documentURLExpiry.Seconds()),
	})
}
