package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/adapter/dto/common"
	"github.com/accordfamily/accord-backend/internal/domain/repositories"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notifications repositories.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications repositories.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List godoc
// @Summary List the user's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} entities.Notification
// @Router /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var query common.ListQuery
	if err := c.Bind(&query); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid query parameters"))
	}
	query.Normalize()

	notifications, err := h.notifications.ListFor(c.Request().Context(), user.Email, query.Limit, query.Offset)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("list notifications", err))
	}
	return HandleSuccess(c, notifications)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Router /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if _, err := CurrentUser(c); err != nil {
		return HandleError(h.logger, c, err)
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid notification id"))
	}

	if err := h.notifications.MarkRead(c.Request().Context(), notificationID); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed("mark notification read", err))
	}
	return HandleSuccess(c, nil)
}
