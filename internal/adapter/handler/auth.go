package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	authdto "github.com/accordfamily/accord-backend/internal/adapter/dto/auth"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
	"github.com/accordfamily/accord-backend/internal/usecase/auth"
)

// AuthHandler handles account registration and sign-in endpoints
type AuthHandler struct {
	auth   *auth.Service
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// Signup godoc
// @Summary Register a parent account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignupRequest true "Registration details"
// @Success 201 {object} auth.UserResponse
// @Router /v1/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req authdto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	user, err := h.auth.Signup(c.Request().Context(), auth.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		ParentalRole:     entities.ParentalRole(req.ParentalRole),
		Language:         req.Language,
		OtherParentEmail: req.OtherParentEmail,
		PhoneNumber:      req.PhoneNumber,
		Timezone:         req.Timezone,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleCreated(c, toUserResponse(user))
}

// Signin godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SigninRequest true "Credentials"
// @Success 200 {object} auth.SigninResponse
// @Router /v1/auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req authdto.SigninRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	out, err := h.auth.Signin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, authdto.SigninResponse{
		AccessToken: out.AccessToken,
		ExpiresAt:   out.ExpiresAt,
		User:        toUserResponse(out.User),
	})
}

// Signout godoc
// @Summary Revoke the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /v1/auth/signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidToken())
	}
	if err := h.auth.Signout(c.Request().Context(), token); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, nil)
}

// Me godoc
// @Summary Return the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.UserResponse
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(c, toUserResponse(user))
}

func toUserResponse(user *entities.User) authdto.UserResponse {
	return authdto.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Name:         user.Name,
		ParentalRole: string(user.ParentalRole),
		Language:     user.Language,
	}
}
