package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/accordfamily/accord-backend/errors"
	"github.com/accordfamily/accord-backend/internal/domain/entities"
)

type success struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Info    map[string]string `json:"info,omitempty"`
}

// HandleSuccess writes a uniform success envelope
func HandleSuccess(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, success{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// HandleCreated writes a success envelope with a 201 status
func HandleCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, success{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    data,
	})
}

// HandleError maps an error to its HTTP representation. AppError values
// carry their own status and public message; anything else becomes an
// opaque 500 so internals never leak to clients.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("code", appErr.Code.String()),
				zap.Error(err))
		} else {
			logger.Warn("request rejected",
				zap.String("path", c.Path()),
				zap.String("code", appErr.Code.String()),
				zap.String("message", appErr.Message))
		}
		return c.JSON(appErr.HTTPCode, errs{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Info:    appErr.Details,
		})
	}

	logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errs{
		Code:    apperrors.ErrorCode_INTERNAL.String(),
		Message: "Internal server error",
	})
}

// ExtractToken pulls the bearer token from the Authorization header
func ExtractToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// CurrentUser returns the authenticated user placed in the context by the
// auth middleware.
func CurrentUser(c echo.Context) (*entities.User, error) {
	user, ok := c.Get("user").(*entities.User)
	if !ok || user == nil {
		return nil, apperrors.ErrInvalidToken()
	}
	return user, nil
}
