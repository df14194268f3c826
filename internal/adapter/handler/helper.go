package handler

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/errors"
	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/usecase/pipeline"
)

// ExtractToken extracts the authentication token from the request.
// It checks the Authorization header first, then the access_token cookie.
func ExtractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// SetTokenCookie sets the access token cookie with common security settings
func SetTokenCookie(c echo.Context, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// DeleteTokenCookie deletes the access token cookie by setting MaxAge to -1
func DeleteTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:   "access_token",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// toAppError translates domain and pipeline errors into AppError so that
// HandleError renders the right HTTP status and code.
func toAppError(err error) error {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	var invalid *pipeline.ValidationError
	if stdErrors.As(err, &invalid) {
		return errors.ErrUploadInvalid(invalid.Reason)
	}
	var rejected *pipeline.RoleRejectedError
	if stdErrors.As(err, &rejected) {
		return errors.ErrRoleRejected(rejected.Reason)
	}

	switch {
	case stdErrors.Is(err, entities.ErrConversationNotFound):
		return errors.ErrNotFound("conversation")
	case stdErrors.Is(err, entities.ErrPromptNotFound):
		return errors.ErrNotFound("prompt")
	case stdErrors.Is(err, entities.ErrBackupNotFound):
		return errors.ErrNotFound("backup")
	case stdErrors.Is(err, entities.ErrInvalidAnalysisKind):
		return errors.ErrInvalidArgument("unknown analysis kind")
	case stdErrors.Is(err, entities.ErrInvalidCredentials):
		return errors.ErrInvalidCredentials()
	case stdErrors.Is(err, entities.ErrInvalidToken):
		return errors.ErrInvalidToken()
	case stdErrors.Is(err, entities.ErrSessionExpired), stdErrors.Is(err, entities.ErrSessionNotFound):
		return errors.ErrSessionExpired()
	}

	return err
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)
	err = toAppError(err)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	// Non-AppError => internal server error
	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}
