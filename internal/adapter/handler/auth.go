package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/errors"
	authdto "github.com/kindcoach/kindcoach-api/internal/adapter/dto/auth"
	"github.com/kindcoach/kindcoach-api/internal/usecase/auth"
)

// Auth handles authentication HTTP requests
type Auth struct {
	authService *auth.Service
	logger      *zap.Logger
}

// NewAuth creates a new auth handler
func NewAuth(authService *auth.Service, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates the operator and issues an access token
// @Summary      Operator login
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      authdto.LoginRequest  true  "Login credentials"
// @Success      200      {object}  authdto.LoginResponse
// @Failure      401      {object}  map[string]interface{}  "Invalid credentials"
// @Router       /auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req authdto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ttl := h.authService.SessionTTL()
	SetTokenCookie(c, token, int(ttl.Seconds()))

	return HandleSuccess(h.logger, c, http.StatusOK, authdto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

// Logout ends the current session
// @Summary      Operator logout
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *Auth) Logout(c echo.Context) error {
	token := ExtractToken(c)
	if token == "" {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return HandleError(h.logger, c, err)
	}

	DeleteTokenCookie(c)
	return HandleSuccess(h.logger, c, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// Me returns the authenticated operator
// @Summary      Current operator
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authdto.MeResponse
// @Router       /auth/me [get]
func (h *Auth) Me(c echo.Context) error {
	username, ok := c.Get("username").(string)
	if !ok || username == "" {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	return HandleSuccess(h.logger, c, http.StatusOK, authdto.MeResponse{Username: username})
}
