package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/api-edge/internal/auth"
	"github.com/iliyamo/api-edge/internal/response"
)

// AuthHandler translates HTTP requests into token authority calls and maps
// domain outcomes to status codes. Internal faults are logged with context
// and answered with a generic message.
type AuthHandler struct {
	Authority *auth.Authority
	Log       *slog.Logger
}

func NewAuthHandler(a *auth.Authority, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{Authority: a, Log: log}
}

// ----- request bodies -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type verifyEmailReq struct {
	Token string `json:"token"`
}

// Register creates a user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "email, password and full_name are required")
	}

	grant, err := h.Authority.Register(c.Request().Context(), auth.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		return h.mapError(c, "register", err)
	}
	return response.OK(c, http.StatusCreated, grant)
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "email and password are required")
	}

	grant, err := h.Authority.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.mapError(c, "login", err)
	}
	return response.OK(c, http.StatusOK, grant)
}

// Refresh exchanges a refresh token for a new pair; no user payload.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "refresh_token required")
	}

	grant, err := h.Authority.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return h.mapError(c, "refresh", err)
	}
	return response.OK(c, http.StatusOK, grant)
}

// Logout revokes the bearer token from the Authorization header. A missing
// or garbled token is still a successful logout; only an internal fault is
// a non-2xx.
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if raw, ok := strings.CutPrefix(authHeader, "Bearer "); ok && raw != "" {
		if err := h.Authority.Logout(c.Request().Context(), raw); err != nil {
			return h.mapError(c, "logout", err)
		}
	}
	return response.OK(c, http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// VerifyEmail confirms the email address embedded in a signed token.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeValidation, "token required")
	}

	if err := h.Authority.VerifyEmail(c.Request().Context(), strings.TrimSpace(req.Token)); err != nil {
		return h.mapError(c, "verify-email", err)
	}
	return response.OK(c, http.StatusOK, echo.Map{"message": "Email verified successfully"})
}

// Me echoes the authenticated subject; exercises the full access-token
// verification chain on a protected route.
func (h *AuthHandler) Me(c echo.Context) error {
	return response.OK(c, http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
	})
}

// mapError converts domain outcomes to transport codes; everything else is
// an internal fault answered generically.
func (h *AuthHandler) mapError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, auth.ErrConflict):
		return response.Fail(c, http.StatusConflict, response.CodeConflict, "User already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		return response.Fail(c, http.StatusUnauthorized, response.CodeInvalidToken, "invalid token")
	default:
		h.Log.Error("auth operation failed", "op", op, "err", err)
		return response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "an unexpected error occurred")
	}
}
