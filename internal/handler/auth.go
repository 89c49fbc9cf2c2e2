package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/middleware"
	"github.com/ebbingassist/backend/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

func NewAuthHandler(accounts *service.AccountService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type authResp struct {
	UserID uint64            `json:"user_id"`
	Tokens service.TokenPair `json:"tokens"`
}

// Register creates an account and returns a fresh token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	u, pair, err := h.Accounts.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	middleware.FromContext(c).UserID = u.ID
	return OK(c, authResp{UserID: u.ID, Tokens: pair}, "registered")
}

// Login verifies email-or-phone and password and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	u, pair, err := h.Accounts.Login(c.Request().Context(), req.Account, req.Password)
	if err != nil {
		return err
	}
	middleware.FromContext(c).UserID = u.ID
	return OK(c, authResp{UserID: u.ID, Tokens: pair}, "login_success")
}

// Refresh exchanges the bearer refresh token for a new access token. The
// refresh token is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	access, claims, err := h.Tokens.Refresh(c.Request().Context(), middleware.BearerToken(c))
	if err != nil {
		return err
	}
	middleware.SetIdentity(c, claims)
	return OK(c, echo.Map{"access": access}, "refreshed")
}

// Logout revokes the bearer token, access or refresh.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := h.Tokens.Logout(c.Request().Context(), middleware.BearerToken(c))
	if err != nil {
		return err
	}
	middleware.SetIdentity(c, claims)
	return OK(c, nil, "logged_out")
}
