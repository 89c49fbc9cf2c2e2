package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/service"
)

// UserHandler serves the caller's own account.
type UserHandler struct {
	Accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{Accounts: accounts}
}

type passwordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Profile returns the caller's profile.
func (h *UserHandler) Profile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	p, err := h.Accounts.Profile(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return OK(c, p, "")
}

// UpdateProfile applies a partial profile update.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.ProfileInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	p, err := h.Accounts.UpdateProfile(c.Request().Context(), uid, in)
	if err != nil {
		return err
	}
	return OK(c, p, "profile_updated")
}

// ChangePassword replaces the caller's password. The route requires a
// fresh access token.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req passwordReq
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.Accounts.ChangePassword(c.Request().Context(), uid, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return OK(c, nil, "password_changed")
}
