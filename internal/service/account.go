package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/utils"
)

// AccountService registers users, verifies credentials and edits profiles.
type AccountService struct {
	Users      *repository.UserRepo
	Tokens     *TokenService
	BcryptCost int
}

func NewAccountService(users *repository.UserRepo, tokens *TokenService, bcryptCost int) *AccountService {
	return &AccountService{Users: users, Tokens: tokens, BcryptCost: bcryptCost}
}

// Profile is the public view of a user.
type Profile struct {
	ID       uint64           `json:"id"`
	Email    string           `json:"email"`
	Phone    *string          `json:"phone"`
	Nickname string           `json:"nickname"`
	Avatar   *string          `json:"avatar"`
	Timezone string           `json:"timezone"`
	Roles    []string         `json:"roles"`
	Prefs    model.JSONObject `json:"prefs"`
}

// ProfileInput is a partial profile update.
type ProfileInput struct {
	Phone    model.Optional[string]           `json:"phone"`
	Nickname model.Optional[string]           `json:"nickname"`
	Avatar   model.Optional[string]           `json:"avatar"`
	Timezone model.Optional[string]           `json:"timezone"`
	Prefs    model.Optional[model.JSONObject] `json:"prefs"`
}

// Register creates an account and returns it with a fresh token pair.
func (s *AccountService) Register(ctx context.Context, email, password string) (*model.User, TokenPair, error) {
	email = repository.NormalizeEmail(email)
	if missing := missingFields(map[string]string{"email": email, "password": password}, "email", "password"); len(missing) > 0 {
		return nil, TokenPair{}, apperror.MissingFields(missing...)
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, TokenPair{}, apperror.ErrPasswordTooLong
	}
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := &model.User{Email: email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, TokenPair{}, apperror.ErrEmailExists
		}
		return nil, TokenPair{}, err
	}
	pair, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Login verifies account (email or phone) and password. Unknown accounts
// and wrong passwords fail identically.
func (s *AccountService) Login(ctx context.Context, account, password string) (*model.User, TokenPair, error) {
	account = strings.TrimSpace(account)
	if missing := missingFields(map[string]string{"account": account, "password": password}, "account", "password"); len(missing) > 0 {
		return nil, TokenPair{}, apperror.MissingFields(missing...)
	}
	u, err := s.Users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, apperror.ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, apperror.ErrInvalidCredentials
	}
	pair, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Profile returns the profile of userID.
func (s *AccountService) Profile(ctx context.Context, userID uint64) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return toProfile(u), nil
}

// UpdateProfile applies the supplied fields. Blank strings clear optional
// fields; a blank timezone resets it to UTC.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint64, in ProfileInput) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if in.Phone.Set {
		u.Phone = trimmedOrNil(in.Phone.Ptr())
	}
	if in.Nickname.Set {
		u.Nickname = trimmedOrNil(in.Nickname.Ptr())
	}
	if in.Avatar.Set {
		u.Avatar = trimmedOrNil(in.Avatar.Ptr())
	}
	if in.Timezone.Set {
		u.Timezone = strings.TrimSpace(in.Timezone.Value)
		if u.Timezone == "" {
			u.Timezone = "UTC"
		}
	}
	if in.Prefs.Set {
		u.Prefs = in.Prefs.Value
		if u.Prefs == nil {
			u.Prefs = model.JSONObject{}
		}
	}
	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.ErrPhoneExists
		}
		return nil, err
	}
	return toProfile(u), nil
}

// ChangePassword replaces the password after checking the old one. The
// caller must have authenticated with a fresh access token.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	if missing := missingFields(map[string]string{"old_password": oldPassword, "new_password": newPassword}, "old_password", "new_password"); len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}
	if len(newPassword) > utils.MaxPasswordBytes {
		return apperror.ErrPasswordTooLong
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return apperror.ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

func toProfile(u *model.User) *Profile {
	prefs := u.Prefs
	if prefs == nil {
		prefs = model.JSONObject{}
	}
	tz := u.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return &Profile{
		ID:       u.ID,
		Email:    u.Email,
		Phone:    u.Phone,
		Nickname: u.DisplayName(),
		Avatar:   u.Avatar,
		Timezone: tz,
		Roles:    []string{"user"},
		Prefs:    prefs,
	}
}
