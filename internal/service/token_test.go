package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/testutil"
	"github.com/ebbingassist/backend/internal/utils"
)

func newTokenService(t *testing.T) (*TokenService, *AccountService) {
	t.Helper()
	db := testutil.OpenDB(t)
	tokens := NewTokenService(repository.NewTokenRepo(db), "secret", time.Minute, time.Hour)
	return tokens, NewAccountService(repository.NewUserRepo(db), tokens, bcrypt.MinCost)
}

func TestTokenService_LogoutRevokesOnlyThatToken(t *testing.T) {
	ctx := context.Background()
	tokens, accounts := newTokenService(t)

	_, pair, err := accounts.Register(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := tokens.Authenticate(ctx, pair.Access, model.TokenAccess)
	if err != nil {
		t.Fatalf("authenticate access: %v", err)
	}
	if !claims.Fresh {
		t.Error("access token from register should be fresh")
	}

	if _, err := tokens.Logout(ctx, pair.Access); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err = tokens.Authenticate(ctx, pair.Access, model.TokenAccess)
	wantAppError(t, err, apperror.ErrTokenRevoked)

	// Logging out twice fails because the token is already revoked, and
	// recording the same revocation again is a no-op.
	_, err = tokens.Logout(ctx, pair.Access)
	wantAppError(t, err, apperror.ErrTokenRevoked)
	if err := tokens.Revoke(ctx, claims); err != nil {
		t.Errorf("second revoke: %v", err)
	}

	// The refresh token issued with it is untouched.
	access, _, err := tokens.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	refreshed, err := tokens.Authenticate(ctx, access, model.TokenAccess)
	if err != nil {
		t.Fatalf("authenticate refreshed access: %v", err)
	}
	if refreshed.Fresh {
		t.Error("access token from refresh must not be fresh")
	}
}

func TestTokenService_KindsAndExpiry(t *testing.T) {
	ctx := context.Background()
	tokens, accounts := newTokenService(t)

	u, pair, err := accounts.Register(ctx, "a@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = tokens.Authenticate(ctx, pair.Refresh, model.TokenAccess)
	wantAppError(t, err, apperror.ErrWrongTokenKind)
	_, _, err = tokens.Refresh(ctx, pair.Access)
	wantAppError(t, err, apperror.ErrWrongTokenKind)

	_, err = tokens.Authenticate(ctx, "", model.TokenAccess)
	wantAppError(t, err, apperror.ErrMissingAuthorization)
	_, err = tokens.Authenticate(ctx, "garbage", model.TokenAccess)
	wantAppError(t, err, apperror.ErrInvalidToken)

	expired, err := utils.NewToken("secret", u.ID, model.TokenAccess, false, -time.Second)
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	_, err = tokens.Authenticate(ctx, expired.Token, model.TokenAccess)
	wantAppError(t, err, apperror.ErrTokenExpired)

	// Logging out a refresh token revokes it for refresh.
	if _, err := tokens.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("logout refresh: %v", err)
	}
	_, _, err = tokens.Refresh(ctx, pair.Refresh)
	wantAppError(t, err, apperror.ErrTokenRevoked)
}

func TestAccountService_RegisterLoginProfile(t *testing.T) {
	ctx := context.Background()
	_, accounts := newTokenService(t)

	_, _, err := accounts.Register(ctx, " ", "pw")
	wantAppError(t, err, apperror.MissingFields("email"))

	u, _, err := accounts.Register(ctx, "Alice@Example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err = accounts.Register(ctx, "alice@example.com", "other")
	wantAppError(t, err, apperror.ErrEmailExists)

	_, _, err = accounts.Login(ctx, "alice@example.com", "wrong")
	wantAppError(t, err, apperror.ErrInvalidCredentials)
	_, _, err = accounts.Login(ctx, "nobody@example.com", "pw")
	wantAppError(t, err, apperror.ErrInvalidCredentials)
	if _, _, err := accounts.Login(ctx, "ALICE@example.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}

	profile, err := accounts.Profile(ctx, u.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Nickname != "alice" || profile.Timezone != "UTC" || len(profile.Roles) != 1 || profile.Prefs == nil {
		t.Errorf("default profile = %+v", profile)
	}

	profile, err = accounts.UpdateProfile(ctx, u.ID, ProfileInput{
		Phone:    model.Some("13800000000"),
		Nickname: model.Some("Ali"),
		Prefs:    model.Some(model.JSONObject{"theme": "dark"}),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if profile.Nickname != "Ali" || profile.Phone == nil || profile.Prefs["theme"] != "dark" {
		t.Errorf("updated profile = %+v", profile)
	}
	if _, _, err := accounts.Login(ctx, "13800000000", "pw"); err != nil {
		t.Errorf("login by phone: %v", err)
	}

	other, _, _ := accounts.Register(ctx, "bob@example.com", "pw")
	_, err = accounts.UpdateProfile(ctx, other.ID, ProfileInput{Phone: model.Some("13800000000")})
	wantAppError(t, err, apperror.ErrPhoneExists)
}

func TestAccountService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	_, accounts := newTokenService(t)
	u, _, _ := accounts.Register(ctx, "a@example.com", "old")

	wantAppError(t, accounts.ChangePassword(ctx, u.ID, "nope", "new"), apperror.ErrInvalidCredentials)
	wantAppError(t, accounts.ChangePassword(ctx, u.ID, "old", ""), apperror.MissingFields("new_password"))

	if err := accounts.ChangePassword(ctx, u.ID, "old", "new"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	_, _, err := accounts.Login(ctx, "a@example.com", "old")
	wantAppError(t, err, apperror.ErrInvalidCredentials)
	if _, _, err := accounts.Login(ctx, "a@example.com", "new"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestAccountService_PasswordTooLong(t *testing.T) {
	ctx := context.Background()
	_, accounts := newTokenService(t)
	long := strings.Repeat("a", utils.MaxPasswordBytes+8)

	_, _, err := accounts.Register(ctx, "long@example.com", long)
	wantAppError(t, err, apperror.ErrPasswordTooLong)
	if _, err := accounts.Users.GetByAccount(ctx, "long@example.com"); err == nil {
		t.Error("user stored despite rejected password")
	}

	// exactly at the limit is accepted
	u, _, err := accounts.Register(ctx, "edge@example.com", strings.Repeat("b", utils.MaxPasswordBytes))
	if err != nil {
		t.Fatalf("register with %d byte password: %v", utils.MaxPasswordBytes, err)
	}

	err = accounts.ChangePassword(ctx, u.ID, strings.Repeat("b", utils.MaxPasswordBytes), long)
	wantAppError(t, err, apperror.ErrPasswordTooLong)
	if _, _, err := accounts.Login(ctx, "edge@example.com", strings.Repeat("b", utils.MaxPasswordBytes)); err != nil {
		t.Errorf("old password stopped working: %v", err)
	}
}
