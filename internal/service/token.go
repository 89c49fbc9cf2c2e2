// Package service holds the application logic between HTTP handlers and
// repositories: the token ledger, accounts, the plan/task engine and the
// knowledge and study-log stores. Services return *apperror.Error values
// for every failure a client can act on.
package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/utils"
)

// TokenPair is what register and login hand back to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService mints tokens and keeps the revocation ledger.
type TokenService struct {
	Ledger     *repository.TokenRepo
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokenService(ledger *repository.TokenRepo, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{Ledger: ledger, Secret: secret, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

// Issue mints a fresh access token and a refresh token for userID.
func (s *TokenService) Issue(userID uint64) (TokenPair, error) {
	access, err := utils.NewToken(s.Secret, userID, model.TokenAccess, true, s.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewToken(s.Secret, userID, model.TokenRefresh, false, s.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access.Token, Refresh: refresh.Token}, nil
}

// IsRevoked reports whether a revocation has been recorded for tokenID.
func (s *TokenService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.Ledger.IsRevoked(ctx, tokenID)
}

// Revoke records the revocation of the token described by claims.
// Revoking the same token twice is a no-op.
func (s *TokenService) Revoke(ctx context.Context, claims *utils.Claims) error {
	userID, err := claims.UserID()
	if err != nil {
		return apperror.ErrInvalidToken
	}
	rec := &model.RevokedToken{TokenID: claims.ID, Kind: claims.Type, UserID: userID}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.UTC().Truncate(time.Second)
		rec.ExpiresAt = &exp
	}
	return s.Ledger.Revoke(ctx, rec)
}

// Authenticate parses raw, checks that its kind is one of kinds (any kind
// when none is given) and that it has not been revoked.
func (s *TokenService) Authenticate(ctx context.Context, raw string, kinds ...model.TokenKind) (*utils.Claims, error) {
	if raw == "" {
		return nil, apperror.ErrMissingAuthorization
	}
	claims, err := utils.ParseToken(s.Secret, raw)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}
		return nil, apperror.ErrInvalidToken
	}
	if len(kinds) > 0 && !slices.Contains(kinds, claims.Type) {
		return nil, apperror.ErrWrongTokenKind
	}
	revoked, err := s.Ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperror.ErrTokenRevoked
	}
	return claims, nil
}

// Refresh mints a new, non-fresh access token from a valid refresh token.
// The refresh token itself stays usable until it expires or is logged out.
func (s *TokenService) Refresh(ctx context.Context, raw string) (string, *utils.Claims, error) {
	claims, err := s.Authenticate(ctx, raw, model.TokenRefresh)
	if err != nil {
		return "", nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", nil, apperror.ErrInvalidToken
	}
	access, err := utils.NewToken(s.Secret, userID, model.TokenAccess, false, s.AccessTTL)
	if err != nil {
		return "", nil, err
	}
	return access.Token, claims, nil
}

// Logout revokes the presented token, whatever its kind.
func (s *TokenService) Logout(ctx context.Context, raw string) (*utils.Claims, error) {
	claims, err := s.Authenticate(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := s.Revoke(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
