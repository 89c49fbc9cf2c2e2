package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebbingassist/backend/internal/model"
)

// TokenRepo is the revocation ledger stored in `auth_tokens`. Rows are
// only ever inserted; the unique index on jti keeps one row per token.
type TokenRepo struct{ DB DBTX }

func NewTokenRepo(db DBTX) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records t as revoked. Recording the same token id twice is not an
// error: the first row wins and the token stays revoked.
func (r *TokenRepo) Revoke(ctx context.Context, t *model.RevokedToken) error {
	t.Revoked = true
	t.CreatedAt = now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO auth_tokens (jti, token_type, user_id, revoked, created_at, expires_at) VALUES (?,?,?,?,?,?)",
		t.TokenID, string(t.Kind), t.UserID, t.Revoked, t.CreatedAt, t.ExpiresAt)
	if err != nil {
		if isDuplicate(err) {
			return nil
		}
		return err
	}
	t.ID, err = lastID(res)
	return err
}

// IsRevoked is a point lookup by token id.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT revoked FROM auth_tokens WHERE jti=? LIMIT 1", tokenID).Scan(&revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// Get returns the ledger row for tokenID.
func (r *TokenRepo) Get(ctx context.Context, tokenID string) (*model.RevokedToken, error) {
	var (
		t    model.RevokedToken
		kind string
		exp  sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, jti, token_type, user_id, revoked, created_at, expires_at FROM auth_tokens WHERE jti=? LIMIT 1",
		tokenID).Scan(&t.ID, &t.TokenID, &kind, &t.UserID, &t.Revoked, &t.CreatedAt, &exp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Kind = model.TokenKind(kind)
	if exp.Valid {
		e := exp.Time
		t.ExpiresAt = &e
	}
	return &t, nil
}
