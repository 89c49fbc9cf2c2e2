package model

import (
	"strings"
	"time"
)

// User represents an account as stored in the `users` table. Users are
// never hard-deleted.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address.
//	Phone        – optional unique phone number, usable as login account.
//	PasswordHash – bcrypt hash of the password.
//	Nickname     – optional display name.
//	Avatar       – optional avatar URL.
//	Timezone     – IANA zone name used by clients, "UTC" by default.
//	Prefs        – free-form display preferences.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	Phone        *string    // users.phone (nullable)
	PasswordHash string     // users.password_hash
	Nickname     *string    // users.nickname (nullable)
	Avatar       *string    // users.avatar (nullable)
	Timezone     string     // users.timezone
	Prefs        JSONObject // users.prefs
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// DisplayName falls back to the local part of the email when no nickname
// has been set.
func (u *User) DisplayName() string {
	if u.Nickname != nil && strings.TrimSpace(*u.Nickname) != "" {
		return *u.Nickname
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// TokenKind distinguishes short-lived access tokens from long-lived
// refresh tokens.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Valid reports whether k is a known kind.
func (k TokenKind) Valid() bool {
	return k == TokenAccess || k == TokenRefresh
}

// RevokedToken models an entry in the `auth_tokens` revocation ledger. The
// ledger stores revocations only: a token whose id has no row is valid
// until it expires. A token id appears at most once.
//
// Fields:
//
//	ID        – primary key identifier.
//	TokenID   – the token's jti.
//	Kind      – access or refresh.
//	UserID    – owner of the token.
//	Revoked   – always true for rows written by logout.
//	CreatedAt – when the revocation was recorded.
//	ExpiresAt – natural expiry of the revoked token (nullable).
type RevokedToken struct {
	ID        uint64     // auth_tokens.id
	TokenID   string     // auth_tokens.jti
	Kind      TokenKind  // auth_tokens.token_type
	UserID    uint64     // auth_tokens.user_id
	Revoked   bool       // auth_tokens.revoked
	CreatedAt time.Time  // auth_tokens.created_at
	ExpiresAt *time.Time // auth_tokens.expires_at (nullable)
}
