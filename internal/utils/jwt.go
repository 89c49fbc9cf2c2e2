package utils // package utils provides helpers for token creation and password hashing

import (
	"crypto/rand" // entropy source for token ids
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/oklog/ulid/v2"     // sortable unique token ids

	"github.com/ebbingassist/backend/internal/model"
)

// Errors returned by ParseToken. ErrTokenExpired is kept apart so callers
// can report expiry with its own code.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload of both access and refresh tokens. The standard
// claims carry the subject (user id), the token id (jti), the expiry and
// the issue time; Type tells the two kinds apart and Fresh marks access
// tokens minted directly from a password check.
type Claims struct {
	Type  model.TokenKind `json:"type"`
	Fresh bool            `json:"fresh,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// SignedToken is a serialized JWT together with the values the revocation
// ledger needs.
type SignedToken struct {
	Token string    // the serialized JWT string
	ID    string    // jti
	Exp   time.Time // UTC expiration time
}

// NewToken builds and signs an HS256 JWT of the given kind for a user.
func NewToken(secret string, userID uint64, kind model.TokenKind, fresh bool, ttl time.Duration) (SignedToken, error) {
	issued := time.Now().UTC()
	exp := issued.Add(ttl)
	id, err := ulid.New(ulid.Timestamp(issued), rand.Reader)
	if err != nil {
		return SignedToken{}, err
	}
	claims := Claims{
		Type:  kind,
		Fresh: fresh && kind == model.TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ID:        id.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, ID: claims.ID, Exp: exp}, nil
}

// ParseToken verifies the signature and registered claims of raw and
// returns its payload. Only HS256 is accepted.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if claims.ID == "" || !claims.Type.Valid() {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
