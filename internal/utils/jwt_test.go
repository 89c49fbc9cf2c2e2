package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ebbingassist/backend/internal/model"
)

const testSecret = "test-secret"

func TestNewToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(testSecret, 42, model.TokenAccess, true, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	claims, err := ParseToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	uid, err := claims.UserID()
	if err != nil || uid != 42 {
		t.Errorf("UserID = %d, %v; want 42", uid, err)
	}
	if claims.Type != model.TokenAccess {
		t.Errorf("Type = %s, want access", claims.Type)
	}
	if !claims.Fresh {
		t.Error("access token minted fresh should carry fresh=true")
	}
	if claims.ID != tok.ID || len(tok.ID) != 26 {
		t.Errorf("jti = %q, token id = %q", claims.ID, tok.ID)
	}
	if d := time.Until(tok.Exp); d <= 0 || d > time.Minute {
		t.Errorf("Exp %v not within ttl", tok.Exp)
	}
}

func TestNewToken_RefreshIsNeverFresh(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(testSecret, 1, model.TokenRefresh, true, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	claims, err := ParseToken(testSecret, tok.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Fresh || claims.Type != model.TokenRefresh {
		t.Errorf("claims = %+v", claims)
	}
}

func TestNewToken_UniqueIDs(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := NewToken(testSecret, 1, model.TokenAccess, false, time.Minute)
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if seen[tok.ID] {
			t.Fatalf("duplicate jti %s", tok.ID)
		}
		seen[tok.ID] = true
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewToken(testSecret, 1, model.TokenAccess, false, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := ParseToken(testSecret, tok.Token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	good, _ := NewToken(testSecret, 1, model.TokenAccess, false, time.Minute)

	parts := strings.Split(good.Token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Type: model.TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ID:        "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	noneSigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type:             model.TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ID: "abc"},
	})
	noExpSigned, _ := noExp.SignedString([]byte(testSecret))

	badType := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ID:        "abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	badTypeSigned, _ := badType.SignedString([]byte(testSecret))

	tests := map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"tampered":     tampered,
		"alg none":     noneSigned,
		"no exp":       noExpSigned,
		"unknown type": badTypeSigned,
	}
	for name, raw := range tests {
		if _, err := ParseToken(testSecret, raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("%s: err = %v, want ErrTokenInvalid", name, err)
		}
	}

	if _, err := ParseToken("other-secret", good.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("wrong secret: err = %v, want ErrTokenInvalid", err)
	}
}
