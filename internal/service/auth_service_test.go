package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"vacuum_bridge/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key"

func newTestAuth(t *testing.T, password string) *AuthService {
	t.Helper()
	hash := ""
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		hash = string(b)
	}
	return NewAuthService(config.AuthConfig{
		Username:     "operator",
		PasswordHash: hash,
		SigningKey:   testSigningKey,
		TokenTTL:     time.Hour,
	})
}

func TestAuthService_GenerateToken_Success(t *testing.T) {
	t.Parallel()

	svc := newTestAuth(t, "letmein")
	token, err := svc.GenerateToken("operator", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	sub, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if sub != "operator" {
		t.Fatalf("expected subject operator, got %q", sub)
	}
}

func TestAuthService_GenerateToken_Errors(t *testing.T) {
	t.Parallel()

	svc := newTestAuth(t, "correct")
	if _, err := svc.GenerateToken("ghost", "correct"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GenerateToken("operator", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestAuthService_Disabled(t *testing.T) {
	t.Parallel()

	svc := newTestAuth(t, "")
	if svc.Enabled() {
		t.Fatalf("auth without a password hash must be disabled")
	}
	if _, err := svc.GenerateToken("operator", "x"); !errors.Is(err, ErrAuthDisabled) {
		t.Fatalf("expected ErrAuthDisabled, got %v", err)
	}
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	t.Parallel()

	svc := newTestAuth(t, "pw")
	now := time.Now()

	sign := func(claims jwt.RegisteredClaims, key string) string {
		tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		return tk
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	rs256, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	cases := map[string]string{
		"malformed":      "not-a-jwt",
		"wrong key":      sign(jwt.RegisteredClaims{Subject: "operator", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, "other-key"),
		"expired":        sign(jwt.RegisteredClaims{Subject: "operator", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))}, testSigningKey),
		"empty subject":  sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, testSigningKey),
		"unexpected alg": rs256,
	}
	for name, token := range cases {
		if _, err := svc.ParseToken(token); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
