package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/adapters/auth"
	"hotel_booking/internal/domain"
)

func TestJWT_RoundTrip(t *testing.T) {
	j, err := auth.NewJWT("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, exp, err := j.Issue("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("expiry too early: %v", exp)
	}
	sub, err := j.Verify(tok)
	if err != nil || sub != "user-1" {
		t.Fatalf("verify: %q %v", sub, err)
	}
}

func TestJWT_Rejects(t *testing.T) {
	j, _ := auth.NewJWT("test-secret", time.Hour)
	other, _ := auth.NewJWT("other-secret", time.Hour)
	expired, _ := auth.NewJWT("test-secret", -time.Minute)

	wrongKey, _, _ := other.Issue("u", domain.RoleUser)
	stale, _, _ := expired.Issue("u", domain.RoleUser)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa: %v", err)
	}
	rs, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign rs256: %v", err)
	}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   wrongKey,
		"expired":        stale,
		"wrong method":   rs,
		"missing expiry": noExp,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := j.Verify(tok); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	if _, err := auth.NewJWT("", time.Hour); err == nil {
		t.Fatalf("empty secret should fail")
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := auth.TokenFromRequest(r); got != "" {
		t.Fatalf("empty request: %q", got)
	}

	r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
	if got := auth.TokenFromRequest(r); got != "from-cookie" {
		t.Fatalf("cookie: %q", got)
	}

	r.Header.Set("Authorization", "Bearer from-header")
	if got := auth.TokenFromRequest(r); got != "from-header" {
		t.Fatalf("header wins: %q", got)
	}

	r2 := httptest.NewRequest("GET", "/", nil)
	r2.Header.Set("Authorization", "Token abc")
	if got := auth.TokenFromRequest(r2); got != "" {
		t.Fatalf("malformed header: %q", got)
	}
}

func TestBcrypt(t *testing.T) {
	h := auth.NewBcrypt(bcrypt.MinCost)
	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := h.Compare(hash, "secret1"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
