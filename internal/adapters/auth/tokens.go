package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/domain"
)

// CookieName is the cookie the token is also accepted from.
const CookieName = "token"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HS256 tokens.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

var _ domain.TokenManager = (*JWT)(nil)

func (j *JWT) Issue(userID string, role domain.Role) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// Every failure wraps domain.ErrUnauthenticated.
func (j *JWT) Verify(token string) (string, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w: %w", domain.ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return "", fmt.Errorf("token has no subject: %w", domain.ErrUnauthenticated)
	}
	return c.Subject, nil
}

// TokenFromRequest reads a bearer token from the Authorization header, then
// from the token cookie. It returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if tok, ok := strings.CutPrefix(authz, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" && c.Value != "none" {
		return c.Value
	}
	return ""
}
