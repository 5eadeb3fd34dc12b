// Package adminauth is the single-identity admin gate: a password check
// that issues a signed session cookie, and Fiber middleware that guards
// the admin routes with it.
package adminauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized covers every failure mode of the gate. There is only
// one admin identity, so callers never learn whether the password was
// wrong or the session stale.
var ErrUnauthorized = errors.New("unauthorized")

// CookieName carries the admin session token.
const CookieName = "dj_admin_session"

type Sessions struct {
	passwordSum [32]byte
	secret      []byte
	ttl         time.Duration
}

func New(password, secret string, ttl time.Duration) *Sessions {
	return &Sessions{
		passwordSum: sha256.Sum256([]byte(password)),
		secret:      []byte(secret),
		ttl:         ttl,
	}
}

// Login compares password against the configured secret in constant
// time and, on match, returns a signed session token.
func (s *Sessions) Login(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(sum[:], s.passwordSum[:]) != 1 {
		return "", ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify checks a session token's signature and expiry.
func (s *Sessions) Verify(token string) error {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return ErrUnauthorized
	}
	return nil
}

// Middleware rejects requests without a valid session cookie. Mounted in
// front of every admin-scoped route.
func (s *Sessions) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Verify(c.Cookies(CookieName)); err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(fiber.Map{"ok": false, "error": "unauthorized"})
		}
		return c.Next()
	}
}

// Cookie wraps a freshly issued token for the client.
func (s *Sessions) Cookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(s.ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	}
}

// ClearCookie returns an expired replacement cookie for logout.
func (s *Sessions) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	}
}
