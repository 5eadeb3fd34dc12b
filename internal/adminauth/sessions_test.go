package adminauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword = "open-sesame"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func TestLogin(t *testing.T) {
	sessions := New(testPassword, testSecret, time.Hour)

	token, err := sessions.Login(testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NoError(t, sessions.Verify(token))
}

func TestLoginWrongPassword(t *testing.T) {
	sessions := New(testPassword, testSecret, time.Hour)

	_, err := sessions.Login("wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = sessions.Login("")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	sessions := New(testPassword, testSecret, time.Hour)

	require.ErrorIs(t, sessions.Verify(""), ErrUnauthorized)
	require.ErrorIs(t, sessions.Verify("not-a-token"), ErrUnauthorized)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	sessions := New(testPassword, testSecret, time.Hour)
	other := New(testPassword, "another-secret-another-secret-ab", time.Hour)

	token, err := other.Login(testPassword)
	require.NoError(t, err)
	require.ErrorIs(t, sessions.Verify(token), ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	sessions := New(testPassword, testSecret, -time.Minute)

	token, err := sessions.Login(testPassword)
	require.NoError(t, err)
	require.ErrorIs(t, sessions.Verify(token), ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	sessions := New(testPassword, testSecret, time.Hour)

	app := fiber.New()
	app.Use(sessions.Middleware())
	app.Get("/secret", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// No cookie.
	req := httptest.NewRequest("GET", "/secret", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Valid session cookie.
	token, err := sessions.Login(testPassword)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/secret", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
