// Package httpapi maps the contest, analytics and admin-gate services
// onto the public HTTP surface. Response envelopes follow the original
// funnel frontend: {"ok":true,...} on success, an error message
// otherwise.
package httpapi

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/bde-festival/dj-contest/internal"
	"github.com/bde-festival/dj-contest/internal/adminauth"
	"github.com/bde-festival/dj-contest/internal/analytics"
	"github.com/bde-festival/dj-contest/internal/contest"
	"github.com/bde-festival/dj-contest/internal/ratelimit"
)

type Server struct {
	contest   *contest.Service
	analytics *analytics.Service
	sessions  *adminauth.Sessions
	limiter   ratelimit.Limiter
}

func New(c *contest.Service, a *analytics.Service, s *adminauth.Sessions, l ratelimit.Limiter) *Server {
	if l == nil {
		l = ratelimit.Disabled{}
	}
	return &Server{contest: c, analytics: a, sessions: s, limiter: l}
}

// Register mounts all routes on app. Everything under /api/admin except
// login sits behind the session middleware.
func (s *Server) Register(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	api := app.Group("/api")
	api.Post("/applications", s.handleSubmit)
	api.Get("/applications", s.handlePublicList)
	api.Post("/vote", s.handleVote)
	api.Post("/track", s.handleTrack)

	admin := api.Group("/admin")
	admin.Post("/login", s.handleLogin)

	secured := admin.Group("", s.sessions.Middleware())
	secured.Post("/", s.handleAdminAction)
	secured.Post("/logout", s.handleLogout)
	secured.Get("/applications", s.handleAdminList)
	secured.Patch("/applications/:id", s.handleAdminEdit)
	secured.Get("/stats", s.handleAdminStats)
}

// fail maps a service error onto the admin-style envelope. Storage
// errors are logged with detail and surfaced as a generic 500.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, internal.ErrValidation):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": err.Error()})
	case errors.Is(err, internal.ErrNotFound):
		return c.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"ok": false, "error": "candidate not found"})
	case errors.Is(err, adminauth.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"ok": false, "error": "unauthorized"})
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"ok": false, "error": "server error"})
	}
}
