package httpapi

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bde-festival/dj-contest/internal/contest"
	"github.com/bde-festival/dj-contest/internal/ratelimit"
)

// submitRequest accepts the historical field-name aliases for the stage
// name; resolveStageName tries them in order.
type submitRequest struct {
	StageName  string `json:"stageName"`
	Name       string `json:"name"`
	DJName     string `json:"djName"`
	ArtistName string `json:"artistName"`

	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Instagram   string `json:"instagram"`
	Email       string `json:"email"`
	Description string `json:"description"`
	SetURL      string `json:"setUrl"`
	MediaURL    string `json:"mediaUrl"`
}

func (r submitRequest) resolveStageName() string {
	for _, alias := range []string{r.StageName, r.Name, r.DJName, r.ArtistName} {
		if t := strings.TrimSpace(alias); t != "" {
			return t
		}
	}
	return ""
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	app, err := s.contest.Create(c.UserContext(), contest.CreateInput{
		StageName:   req.resolveStageName(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Instagram:   req.Instagram,
		Email:       req.Email,
		Description: req.Description,
		SetURL:      req.SetURL,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).
		JSON(fiber.Map{"ok": true, "application": app})
}

func (s *Server) handlePublicList(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")

	apps, err := s.contest.List(c.UserContext(), contest.FilterPublished)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "applications": apps})
}

func (s *Server) handleVote(c *fiber.Ctx) error {
	var req struct {
		ApplicationID string `json:"applicationId"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.ApplicationID) == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "applicationId is required"})
	}

	allowed, err := s.limiter.Allow(c.UserContext(), ratelimit.VoteKey(c.IP(), req.ApplicationID))
	if err != nil {
		// Fail open: a limiter outage must not take voting down.
		slog.Warn("vote limiter unavailable", "err", err)
		allowed = true
	}
	if !allowed {
		return c.Status(fiber.StatusTooManyRequests).
			JSON(fiber.Map{"error": "too many votes, slow down"})
	}

	count, err := s.contest.Vote(c.UserContext(), req.ApplicationID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "votes": count})
}

func (s *Server) handleTrack(c *fiber.Ctx) error {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false})
	}
	if err := s.analytics.RecordVisit(c.UserContext(), req.Path); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
