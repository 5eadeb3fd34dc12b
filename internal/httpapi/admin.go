package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bde-festival/dj-contest/internal/analytics"
	"github.com/bde-festival/dj-contest/internal/contest"
)

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}

	token, err := s.sessions.Login(req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"ok": false, "error": "wrong password"})
	}
	c.Cookie(s.sessions.Cookie(token))
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	c.Cookie(s.sessions.ClearCookie())
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleAdminList(c *fiber.Ctx) error {
	filter := contest.FilterAll
	switch c.Query("published") {
	case "true":
		filter = contest.FilterPublished
	case "false":
		filter = contest.FilterPending
	}

	apps, err := s.contest.List(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "applications": apps})
}

type adminEditRequest struct {
	StageName   *string `json:"stageName"`
	Instagram   *string `json:"instagram"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
	SetURL      *string `json:"setUrl"`
	MediaURL    *string `json:"mediaUrl"`
}

func (s *Server) handleAdminEdit(c *fiber.Ctx) error {
	var req adminEditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}

	app, err := s.contest.Edit(c.UserContext(), c.Params("id"), contest.EditInput{
		StageName:   req.StageName,
		Instagram:   req.Instagram,
		Email:       req.Email,
		Description: req.Description,
		SetURL:      req.SetURL,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "application": app})
}

// handleAdminAction keeps the original action-style admin endpoint:
// one POST carrying {"action": "publish"|"unpublish"|"delete"|"list"}.
func (s *Server) handleAdminAction(c *fiber.Ctx) error {
	var req struct {
		Action string `json:"action"`
		ID     string `json:"id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "invalid request body"})
	}

	action := strings.TrimSpace(req.Action)
	if action == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "action is required"})
	}
	if action != "list" && strings.TrimSpace(req.ID) == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "id is required"})
	}

	switch action {
	case "publish", "unpublish":
		app, err := s.contest.SetPublished(c.UserContext(), req.ID, action == "publish")
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "application": app})
	case "delete":
		if err := s.contest.Delete(c.UserContext(), req.ID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	case "list":
		apps, err := s.contest.List(c.UserContext(), contest.FilterAll)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "applications": apps})
	default:
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"ok": false, "error": "unknown action"})
	}
}

func (s *Server) handleAdminStats(c *fiber.Ctx) error {
	stats, err := s.analytics.GetStats(c.UserContext(), c.QueryInt("days", analytics.DefaultWindowDays))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":           true,
		"days":         stats.Days,
		"visitsByDay":  stats.VisitsByDay,
		"votesByDay":   stats.VotesByDay,
		"applications": stats.Applications,
	})
}
