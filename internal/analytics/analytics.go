// Package analytics records page-visit events and aggregates visits and
// votes into day buckets for the admin dashboard. Days are UTC calendar
// days of each row's creation time.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bde-festival/dj-contest/internal"
)

const (
	// DefaultWindowDays is the trailing window shown on the dashboard.
	DefaultWindowDays = 30

	dayFormat = "2006-01-02"
)

// VisitEvent is the wire form of one page view on the visit queue.
type VisitEvent struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher pushes visit events onto a queue for asynchronous insertion.
type Publisher interface {
	PublishVisit(ctx context.Context, event VisitEvent) error
}

type Service struct {
	db  *gorm.DB
	pub Publisher
}

// NewService builds the analytics service. pub may be nil, in which case
// visits are written straight to the database.
func NewService(db *gorm.DB, pub Publisher) *Service {
	return &Service{db: db, pub: pub}
}

// RecordVisit stores one page view. With a publisher configured the
// event takes the queue path; a publish failure falls back to a direct
// insert so the visit is not lost.
func (s *Service) RecordVisit(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("%w: path is required", internal.ErrValidation)
	}

	if s.pub != nil {
		event := VisitEvent{Path: path, Timestamp: time.Now().UTC()}
		err := s.pub.PublishVisit(ctx, event)
		if err == nil {
			return nil
		}
		slog.Warn("visit publish failed, inserting directly", "err", err)
	}
	return s.db.WithContext(ctx).Create(&internal.Visit{Path: path}).Error
}

// Stats is the day-bucketed dashboard payload. VotesByDay maps day to
// applicationID to that day's vote count, restricted to currently
// published applications; Applications carries the published candidates
// for label lookup, in leaderboard order of the window's totals.
type Stats struct {
	Days         []string                    `json:"days"`
	VisitsByDay  map[string]int64            `json:"visitsByDay"`
	VotesByDay   map[string]map[string]int64 `json:"votesByDay"`
	Applications []internal.Application      `json:"applications"`
}

// GetStats aggregates the trailing windowDays (today included) of visits
// and votes. windowDays <= 0 falls back to DefaultWindowDays.
func (s *Service) GetStats(ctx context.Context, windowDays int) (*Stats, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	today := time.Now().UTC()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -windowDays+1)

	days := make([]string, 0, windowDays)
	for d := 0; d < windowDays; d++ {
		days = append(days, start.AddDate(0, 0, d).Format(dayFormat))
	}

	var visits []internal.Visit
	if err := s.db.WithContext(ctx).Where("created_at >= ?", start).Find(&visits).Error; err != nil {
		return nil, err
	}
	visitsByDay := make(map[string]int64, windowDays)
	for _, v := range visits {
		visitsByDay[v.CreatedAt.UTC().Format(dayFormat)]++
	}

	var apps []internal.Application
	err := s.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	published := make(map[string]bool, len(apps))
	for _, a := range apps {
		published[a.ID] = true
	}

	var votes []internal.Vote
	if err := s.db.WithContext(ctx).Where("created_at >= ?", start).Find(&votes).Error; err != nil {
		return nil, err
	}
	votesByDay := make(map[string]map[string]int64)
	for _, v := range votes {
		if !published[v.ApplicationID] {
			continue
		}
		day := v.CreatedAt.UTC().Format(dayFormat)
		if votesByDay[day] == nil {
			votesByDay[day] = make(map[string]int64)
		}
		votesByDay[day][v.ApplicationID]++
	}

	return &Stats{
		Days:         days,
		VisitsByDay:  visitsByDay,
		VotesByDay:   votesByDay,
		Applications: apps,
	}, nil
}
