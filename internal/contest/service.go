// Package contest implements the candidacy lifecycle and voting rules:
// public submission, admin review (publish/unpublish/edit/delete) and
// one-click votes on published candidates.
package contest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bde-festival/dj-contest/internal"
)

// Filter selects which applications List returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPublished Filter = "published"
	FilterPending   Filter = "pending"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInput carries the public submission form. Every field except
// StageName is optional and stored as NULL when blank.
type CreateInput struct {
	StageName   string
	FirstName   string
	LastName    string
	Instagram   string
	Email       string
	Description string
	SetURL      string
	MediaURL    string
}

// Create validates and persists a new candidacy in the pending state.
func (s *Service) Create(ctx context.Context, in CreateInput) (*internal.Application, error) {
	stageName := strings.TrimSpace(in.StageName)
	if stageName == "" {
		return nil, fmt.Errorf("%w: stageName is required", internal.ErrValidation)
	}

	app := &internal.Application{
		StageName:   stageName,
		FirstName:   trimOrNil(in.FirstName),
		LastName:    trimOrNil(in.LastName),
		Instagram:   trimOrNil(in.Instagram),
		Email:       trimOrNil(in.Email),
		Description: trimOrNil(in.Description),
		SetURL:      trimOrNil(in.SetURL),
		MediaURL:    trimOrNil(in.MediaURL),
		Published:   false,
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the applications matching filter, each annotated with its
// current vote count, ordered by votes descending then creation time
// descending. This is the canonical leaderboard order.
func (s *Service) List(ctx context.Context, filter Filter) ([]internal.Application, error) {
	q := s.db.WithContext(ctx).Model(&internal.Application{})
	switch filter {
	case FilterAll, "":
	case FilterPublished:
		q = q.Where("published = ?", true)
	case FilterPending:
		q = q.Where("published = ?", false)
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", internal.ErrValidation, filter)
	}

	var apps []internal.Application
	if err := q.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}

	counts, err := s.voteCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		apps[i].VoteCount = counts[apps[i].ID]
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].VoteCount != apps[j].VoteCount {
			return apps[i].VoteCount > apps[j].VoteCount
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

// EditInput is a partial update: only non-nil fields are applied.
// Published state is never touched here, only via SetPublished.
type EditInput struct {
	StageName   *string
	Instagram   *string
	Email       *string
	Description *string
	SetURL      *string
	MediaURL    *string
}

func (s *Service) Edit(ctx context.Context, id string, in EditInput) (*internal.Application, error) {
	var app internal.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}

	if in.StageName != nil {
		name := strings.TrimSpace(*in.StageName)
		if name == "" {
			return nil, fmt.Errorf("%w: stageName cannot be blank", internal.ErrValidation)
		}
		app.StageName = name
	}
	if in.Instagram != nil {
		app.Instagram = trimOrNil(*in.Instagram)
	}
	if in.Email != nil {
		app.Email = trimOrNil(*in.Email)
	}
	if in.Description != nil {
		app.Description = trimOrNil(*in.Description)
	}
	if in.SetURL != nil {
		app.SetURL = trimOrNil(*in.SetURL)
	}
	if in.MediaURL != nil {
		app.MediaURL = trimOrNil(*in.MediaURL)
	}

	if err := s.db.WithContext(ctx).Save(&app).Error; err != nil {
		return nil, err
	}
	return s.attachCount(ctx, &app)
}

// SetPublished toggles public visibility. Publishing stamps PublishedAt;
// unpublishing leaves the previous stamp untouched. Setting the current
// value again is a no-op success.
func (s *Service) SetPublished(ctx context.Context, id string, published bool) (*internal.Application, error) {
	var app internal.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}

	if app.Published != published {
		app.Published = published
		if published {
			now := time.Now().UTC()
			app.PublishedAt = &now
		}
		err := s.db.WithContext(ctx).Model(&app).
			Select("published", "published_at").
			Updates(map[string]interface{}{
				"published":    app.Published,
				"published_at": app.PublishedAt,
			}).Error
		if err != nil {
			return nil, err
		}
	}
	return s.attachCount(ctx, &app)
}

// Delete removes the application and all of its votes in one
// transaction. The vote cascade is done here on purpose: the storage
// engine cannot be assumed to have ON DELETE CASCADE configured.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_id = ?", id).Delete(&internal.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&internal.Application{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrNotFound
		}
		return nil
	})
}

// Vote records one endorsement for a published application and returns
// the fresh vote total. A missing application and an unpublished one
// fail identically, so the public cannot probe for pending candidacies.
func (s *Service) Vote(ctx context.Context, applicationID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app internal.Application
		if err := tx.First(&app, "id = ?", applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrNotFound
			}
			return err
		}
		if !app.Published {
			return internal.ErrNotFound
		}
		if err := tx.Create(&internal.Vote{ApplicationID: applicationID}).Error; err != nil {
			return err
		}
		return tx.Model(&internal.Vote{}).
			Where("application_id = ?", applicationID).
			Count(&count).Error
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) voteCounts(ctx context.Context) (map[string]int64, error) {
	type row struct {
		ApplicationID string
		Cnt           int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&internal.Vote{}).
		Select("application_id, COUNT(*) AS cnt").
		Group("application_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ApplicationID] = r.Cnt
	}
	return counts, nil
}

func (s *Service) attachCount(ctx context.Context, app *internal.Application) (*internal.Application, error) {
	err := s.db.WithContext(ctx).Model(&internal.Vote{}).
		Where("application_id = ?", app.ID).
		Count(&app.VoteCount).Error
	if err != nil {
		return nil, err
	}
	return app, nil
}

// trimOrNil normalizes an optional form field: whitespace-only input is
// stored as NULL.
func trimOrNil(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}
