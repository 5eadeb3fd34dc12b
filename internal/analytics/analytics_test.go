package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bde-festival/dj-contest/internal"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "analytics.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&internal.Application{}, &internal.Vote{}, &internal.Visit{}))
	return db
}

func day(offset int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC).
		AddDate(0, 0, offset)
}

func TestRecordVisit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.RecordVisit(ctx, " /vote "))

	var visits []internal.Visit
	require.NoError(t, db.Find(&visits).Error)
	require.Len(t, visits, 1)
	assert.Equal(t, "/vote", visits[0].Path)
	assert.NotEmpty(t, visits[0].ID)
}

func TestRecordVisitRequiresPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	err := svc.RecordVisit(context.Background(), "   ")
	require.ErrorIs(t, err, internal.ErrValidation)

	var count int64
	require.NoError(t, db.Model(&internal.Visit{}).Count(&count).Error)
	assert.Zero(t, count)
}

type stubPublisher struct {
	events []VisitEvent
	err    error
}

func (p *stubPublisher) PublishVisit(ctx context.Context, event VisitEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func TestRecordVisitPrefersQueue(t *testing.T) {
	db := newTestDB(t)
	pub := &stubPublisher{}
	svc := NewService(db, pub)

	require.NoError(t, svc.RecordVisit(context.Background(), "/"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, "/", pub.events[0].Path)

	var count int64
	require.NoError(t, db.Model(&internal.Visit{}).Count(&count).Error)
	assert.Zero(t, count, "queued visits are not inserted directly")
}

func TestRecordVisitFallsBackOnPublishFailure(t *testing.T) {
	db := newTestDB(t)
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := NewService(db, pub)

	require.NoError(t, svc.RecordVisit(context.Background(), "/vote"))

	var count int64
	require.NoError(t, db.Model(&internal.Visit{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "visit is not lost when the queue is down")
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	published := internal.Application{StageName: "Nova", Published: true}
	pending := internal.Application{StageName: "Hidden", Published: false}
	require.NoError(t, db.Create(&published).Error)
	require.NoError(t, db.Create(&pending).Error)

	visits := []internal.Visit{
		{Path: "/", CreatedAt: day(0)},
		{Path: "/vote", CreatedAt: day(0)},
		{Path: "/", CreatedAt: day(-1)},
		{Path: "/", CreatedAt: day(-40)}, // outside the window
	}
	require.NoError(t, db.Create(&visits).Error)

	votes := []internal.Vote{
		{ApplicationID: published.ID, CreatedAt: day(0)},
		{ApplicationID: published.ID, CreatedAt: day(0)},
		{ApplicationID: published.ID, CreatedAt: day(-2)},
		{ApplicationID: pending.ID, CreatedAt: day(0)}, // unpublished, excluded
	}
	require.NoError(t, db.Create(&votes).Error)

	stats, err := svc.GetStats(ctx, 30)
	require.NoError(t, err)

	require.Len(t, stats.Days, 30)
	today := day(0).Format("2006-01-02")
	assert.Equal(t, today, stats.Days[len(stats.Days)-1], "window ends today")

	assert.Equal(t, int64(2), stats.VisitsByDay[today])
	assert.Equal(t, int64(1), stats.VisitsByDay[day(-1).Format("2006-01-02")])
	assert.NotContains(t, stats.VisitsByDay, day(-40).Format("2006-01-02"))

	assert.Equal(t, int64(2), stats.VotesByDay[today][published.ID])
	assert.Equal(t, int64(1), stats.VotesByDay[day(-2).Format("2006-01-02")][published.ID])
	assert.NotContains(t, stats.VotesByDay[today], pending.ID,
		"votes for unpublished applications are excluded")

	require.Len(t, stats.Applications, 1)
	assert.Equal(t, published.ID, stats.Applications[0].ID)
}

func TestGetStatsDefaultWindow(t *testing.T) {
	svc := NewService(newTestDB(t), nil)

	stats, err := svc.GetStats(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, stats.Days, DefaultWindowDays)
}
