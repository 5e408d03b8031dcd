package service

import (
	"testing"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/cache"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func statsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Article{}))
	return db
}

func insertArticleAt(t *testing.T, db *gorm.DB, createdAt time.Time) {
	t.Helper()
	a := &model.Article{
		ID:              uuid.NewString(),
		UserID:          "editor-1",
		Title:           "report",
		TypeOfReport:    "Phishing",
		PublicationDate: "2026-03-02",
		URL:             "https://example.com",
		DetailedSummary: "s",
		Analysis:        "a",
		Recommendation:  "r",
		ApprovalStatus:  model.StatusReview,
	}
	require.NoError(t, db.Create(a).Error)
	// gorm stamps CreatedAt on insert; push it back explicitly
	require.NoError(t, db.Model(&model.Article{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{"created_at": createdAt, "updated_at": createdAt}).Error)
}

// Wednesday 2026-03-04 noon: the current week runs Mon 2026-03-02
// through Sun 2026-03-08.
var statsNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func newStatsService(db *gorm.DB) *statsService {
	s := NewStatsService(db, cache.NewMemoryStore(time.Minute), time.Minute, time.UTC).(*statsService)
	s.now = func() time.Time { return statsNow }
	return s
}

func TestStatsService_ReportStats(t *testing.T) {
	db := statsDB(t)

	// this week: 2, previous week: 1
	insertArticleAt(t, db, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	insertArticleAt(t, db, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	insertArticleAt(t, db, time.Date(2026, 2, 25, 9, 0, 0, 0, time.UTC))
	// previous month only
	insertArticleAt(t, db, time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))

	svc := newStatsService(db)
	stats, err := svc.ReportStats()
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalReports)
	assert.EqualValues(t, 2, stats.ReportsThisWeek)
	assert.EqualValues(t, 2, stats.ReportsThisMonth)
	assert.Equal(t, 100.0, stats.WeeklyChange)
	assert.Equal(t, 0.0, stats.MonthlyChange)
}

// An empty previous period reads as zero movement.
func TestStatsService_PercentChangeEmptyPrevious(t *testing.T) {
	db := statsDB(t)
	insertArticleAt(t, db, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))

	svc := newStatsService(db)
	stats, err := svc.ReportStats()
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.ReportsThisWeek)
	assert.Equal(t, 0.0, stats.WeeklyChange)
}

// Counters come from the cache until invalidated by a write.
func TestStatsService_CachedUntilInvalidated(t *testing.T) {
	db := statsDB(t)
	insertArticleAt(t, db, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))

	svc := newStatsService(db)
	stats, err := svc.ReportStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalReports)

	insertArticleAt(t, db, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	stats, err = svc.ReportStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalReports, "stale until invalidated")

	svc.Invalidate()
	stats, err = svc.ReportStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalReports)
}

func TestStartOfWeek(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))

	monday := time.Date(2026, 3, 2, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), startOfWeek(monday))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 0.0, percentChange(5, 0))
	assert.Equal(t, 100.0, percentChange(2, 1))
	assert.Equal(t, -50.0, percentChange(1, 2))
	assert.Equal(t, 33.3, percentChange(4, 3))
}
