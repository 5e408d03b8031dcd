package service

import (
	"fmt"
	"math"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/cache"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// Cache keys for the derived report counters.
const (
	keyTotalReports      = "total_reports"
	keyReportsThisWeek   = "reports_this_week"
	keyReportsThisMonth  = "reports_this_month"
	keyPreviousWeekCount = "previous_week_count"
	keyPreviousMonthCount = "previous_month_count"
)

var statKeys = []string{
	keyTotalReports,
	keyReportsThisWeek,
	keyReportsThisMonth,
	keyPreviousWeekCount,
	keyPreviousMonthCount,
}

// ReportStats aggregates submission counters with period-over-period
// movement, all computed in the newsroom's local timezone.
type ReportStats struct {
	TotalReports     int64   `json:"total_reports"`
	ReportsThisWeek  int64   `json:"reports_this_week"`
	ReportsThisMonth int64   `json:"reports_this_month"`
	WeeklyChange     float64 `json:"weekly_change"`
	MonthlyChange    float64 `json:"monthly_change"`
}

// StatsService serves the dashboard counters.
type StatsService interface {
	ReportStats() (*ReportStats, error)
	// Invalidate drops every cached counter. Wired as the article
	// repository's write hook.
	Invalidate()
}

type statsService struct {
	db       *gorm.DB
	cache    cache.Store
	ttl      time.Duration
	location *time.Location
	now      func() time.Time
}

// NewStatsService creates the service. Counters are cached for ttl and
// windows are anchored in loc.
func NewStatsService(db *gorm.DB, store cache.Store, ttl time.Duration, loc *time.Location) StatsService {
	return &statsService{
		db:       db,
		cache:    store,
		ttl:      ttl,
		location: loc,
		now:      time.Now,
	}
}

func (s *statsService) ReportStats() (*ReportStats, error) {
	now := s.now().In(s.location)

	weekStart := startOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	prevWeekStart := weekStart.AddDate(0, 0, -7)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	total, err := s.countCached(keyTotalReports, nil, nil)
	if err != nil {
		return nil, err
	}
	thisWeek, err := s.countCached(keyReportsThisWeek, &weekStart, nil)
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.countCached(keyReportsThisMonth, &monthStart, nil)
	if err != nil {
		return nil, err
	}
	prevWeek, err := s.countCached(keyPreviousWeekCount, &prevWeekStart, &weekStart)
	if err != nil {
		return nil, err
	}
	prevMonth, err := s.countCached(keyPreviousMonthCount, &prevMonthStart, &monthStart)
	if err != nil {
		return nil, err
	}

	return &ReportStats{
		TotalReports:     total,
		ReportsThisWeek:  thisWeek,
		ReportsThisMonth: thisMonth,
		WeeklyChange:     percentChange(thisWeek, prevWeek),
		MonthlyChange:    percentChange(thisMonth, prevMonth),
	}, nil
}

// countCached counts articles created in [from, to), remembering the
// result under key. A nil bound leaves that side open.
func (s *statsService) countCached(key string, from, to *time.Time) (int64, error) {
	v, err := cache.Remember(s.cache, key, s.ttl, func() (interface{}, error) {
		query := s.db.Model(&model.Article{})
		if from != nil {
			query = query.Where("created_at >= ?", *from)
		}
		if to != nil {
			query = query.Where("created_at < ?", *to)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count reports for %s: %w", key, err)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *statsService) Invalidate() {
	for _, key := range statKeys {
		s.cache.Delete(key)
	}
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

// percentChange reports current against previous to one decimal place.
// An empty previous period reads as no movement rather than infinity.
func percentChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	change := float64(current-previous) / float64(previous) * 100
	return math.Round(change*10) / 10
}
