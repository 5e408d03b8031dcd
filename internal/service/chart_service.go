package service

import (
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"gorm.io/gorm"
)

// maxChartRangeDays caps aggregation windows at one year.
const maxChartRangeDays = 365

// Named windows accepted by LineSeries.
const (
	FilterToday       = "Today"
	FilterYesterday   = "Yesterday"
	FilterLast7Days   = "Last 7 Days"
	FilterLast30Days  = "Last 30 Days"
	FilterThisMonth   = "This Month"
	FilterLastMonth   = "Last Month"
	FilterCustomRange = "Custom Range"
)

var validDateFilters = map[string]bool{
	FilterToday:       true,
	FilterYesterday:   true,
	FilterLast7Days:   true,
	FilterLast30Days:  true,
	FilterThisMonth:   true,
	FilterLastMonth:   true,
	FilterCustomRange: true,
}

// ChartData pairs parallel label and count slices for rendering.
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// ReportsByTypeInput selects the aggregation window. Dates are
// YYYY-MM-DD in the local timezone; empty bounds default to the last
// 30 days ending now.
type ReportsByTypeInput struct {
	From         string
	To           string
	TypeOfReport string
}

// LineSeriesInput selects a per-day series for one report type.
type LineSeriesInput struct {
	TypeOfReport string
	DateFilter   string
	StartDate    string
	EndDate      string
}

// ChartService serves dashboard aggregations over submitted reports.
type ChartService interface {
	ReportsByType(in *ReportsByTypeInput) (*ChartData, error)
	LineSeries(in *LineSeriesInput) (*ChartData, error)
}

type chartService struct {
	db       *gorm.DB
	location *time.Location
	now      func() time.Time
}

// NewChartService creates the service anchored in loc.
func NewChartService(db *gorm.DB, loc *time.Location) ChartService {
	return &chartService{db: db, location: loc, now: time.Now}
}

type typeCount struct {
	TypeOfReport string
	Count        int64
}

func (s *chartService) ReportsByType(in *ReportsByTypeInput) (*ChartData, error) {
	fields := map[string]string{}
	if in.TypeOfReport != "" && !model.IsValidReportType(in.TypeOfReport) {
		fields["type_of_report"] = "unknown report type"
	}

	now := s.now().In(s.location)
	from := startOfDay(now.AddDate(0, 0, -30))
	to := endOfDay(now)

	if in.From != "" {
		parsed, err := time.ParseInLocation("2006-01-02", in.From, s.location)
		if err != nil {
			fields["from"] = "must be a valid date (YYYY-MM-DD)"
		} else {
			from = startOfDay(parsed)
		}
	}
	if in.To != "" {
		parsed, err := time.ParseInLocation("2006-01-02", in.To, s.location)
		if err != nil {
			fields["to"] = "must be a valid date (YYYY-MM-DD)"
		} else {
			to = endOfDay(parsed)
		}
	}
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}
	if from.After(to) {
		return nil, model.NewValidationError("from", "must be before to")
	}
	if to.Sub(from) > maxChartRangeDays*24*time.Hour {
		return nil, model.NewValidationError("to", "date range too large (max 1 year)")
	}

	query := s.db.Model(&model.Article{}).
		Select("type_of_report, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("type_of_report")
	if in.TypeOfReport != "" {
		query = query.Where("type_of_report = ?", in.TypeOfReport)
	}

	var rows []typeCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate reports by type: %w", err)
	}

	out := &ChartData{Labels: make([]string, 0, len(rows)), Data: make([]int64, 0, len(rows))}
	for _, row := range rows {
		out.Labels = append(out.Labels, row.TypeOfReport)
		out.Data = append(out.Data, row.Count)
	}
	return out, nil
}

type dateCount struct {
	Date  string
	Count int64
}

// LineSeries returns a zero-filled per-day count of one report type
// across the selected window, so sparse days still chart as zeros.
func (s *chartService) LineSeries(in *LineSeriesInput) (*ChartData, error) {
	fields := map[string]string{}
	if !model.IsValidReportType(in.TypeOfReport) {
		fields["type_of_report"] = "unknown report type"
	}
	filter := in.DateFilter
	if filter == "" {
		filter = FilterLast30Days
	}
	if !validDateFilters[filter] {
		fields["date_filter"] = "unknown date filter"
	}
	if len(fields) > 0 {
		return nil, &model.ValidationError{Fields: fields}
	}

	start, end, err := s.resolveWindow(filter, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var rows []dateCount
	err = s.db.Model(&model.Article{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("type_of_report = ?", in.TypeOfReport).
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate line series: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Date] = row.Count
	}

	out := &ChartData{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		out.Labels = append(out.Labels, label)
		out.Data = append(out.Data, counts[label])
	}
	return out, nil
}

func (s *chartService) resolveWindow(filter, startDate, endDate string) (time.Time, time.Time, error) {
	now := s.now().In(s.location)

	if filter == FilterCustomRange && startDate != "" && endDate != "" {
		start, err := time.ParseInLocation("2006-01-02", startDate, s.location)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewValidationError("start_date", "must be a valid date (YYYY-MM-DD)")
		}
		end, err := time.ParseInLocation("2006-01-02", endDate, s.location)
		if err != nil {
			return time.Time{}, time.Time{}, model.NewValidationError("end_date", "must be a valid date (YYYY-MM-DD)")
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, model.NewValidationError("start_date", "must be before end_date")
		}
		return startOfDay(start), endOfDay(end), nil
	}

	switch filter {
	case FilterToday:
		return startOfDay(now), endOfDay(now), nil
	case FilterYesterday:
		y := now.AddDate(0, 0, -1)
		return startOfDay(y), endOfDay(y), nil
	case FilterLast7Days:
		return startOfDay(now.AddDate(0, 0, -6)), endOfDay(now), nil
	case FilterThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
		return first, endOfDay(first.AddDate(0, 1, -1)), nil
	case FilterLastMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location).AddDate(0, -1, 0)
		return first, endOfDay(first.AddDate(0, 1, -1)), nil
	default: // Last 30 Days
		return startOfDay(now.AddDate(0, 0, -29)), endOfDay(now), nil
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
