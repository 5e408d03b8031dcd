package api

import (
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// ChartController serves the dashboard aggregations.
type ChartController struct {
	charts service.ChartService
	stats  service.StatsService
}

// NewChartController creates the controller.
func NewChartController(charts service.ChartService, stats service.StatsService) *ChartController {
	return &ChartController{charts: charts, stats: stats}
}

// Reports aggregates report counts by type over a date window.
func (ctl *ChartController) Reports(c *gin.Context) {
	data, err := ctl.charts.ReportsByType(&service.ReportsByTypeInput{
		From:         c.Query("from"),
		To:           c.Query("to"),
		TypeOfReport: c.Query("type_of_report"),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, data)
}

// LineData returns the per-day series for one report type.
func (ctl *ChartController) LineData(c *gin.Context) {
	data, err := ctl.charts.LineSeries(&service.LineSeriesInput{
		TypeOfReport: c.Query("type_of_report"),
		DateFilter:   c.Query("date_filter"),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, data)
}

// Stats returns the cached dashboard counters.
func (ctl *ChartController) Stats(c *gin.Context) {
	stats, err := ctl.stats.ReportStats()
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, stats)
}
