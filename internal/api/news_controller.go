package api

import (
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/gin-gonic/gin"
)

// NewsController serves the aggregated RSS news listing.
type NewsController struct {
	news service.NewsService
}

// NewNewsController creates the controller.
func NewNewsController(news service.NewsService) *NewsController {
	return &NewsController{news: news}
}

// List pages aggregated news, filtered by source, search text and date
// range, newest first by default.
func (ctl *NewsController) List(c *gin.Context) {
	listing, err := ctl.news.List(&service.NewsQuery{
		Source: c.Query("source"),
		Search: c.Query("search"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Sort:   c.Query("sort"),
		Page:   pageParam(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, listing)
}
