package service

import (
	"fmt"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/cache"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
)

// NewsPageSize is the aggregator's listing page size.
const NewsPageSize = 9

// NewsQuery selects a page of aggregated news. Dates are YYYY-MM-DD;
// both must be present for the range to apply.
type NewsQuery struct {
	Source string
	Search string
	From   string
	To     string
	Sort   string // "newest" (default) or "oldest"
	Page   int
}

// NewsListing is one page of aggregated news plus the known sources.
type NewsListing struct {
	Items    []*model.NewsItem `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Sources  []string          `json:"sources"`
}

// NewsService serves the aggregated news listing. Pages are cached
// briefly; the fetcher flushes the cache after each refresh.
type NewsService interface {
	List(q *NewsQuery) (*NewsListing, error)
	// InvalidateListing drops cached pages after a feed refresh.
	InvalidateListing()
}

type newsService struct {
	news     repository.NewsRepository
	cache    cache.Store
	ttl      time.Duration
	location *time.Location
}

// NewNewsService creates the service.
func NewNewsService(news repository.NewsRepository, store cache.Store, ttl time.Duration, loc *time.Location) NewsService {
	return &newsService{news: news, cache: store, ttl: ttl, location: loc}
}

func (s *newsService) List(q *NewsQuery) (*NewsListing, error) {
	if q.Sort != "" && q.Sort != "newest" && q.Sort != "oldest" {
		return nil, model.NewValidationError("sort", "must be newest or oldest")
	}

	filter := &repository.NewsFilter{
		Source:   q.Source,
		Search:   q.Search,
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: NewsPageSize,
	}

	if q.From != "" && q.To != "" {
		from, err := time.ParseInLocation("2006-01-02", q.From, s.location)
		if err != nil {
			return nil, model.NewValidationError("from", "must be a valid date (YYYY-MM-DD)")
		}
		to, err := time.ParseInLocation("2006-01-02", q.To, s.location)
		if err != nil {
			return nil, model.NewValidationError("to", "must be a valid date (YYYY-MM-DD)")
		}
		if from.After(to) {
			return nil, model.NewValidationError("from", "must be before to")
		}
		end := endOfDay(to)
		filter.From = &from
		filter.To = &end
	}

	key := fmt.Sprintf("news:%s|%s|%s|%s|%s|%d",
		q.Source, q.Search, q.From, q.To, q.Sort, q.Page)

	v, err := cache.Remember(s.cache, key, s.ttl, func() (interface{}, error) {
		items, total, err := s.news.List(filter)
		if err != nil {
			return nil, err
		}
		sources, err := s.news.Sources()
		if err != nil {
			return nil, err
		}
		page := q.Page
		if page < 1 {
			page = 1
		}
		return &NewsListing{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: NewsPageSize,
			Sources:  sources,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*NewsListing), nil
}

func (s *newsService) InvalidateListing() {
	// Listing keys are parameterized; a flush is the only safe eviction.
	s.cache.Flush()
}
