package service_test

import (
	"testing"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/cache"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/avesovich/reporting-with-rss-news/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type newsEnv struct {
	db   *gorm.DB
	repo repository.NewsRepository
	news service.NewsService
}

func newNewsEnv(t *testing.T) *newsEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.NewsItem{}))

	repo := repository.NewNewsRepository(db)
	return &newsEnv{
		db:   db,
		repo: repo,
		news: service.NewNewsService(repo, cache.NewMemoryStore(time.Minute), time.Minute, time.UTC),
	}
}

func (e *newsEnv) seedItem(t *testing.T, title, link, source string, pubDate time.Time) {
	t.Helper()
	require.NoError(t, e.repo.Upsert(&model.NewsItem{
		Title:   title,
		Link:    link,
		PubDate: pubDate,
		Author:  "Unknown Author",
		Source:  source,
	}))
}

func TestNewsService_ListNewestFirst(t *testing.T) {
	env := newNewsEnv(t)
	env.seedItem(t, "older", "https://example.com/a", "HackRead",
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	env.seedItem(t, "newer", "https://example.com/b", "BleepingComputer",
		time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC))

	listing, err := env.news.List(&service.NewsQuery{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, listing.Total)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "newer", listing.Items[0].Title)
	assert.ElementsMatch(t, []string{"BleepingComputer", "HackRead"}, listing.Sources)
}

func TestNewsService_Filters(t *testing.T) {
	env := newNewsEnv(t)
	env.seedItem(t, "ransomware gang dismantled", "https://example.com/a", "HackRead",
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	env.seedItem(t, "new phishing kit", "https://example.com/b", "BleepingComputer",
		time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC))

	listing, err := env.news.List(&service.NewsQuery{Source: "HackRead", Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)

	listing, err = env.news.List(&service.NewsQuery{Search: "phishing", Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)

	listing, err = env.news.List(&service.NewsQuery{
		From: "2026-03-02", To: "2026-03-04", Page: 1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)

	// a lone bound does not filter
	listing, err = env.news.List(&service.NewsQuery{From: "2026-03-02", Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, listing.Total)
}

func TestNewsService_Validation(t *testing.T) {
	env := newNewsEnv(t)

	var verr *model.ValidationError
	_, err := env.news.List(&service.NewsQuery{Sort: "random"})
	require.ErrorAs(t, err, &verr)

	_, err = env.news.List(&service.NewsQuery{From: "bad", To: "2026-03-04"})
	require.ErrorAs(t, err, &verr)

	_, err = env.news.List(&service.NewsQuery{From: "2026-03-05", To: "2026-03-01"})
	require.ErrorAs(t, err, &verr)
}

// Listing pages come from the cache until the fetcher flushes it.
func TestNewsService_CacheFlushedByInvalidate(t *testing.T) {
	env := newNewsEnv(t)
	env.seedItem(t, "first", "https://example.com/a", "HackRead",
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))

	listing, err := env.news.List(&service.NewsQuery{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total)

	env.seedItem(t, "second", "https://example.com/b", "HackRead",
		time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	listing, err = env.news.List(&service.NewsQuery{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, listing.Total, "stale until flushed")

	env.news.InvalidateListing()
	listing, err = env.news.List(&service.NewsQuery{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, listing.Total)
}

// Refetching the same link refreshes the row instead of duplicating it.
func TestNewsRepository_UpsertByLink(t *testing.T) {
	env := newNewsEnv(t)
	env.seedItem(t, "original title", "https://example.com/a", "HackRead",
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	env.seedItem(t, "updated title", "https://example.com/a", "HackRead",
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	var items []*model.NewsItem
	require.NoError(t, env.db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, "updated title", items[0].Title)
}
