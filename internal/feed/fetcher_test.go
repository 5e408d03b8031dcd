package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Security Wire</title>
    <item>
      <title>Ransomware gang dismantled</title>
      <link>https://example.com/ransomware-gang</link>
      <description>&lt;p&gt;&lt;img src="https://example.com/lead.jpg"&gt;Joint operation takedown.&lt;/p&gt;</description>
      <pubDate>Mon, 02 Mar 2026 08:00:00 GMT</pubDate>
      <author>wire@example.com (Dana Cruz)</author>
      <category>Cybercrime</category>
    </item>
    <item>
      <title>No link, skipped</title>
      <description>orphan entry</description>
    </item>
    <item>
      <title>Sparse entry</title>
      <link>https://example.com/sparse</link>
      <description>bare text</description>
    </item>
  </channel>
</rss>`

// noProbeTransport keeps og:image probes off the network; the extractor
// swallows the error and resolves to no image.
type noProbeTransport struct{}

func (noProbeTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("probing disabled")
}

func noProbeExtractor() *ImageExtractor {
	return NewImageExtractor(&http.Client{Transport: noProbeTransport{}})
}

func newFeedEnv(t *testing.T) (*gorm.DB, repository.NewsRepository, *logrus.Logger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.NewsItem{}))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return db, repository.NewNewsRepository(db), logger
}

func TestFetcher_FetchAll(t *testing.T) {
	db, repo, logger := newFeedEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	invalidated := 0
	fetcher := NewFetcher(repo, noProbeExtractor(),
		[]Source{{Name: "SecurityWire", URL: server.URL}},
		time.UTC, logger, func() { invalidated++ })

	stored := fetcher.FetchAll(context.Background())
	assert.Equal(t, 2, stored, "the linkless item is skipped")
	assert.Equal(t, 1, invalidated, "listing cache flushed once per refresh")

	var item model.NewsItem
	require.NoError(t, db.First(&item, "link = ?", "https://example.com/ransomware-gang").Error)
	assert.Equal(t, "Ransomware gang dismantled", item.Title)
	assert.Equal(t, "SecurityWire", item.Source)
	assert.Equal(t, "Dana Cruz", item.Author)
	assert.Equal(t, "Cybercrime", item.Category)
	assert.Equal(t, "https://example.com/lead.jpg", item.Image)
	assert.Equal(t, "Joint operation takedown.", item.Description)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), item.PubDate.UTC())
}

func TestFetcher_SparseItemsGetDefaults(t *testing.T) {
	db, repo, logger := newFeedEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	fetcher := NewFetcher(repo, noProbeExtractor(),
		[]Source{{Name: "SecurityWire", URL: server.URL}},
		time.UTC, logger, nil)
	fetcher.FetchAll(context.Background())

	var item model.NewsItem
	require.NoError(t, db.First(&item, "link = ?", "https://example.com/sparse").Error)
	assert.Equal(t, "Unknown Author", item.Author)
	assert.Equal(t, "General", item.Category)
	assert.False(t, item.PubDate.IsZero())
}

// One broken source never aborts the batch.
func TestFetcher_FailingSourceSkipped(t *testing.T) {
	_, repo, logger := newFeedEnv(t)

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	fetcher := NewFetcher(repo, noProbeExtractor(),
		[]Source{
			{Name: "Broken", URL: bad.URL},
			{Name: "SecurityWire", URL: good.URL},
		},
		time.UTC, logger, nil)

	stored := fetcher.FetchAll(context.Background())
	assert.Equal(t, 2, stored)
}

// Refetching is idempotent: the second pass updates in place.
func TestFetcher_RefetchDoesNotDuplicate(t *testing.T) {
	db, repo, logger := newFeedEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	fetcher := NewFetcher(repo, noProbeExtractor(),
		[]Source{{Name: "SecurityWire", URL: server.URL}},
		time.UTC, logger, nil)

	fetcher.FetchAll(context.Background())
	fetcher.FetchAll(context.Background())

	var count int64
	require.NoError(t, db.Model(&model.NewsItem{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestDefaultSources(t *testing.T) {
	names := make([]string, 0, len(DefaultSources))
	for _, s := range DefaultSources {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"BleepingComputer", "HackRead", "DarkRead", "TheHackerNews"}, names)
}
