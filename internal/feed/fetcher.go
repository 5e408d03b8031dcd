// Package feed aggregates the external cybersecurity RSS feeds into the
// news store. A failing feed never aborts the batch: each source is
// fetched independently and failures are logged and suppressed.
package feed

import (
	"context"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/metrics"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/avesovich/reporting-with-rss-news/internal/repository"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// Source is one external RSS feed.
type Source struct {
	Name string
	URL  string
}

// DefaultSources lists the aggregated feeds.
var DefaultSources = []Source{
	{Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/"},
	{Name: "HackRead", URL: "https://hackread.com/feed/"},
	{Name: "DarkRead", URL: "https://www.darkreading.com/rss.xml"},
	{Name: "TheHackerNews", URL: "https://feeds.feedburner.com/thehackersnews"},
}

// Fetcher pulls the configured feeds and upserts their items.
type Fetcher struct {
	parser     *gofeed.Parser
	news       repository.NewsRepository
	images     *ImageExtractor
	sources    []Source
	location   *time.Location
	logger     *logrus.Logger
	invalidate func()
}

// NewFetcher creates a fetcher over the given sources. invalidate fires
// once after a refresh that stored at least one item; it may be nil.
func NewFetcher(
	news repository.NewsRepository,
	images *ImageExtractor,
	sources []Source,
	loc *time.Location,
	logger *logrus.Logger,
	invalidate func(),
) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = probeUserAgent
	return &Fetcher{
		parser:     parser,
		news:       news,
		images:     images,
		sources:    sources,
		location:   loc,
		logger:     logger,
		invalidate: invalidate,
	}
}

// FetchAll refreshes every source sequentially. Per-feed failures are
// recorded and skipped; the returned count is the number of items
// stored across all sources.
func (f *Fetcher) FetchAll(ctx context.Context) int {
	stored := 0
	for _, source := range f.sources {
		n, err := f.fetchOne(ctx, source)
		metrics.RecordFeedFetch(source.Name, err == nil)
		if err != nil {
			f.logger.WithFields(logrus.Fields{
				"source": source.Name,
				"error":  err.Error(),
			}).Warn("feed fetch failed, skipping source")
			continue
		}
		stored += n
	}
	if stored > 0 && f.invalidate != nil {
		f.invalidate()
	}
	return stored
}

func (f *Fetcher) fetchOne(ctx context.Context, source Source) (int, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		news := f.toNewsItem(ctx, item, source.Name)
		if err := f.news.Upsert(news); err != nil {
			f.logger.WithFields(logrus.Fields{
				"source": source.Name,
				"link":   item.Link,
				"error":  err.Error(),
			}).Warn("failed to store news item")
			continue
		}
		stored++
	}
	return stored, nil
}

func (f *Fetcher) toNewsItem(ctx context.Context, item *gofeed.Item, source string) *model.NewsItem {
	pubDate := time.Now().In(f.location)
	if item.PublishedParsed != nil {
		pubDate = item.PublishedParsed.In(f.location)
	} else if item.UpdatedParsed != nil {
		pubDate = item.UpdatedParsed.In(f.location)
	}

	author := "Unknown Author"
	if len(item.Authors) > 0 && item.Authors[0].Name != "" {
		author = item.Authors[0].Name
	}

	category := "General"
	if len(item.Categories) > 0 && item.Categories[0] != "" {
		category = item.Categories[0]
	}

	return &model.NewsItem{
		Title:       item.Title,
		Link:        item.Link,
		Description: cleanDescription(item.Description),
		PubDate:     pubDate,
		Author:      author,
		Category:    category,
		Image:       f.images.Extract(ctx, item),
		Source:      source,
	}
}
