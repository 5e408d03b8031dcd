package feed

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// probeUserAgent is sent on feed and page requests; several of the
// aggregated sites reject default library agents.
const probeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

var descTagExpr = regexp.MustCompile(`(?s)<[^>]*>`)

// cleanDescription flattens a feed description to plain text, turning
// paragraph and line breaks into newlines before stripping the rest.
func cleanDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "<br>", "\n")
	desc = strings.ReplaceAll(desc, "<br/>", "\n")
	desc = strings.ReplaceAll(desc, "<br />", "\n")
	desc = strings.ReplaceAll(desc, "</p>", "\n")
	return strings.TrimSpace(descTagExpr.ReplaceAllString(desc, ""))
}

// ImageExtractor resolves the best available image for a feed item:
// first <img> in the description, then the enclosure, then the media
// thumbnail/content extensions, and as a last resort the og:image of
// the linked page.
type ImageExtractor struct {
	client *http.Client
}

// NewImageExtractor creates an extractor using client for og:image
// probes. A nil client gets a 10-second-timeout default.
func NewImageExtractor(client *http.Client) *ImageExtractor {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ImageExtractor{client: client}
}

// Extract walks the fallback chain. Probe failures resolve to an empty
// image, never an error.
func (e *ImageExtractor) Extract(ctx context.Context, item *gofeed.Item) string {
	if img := imageFromDescription(item.Description); img != "" {
		return img
	}
	if img := imageFromEnclosures(item); img != "" {
		return img
	}
	if img := imageFromMediaExtensions(item); img != "" {
		return img
	}
	return e.probeOpenGraph(ctx, item.Link)
}

func imageFromDescription(desc string) string {
	if desc == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

func imageFromEnclosures(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func imageFromMediaExtensions(item *gofeed.Item) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	for _, name := range []string{"thumbnail", "content"} {
		for _, ext := range media[name] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}

// probeOpenGraph fetches the linked page and reads its og:image meta
// tag. Any failure is swallowed: a missing image never fails a fetch.
func (e *ImageExtractor) probeOpenGraph(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return content
}
