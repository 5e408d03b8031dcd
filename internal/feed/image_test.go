package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "plain text", cleanDescription("plain text"))
	assert.Equal(t, "first\nsecond", cleanDescription("<p>first</p><p>second</p>"))
	assert.Equal(t, "line one\nline two", cleanDescription("line one<br/>line two"))
	assert.Equal(t, "headline", cleanDescription(`<img src="https://example.com/x.jpg"><b>headline</b>`))
	assert.Equal(t, "", cleanDescription(""))
}

func TestExtract_DescriptionImageWins(t *testing.T) {
	e := NewImageExtractor(nil)
	item := &gofeed.Item{
		Description: `<p><img src="https://example.com/desc.jpg"> story</p>`,
		Enclosures:  []*gofeed.Enclosure{{URL: "https://example.com/enclosure.jpg"}},
	}
	assert.Equal(t, "https://example.com/desc.jpg", e.Extract(context.Background(), item))
}

func TestExtract_EnclosureFallback(t *testing.T) {
	e := NewImageExtractor(nil)
	item := &gofeed.Item{
		Description: "no markup here",
		Enclosures:  []*gofeed.Enclosure{{URL: "https://example.com/enclosure.jpg"}},
	}
	assert.Equal(t, "https://example.com/enclosure.jpg", e.Extract(context.Background(), item))
}

func TestExtract_MediaExtensionFallback(t *testing.T) {
	e := NewImageExtractor(nil)
	item := &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {
				"thumbnail": []ext.Extension{
					{Name: "thumbnail", Attrs: map[string]string{"url": "https://example.com/thumb.jpg"}},
				},
			},
		},
	}
	assert.Equal(t, "https://example.com/thumb.jpg", e.Extract(context.Background(), item))

	item = &gofeed.Item{
		Extensions: ext.Extensions{
			"media": {
				"content": []ext.Extension{
					{Name: "content", Attrs: map[string]string{"url": "https://example.com/media.jpg"}},
				},
			},
		},
	}
	assert.Equal(t, "https://example.com/media.jpg", e.Extract(context.Background(), item))
}

func TestExtract_OpenGraphProbe(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<html><head>
			<meta property="og:image" content="https://example.com/og.jpg">
		</head><body></body></html>`)
	}))
	defer server.Close()

	e := NewImageExtractor(server.Client())
	item := &gofeed.Item{Link: server.URL}

	assert.Equal(t, "https://example.com/og.jpg", e.Extract(context.Background(), item))
	assert.Equal(t, probeUserAgent, gotUA, "sites reject default library agents")
}

// Probe failures resolve to no image, never an error.
func TestExtract_ProbeFailuresSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	e := NewImageExtractor(server.Client())
	assert.Equal(t, "", e.Extract(context.Background(), &gofeed.Item{Link: server.URL}))
	assert.Equal(t, "", e.Extract(context.Background(), &gofeed.Item{}))
}
