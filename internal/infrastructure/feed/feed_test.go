package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain"
	"marketpulse/internal/scanner"
)

func rssBody(now time.Time) string {
	recent := now.Add(-2 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-48 * time.Hour).Format(time.RFC1123Z)

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Crypto Feed</title>
    <item>
      <title>Bitcoin rallies after ETF approval</title>
      <link>https://news.example/btc-etf</link>
      <description>&lt;p&gt;Bitcoin &lt;b&gt;surged&lt;/b&gt; following the approval.&lt;/p&gt;</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Local bakery wins award</title>
      <link>https://news.example/bakery</link>
      <description>Croissants judged best in town.</description>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Old bitcoin story</title>
      <link>https://news.example/old-btc</link>
      <description>bitcoin did something days ago</description>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`, recent, recent, stale)
}

func TestFeedScanFiltersWindowAndRelevance(t *testing.T) {
	now := time.Now()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody(now)))
	}))
	defer server.Close()

	sc := NewScanner(server.Client(), nil)

	req := scanner.Request{
		Source: domain.Source{
			Name:     "example",
			URL:      server.URL,
			Kind:     domain.SourceFeed,
			Language: "en",
			Tier:     domain.TierPrimary,
		},
		Now: now,
	}

	articles, err := sc.Scan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, articles, 1, "irrelevant and stale entries must be dropped")

	got := articles[0]
	assert.Equal(t, "Bitcoin rallies after ETF approval", got.Title)
	assert.Equal(t, "Bitcoin surged following the approval.", got.Description, "markup must be stripped")
	assert.Equal(t, domain.ArticleID("https://news.example/btc-etf"), got.ID)
	assert.Equal(t, "news.example", got.Source)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, domain.TierPrimary, got.Tier)
}

func TestFeedScanTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sc := NewScanner(server.Client(), nil)
	_, err := sc.Scan(context.Background(), scanner.Request{
		Source: domain.Source{Name: "down", URL: server.URL, Kind: domain.SourceFeed},
		Now:    time.Now(),
	})
	assert.Error(t, err)
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "plain text", StripMarkup("plain text"))
	assert.Equal(t, "bold and linked", StripMarkup("<p><b>bold</b> and <a href='#'>linked</a></p>"))
	assert.Equal(t, "spaced out", StripMarkup("<div>\n  spaced\n  out\n</div>"))
}
