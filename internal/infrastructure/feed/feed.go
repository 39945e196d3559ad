package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"marketpulse/internal/assets"
	"marketpulse/internal/domain"
	"marketpulse/internal/scanner"
)

const retentionWindow = 24 * time.Hour

// Scanner ingests syndication feeds and normalizes their entries.
type Scanner struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

var _ scanner.Scanner = (*Scanner)(nil)

// NewScanner wires an HTTP client into the feed parser.
func NewScanner(client *http.Client, log *slog.Logger) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "marketpulse/1.0"
	return &Scanner{parser: parser, log: log}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return string(domain.SourceFeed)
}

// Scan parses the source's feed and keeps entries that are inside the
// retention window and mention a tracked asset.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	parsed, err := s.parser.ParseURLWithContext(req.Source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.Source.Name, err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Link == "" {
			continue
		}

		publishedAt := itemTime(item, now)
		if now.Sub(publishedAt) > retentionWindow {
			continue
		}

		description := StripMarkup(item.Description)
		if !assets.Relevant(item.Title + " " + description) {
			continue
		}

		articles = append(articles, domain.Article{
			ID:          domain.ArticleID(item.Link),
			Title:       strings.TrimSpace(item.Title),
			Description: description,
			URL:         item.Link,
			Source:      hostOf(item.Link, req.Source.URL),
			PublishedAt: publishedAt,
			Language:    req.Source.Language,
			Tier:        req.Source.Tier,
		})
	}

	if s.log != nil {
		s.log.Debug("feed scanned", "source", req.Source.Name, "kept", len(articles), "total", len(parsed.Items))
	}
	return articles, nil
}

func itemTime(item *gofeed.Item, now time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return now
}

// StripMarkup flattens HTML fragments into trimmed plain text.
func StripMarkup(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func hostOf(articleURL, sourceURL string) string {
	if parsed, err := url.Parse(articleURL); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	if parsed, err := url.Parse(sourceURL); err == nil {
		return parsed.Host
	}
	return ""
}
