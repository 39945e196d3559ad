package page

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marketpulse/internal/assets"
	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/scanner"
)

const retentionWindow = 24 * time.Hour

// entrySelector is one structural pattern for locating article nodes.
type entrySelector struct {
	item     string
	headline string
	summary  string
	link     string
	stamp    string
}

// selectors is the fixed set of structural patterns tried in order; the
// first one that yields candidates wins.
var selectors = []entrySelector{
	{item: "article", headline: "h1, h2, h3", summary: "p", link: "a", stamp: "time"},
	{item: ".news-item", headline: ".title", summary: ".summary", link: "a", stamp: ".time"},
	{item: "li.article", headline: "a", summary: "p", link: "a", stamp: "time"},
}

// Scanner extracts articles from pages that only render their content
// client-side, via the rendering-context port.
type Scanner struct {
	renderer ports.Renderer
	log      *slog.Logger
}

var _ scanner.Scanner = (*Scanner)(nil)

// NewScanner wires a renderer implementation.
func NewScanner(renderer ports.Renderer, log *slog.Logger) *Scanner {
	return &Scanner{renderer: renderer, log: log}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return string(domain.SourcePage)
}

// Scan renders the source page and extracts candidate article nodes with the
// fixed selector set, applying the same window and relevance filters as the
// feed strategy.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	html, err := s.renderer.Render(ctx, req.Source.URL)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", req.Source.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page %s: %w", req.Source.Name, err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	var articles []domain.Article
	for _, sel := range selectors {
		articles = s.extract(doc, sel, req.Source, now)
		if len(articles) > 0 {
			break
		}
	}

	if s.log != nil {
		s.log.Debug("page scanned", "source", req.Source.Name, "kept", len(articles))
	}
	return articles, nil
}

func (s *Scanner) extract(doc *goquery.Document, sel entrySelector, src domain.Source, now time.Time) []domain.Article {
	var articles []domain.Article

	doc.Find(sel.item).Each(func(_ int, node *goquery.Selection) {
		title := strings.TrimSpace(node.Find(sel.headline).First().Text())
		if title == "" {
			return
		}

		summary := strings.Join(strings.Fields(node.Find(sel.summary).First().Text()), " ")
		link := resolveLink(node.Find(sel.link).First(), src.URL)
		if link == "" {
			return
		}

		publishedAt := parseStamp(node.Find(sel.stamp).First(), now)
		if now.Sub(publishedAt) > retentionWindow {
			return
		}
		if !assets.Relevant(title + " " + summary) {
			return
		}

		articles = append(articles, domain.Article{
			ID:          domain.ArticleID(link),
			Title:       title,
			Description: summary,
			URL:         link,
			Source:      hostOf(link, src.URL),
			PublishedAt: publishedAt,
			Language:    src.Language,
			Tier:        src.Tier,
		})
	})

	return articles
}

func resolveLink(sel *goquery.Selection, baseURL string) string {
	href, ok := sel.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func parseStamp(sel *goquery.Selection, now time.Time) time.Time {
	if raw, ok := sel.Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return parsed
		}
	}
	text := strings.TrimSpace(sel.Text())
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed
		}
	}
	return now
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
