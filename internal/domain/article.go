package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourceKind selects the ingestion strategy for a source.
type SourceKind string

const (
	SourceFeed SourceKind = "feed"
	SourcePage SourceKind = "page"
)

// TrustTier is a coarse source-credibility bucket used for reliability scoring.
type TrustTier string

const (
	TierPrimary   TrustTier = "primary"
	TierSecondary TrustTier = "secondary"
	TierTertiary  TrustTier = "tertiary"
)

// Source describes a single ingestion endpoint; read-only after process start.
type Source struct {
	Name     string
	URL      string
	Kind     SourceKind
	Language string
	Tier     TrustTier
}

// Sentiment is the classified direction of an article's market impact.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ImpactLevel grades how strongly an article is expected to move the market.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// MarketData is the live market context attached to a relevant article.
// Price and change are pre-formatted to two decimal places for display.
type MarketData struct {
	Symbol        string  `json:"symbol"`
	Price         string  `json:"price"`
	ChangePercent string  `json:"change_percent"`
	Volume24h     float64 `json:"volume_24h"`
}

// MarketImpact is the sentiment/impact judgment for an article.
type MarketImpact struct {
	Sentiment Sentiment   `json:"sentiment"`
	Symbols   []string    `json:"symbols"`
	Level     ImpactLevel `json:"level"`
}

// Article is an enriched news item produced by the ingestion pipeline.
// It is never mutated after enrichment except by full replacement.
type Article struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
	PublishedAt time.Time     `json:"published_at"`
	Category    string        `json:"category"`
	Language    string        `json:"language"`
	Tier        TrustTier     `json:"tier"`
	Reliability int           `json:"reliability"`
	Market      *MarketData   `json:"market,omitempty"`
	Impact      *MarketImpact `json:"impact,omitempty"`
}

// ArticleID derives the stable identity of an article from its canonical URL.
func ArticleID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}
