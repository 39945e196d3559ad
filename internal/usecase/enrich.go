package usecase

import (
	"fmt"
	"sort"
	"time"

	"marketpulse/internal/assets"
	"marketpulse/internal/domain"
)

const (
	retentionWindow = 24 * time.Hour
	recentWindow    = time.Hour
)

// enrichArticles is the pure enrichment chain; it reads the ticker snapshot
// but has no other side effects.
func enrichArticles(articles []domain.Article, tickers map[string]domain.MarketSnapshot, now time.Time) []domain.Article {
	relevant := articles[:0:0]
	for _, a := range articles {
		if assets.Relevant(a.Title + " " + a.Description) {
			relevant = append(relevant, a)
		}
	}

	deduped := dedupe(relevant)

	enriched := make([]domain.Article, 0, len(deduped))
	for _, a := range deduped {
		text := a.Title + " " + a.Description

		a.Market = attachMarket(text, tickers)
		a.Reliability = reliabilityScore(a, now)
		a.Impact = &domain.MarketImpact{
			Sentiment: classifySentiment(text),
			Symbols:   assets.MatchSymbols(text),
			Level:     classifyImpact(text),
		}
		a.Category = assets.Categorize(text)

		enriched = append(enriched, a)
	}

	rank(enriched)
	return enriched
}

// dedupe drops later articles whose (title, timestamp) pair exactly matches
// an earlier one. The URL-derived ID is deliberately not the dedup key: the
// observed upstream behavior keys on the title/timestamp pair, which also
// collapses the same story republished under a different URL.
func dedupe(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		key := fmt.Sprintf("%s|%d", a.Title, a.PublishedAt.UnixNano())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// attachMarket attaches the first mentioned asset's snapshot. An article gets
// at most one snapshot even when several assets are mentioned.
func attachMarket(text string, tickers map[string]domain.MarketSnapshot) *domain.MarketData {
	for _, symbol := range assets.MatchSymbols(text) {
		snap, ok := tickers[symbol]
		if !ok {
			continue
		}
		return &domain.MarketData{
			Symbol:        symbol,
			Price:         fmt.Sprintf("%.2f", snap.Price),
			ChangePercent: fmt.Sprintf("%.2f", snap.ChangePercent),
			Volume24h:     snap.Volume24h,
		}
	}
	return nil
}

// reliabilityScore is additive and clamped to [0, 100]: trust tier
// 40/30/20, +20 for a substantive description, +20 when market data is
// attached, +20 if published within the last hour or +10 within 24 hours.
func reliabilityScore(a domain.Article, now time.Time) int {
	score := 0

	switch a.Tier {
	case domain.TierPrimary:
		score += 40
	case domain.TierSecondary:
		score += 30
	case domain.TierTertiary:
		score += 20
	}

	if len(a.Description) > 100 {
		score += 20
	}
	if a.Market != nil {
		score += 20
	}

	age := now.Sub(a.PublishedAt)
	switch {
	case age <= recentWindow:
		score += 20
	case age <= retentionWindow:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// classifySentiment counts bilingual positive/negative keyword occurrences;
// the majority wins and ties are neutral.
func classifySentiment(text string) domain.Sentiment {
	positive, negative := assets.SentimentCounts(text)
	switch {
	case positive > negative:
		return domain.SentimentPositive
	case negative > positive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// classifyImpact escalates articles mentioning a major asset (BTC/ETH) to
// high when a high-impact keyword is present, else medium; without a major
// asset a high-impact keyword still lifts the level to medium.
func classifyImpact(text string) domain.ImpactLevel {
	symbols := assets.MatchSymbols(text)

	major := false
	for _, s := range symbols {
		if s == "BTC" || s == "ETH" {
			major = true
			break
		}
	}

	highImpact := assets.HasHighImpactKeyword(text)

	switch {
	case major && highImpact:
		return domain.ImpactHigh
	case major:
		return domain.ImpactMedium
	case highImpact:
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

// rank sorts descending by reliability score, ties broken by descending
// publish timestamp.
func rank(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Reliability != articles[j].Reliability {
			return articles[i].Reliability > articles[j].Reliability
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
