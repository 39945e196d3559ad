package sources

import "marketpulse/internal/domain"

// registry is the fixed table of ingestion endpoints. Read-only after
// process start; All returns a copy so callers cannot mutate it.
var registry = []domain.Source{
	{
		Name:     "cointelegraph",
		URL:      "https://cointelegraph.com/rss",
		Kind:     domain.SourceFeed,
		Language: "en",
		Tier:     domain.TierPrimary,
	},
	{
		Name:     "coindesk",
		URL:      "https://www.coindesk.com/arc/outboundfeeds/rss/",
		Kind:     domain.SourceFeed,
		Language: "en",
		Tier:     domain.TierPrimary,
	},
	{
		Name:     "tokenpost",
		URL:      "https://www.tokenpost.kr/rss",
		Kind:     domain.SourceFeed,
		Language: "ko",
		Tier:     domain.TierSecondary,
	},
	{
		Name:     "blockmedia",
		URL:      "https://www.blockmedia.co.kr/feed",
		Kind:     domain.SourceFeed,
		Language: "ko",
		Tier:     domain.TierSecondary,
	},
	{
		Name:     "coinness",
		URL:      "https://coinness.com/",
		Kind:     domain.SourcePage,
		Language: "ko",
		Tier:     domain.TierTertiary,
	},
}

// All returns the source table in registration order.
func All() []domain.Source {
	out := make([]domain.Source, len(registry))
	copy(out, registry)
	return out
}
