package ports

import (
	"context"

	"marketpulse/internal/domain"
)

// MarketData exposes cached, rate-limited access to the upstream exchange.
type MarketData interface {
	// Tickers returns the latest snapshot per tracked base asset. It never
	// fails: on upstream trouble it serves the last good cache, else an
	// empty map.
	Tickers(ctx context.Context) map[string]domain.MarketSnapshot

	// Candles returns up to limit OHLCV samples for symbol, most-recent first.
	Candles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
}

// Renderer loads a page in an isolated rendering context and returns its HTML.
// Implementations must release the rendering context before returning, on both
// success and failure paths.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Publisher pushes an event to a single subscriber; fire-and-forget, no
// acknowledgement or backpressure.
type Publisher interface {
	Publish(subscriberID, event string, payload any)
}

// SubscriberEvents notifies the publication loop about subscriber lifecycle.
type SubscriberEvents interface {
	Subscribed(id string)
	Unsubscribed(id string)
}
