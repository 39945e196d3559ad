package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/domain"
	"marketpulse/internal/scanner"
)

// recordingPublisher captures pushed events per subscriber.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	subscriber string
	event      string
	payload    any
}

func (p *recordingPublisher) Publish(subscriberID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{subscriber: subscriberID, event: event, payload: payload})
}

func (p *recordingPublisher) snapshot() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestLoop(t *testing.T, publisher *recordingPublisher) *Loop {
	t.Helper()

	strategy := &fakeStrategy{
		name: string(domain.SourceFeed),
		articles: []domain.Article{{
			ID:          domain.ArticleID("https://a.example/btc"),
			Title:       "Bitcoin steady",
			Description: "bitcoin trades sideways",
			URL:         "https://a.example/btc",
			PublishedAt: time.Now(),
			Tier:        domain.TierPrimary,
		}},
	}
	registry := scanner.NewRegistry()
	registry.Register(strategy)

	market := &stubMarket{
		tickers: map[string]domain.MarketSnapshot{"BTC": {Symbol: "BTC", Price: 67000}},
		candles: map[string][]domain.Candle{
			"BTC-USDT": {
				{Close: 100, High: 110, Low: 90, Volume: 300},
				{Close: 99, High: 100, Low: 95, Volume: 100},
			},
		},
	}

	pipeline := NewPipeline(PipelineDeps{
		Registry: registry,
		Sources:  []domain.Source{feedSource("alpha")},
		Market:   market,
	})

	loop := NewLoop(LoopDeps{
		Pipeline:          pipeline,
		Screener:          NewScreener(market, nil),
		Symbols:           []string{"BTC-USDT"},
		NewsInterval:      time.Hour,
		ScreeningInterval: time.Hour,
	})
	loop.SetPublisher(publisher)
	t.Cleanup(loop.Stop)

	return loop
}

func TestSubscribePushesImmediately(t *testing.T) {
	publisher := &recordingPublisher{}
	loop := newTestLoop(t, publisher)

	loop.Subscribed("sub-1")

	require.Eventually(t, func() bool {
		seen := map[string]bool{}
		for _, e := range publisher.snapshot() {
			seen[e.event] = true
		}
		return seen[newsEvent] && seen[screeningEvent]
	}, 2*time.Second, 10*time.Millisecond, "both events must be pushed on subscribe")

	for _, e := range publisher.snapshot() {
		assert.Equal(t, "sub-1", e.subscriber)
		switch e.event {
		case newsEvent:
			articles, ok := e.payload.([]domain.Article)
			require.True(t, ok)
			require.Len(t, articles, 1)
			assert.Equal(t, "Bitcoin steady", articles[0].Title)
		case screeningEvent:
			results, ok := e.payload.([]domain.ScreeningResult)
			require.True(t, ok)
			require.Len(t, results, 1)
			assert.Equal(t, "BTC-USDT", results[0].Symbol)
		}
	}
}

func TestUnsubscribeStopsPushes(t *testing.T) {
	publisher := &recordingPublisher{}
	loop := newTestLoop(t, publisher)

	loop.Subscribed("sub-1")

	require.Eventually(t, func() bool {
		return publisher.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	loop.Unsubscribed("sub-1")
	after := publisher.count()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, publisher.count(), "no pushes after unsubscribe")
}

func TestSubscribeTwiceIsIdempotent(t *testing.T) {
	publisher := &recordingPublisher{}
	loop := newTestLoop(t, publisher)

	loop.Subscribed("sub-1")
	loop.Subscribed("sub-1")

	require.Eventually(t, func() bool {
		return publisher.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRepeatedNewsPushesAreIdempotentUnions(t *testing.T) {
	publisher := &recordingPublisher{}
	loop := newTestLoop(t, publisher)

	loop.Subscribed("sub-1")

	require.Eventually(t, func() bool {
		return publisher.count() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// Drive a second news refresh directly; the same article must not
	// duplicate in the merged cache.
	loop.mu.Lock()
	sub := loop.subs["sub-1"]
	loop.mu.Unlock()
	require.NotNil(t, sub)

	loop.refreshNews(context.Background(), "sub-1", sub)

	var last []domain.Article
	for _, e := range publisher.snapshot() {
		if e.event == newsEvent {
			last = e.payload.([]domain.Article)
		}
	}
	require.Len(t, last, 1)
}
