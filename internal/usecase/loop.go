package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/infrastructure/schedule"
	"marketpulse/internal/ports"
)

const (
	newsEvent      = "news"
	screeningEvent = "screening_results"
)

// LoopDeps wires the pipeline, screener, and push sink into the loop.
type LoopDeps struct {
	Pipeline  *Pipeline
	Screener  *Screener
	Publisher ports.Publisher
	Symbols   []string
	Logger    *slog.Logger

	NewsInterval      time.Duration
	ScreeningInterval time.Duration
}

// Loop drives two independent repeating tasks per subscriber: an incremental
// per-source news refresh merging into a subscriber-scoped article cache, and
// a full-replacement screening refresh.
type Loop struct {
	pipeline  *Pipeline
	screener  *Screener
	publisher ports.Publisher
	symbols   []string
	log       *slog.Logger

	newsInterval   time.Duration
	screenInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	newsTask   *schedule.Task
	screenTask *schedule.Task

	mu       sync.Mutex
	articles map[string]domain.Article
}

var _ ports.SubscriberEvents = (*Loop)(nil)

// NewLoop constructs the publication loop.
func NewLoop(deps LoopDeps) *Loop {
	ctx, cancel := context.WithCancel(context.Background())

	newsInterval := deps.NewsInterval
	if newsInterval <= 0 {
		newsInterval = 5 * time.Minute
	}
	screenInterval := deps.ScreeningInterval
	if screenInterval <= 0 {
		screenInterval = 3 * time.Minute
	}

	return &Loop{
		pipeline:       deps.Pipeline,
		screener:       deps.Screener,
		publisher:      deps.Publisher,
		symbols:        deps.Symbols,
		log:            deps.Logger,
		newsInterval:   newsInterval,
		screenInterval: screenInterval,
		ctx:            ctx,
		cancel:         cancel,
		subs:           map[string]*subscription{},
	}
}

// SetPublisher installs the push sink. Call before the first subscriber
// arrives; the hub and the loop reference each other, so one side is wired
// after construction.
func (l *Loop) SetPublisher(p ports.Publisher) {
	l.publisher = p
}

// Subscribed starts both refresh tasks for a new subscriber; each runs
// immediately and then on its interval.
func (l *Loop) Subscribed(id string) {
	sub := &subscription{articles: map[string]domain.Article{}}

	l.mu.Lock()
	if _, exists := l.subs[id]; exists {
		l.mu.Unlock()
		return
	}
	l.subs[id] = sub
	l.mu.Unlock()

	sub.newsTask = schedule.Every(l.ctx, l.newsInterval, func(ctx context.Context) {
		l.refreshNews(ctx, id, sub)
	})
	sub.screenTask = schedule.Every(l.ctx, l.screenInterval, func(ctx context.Context) {
		l.refreshScreening(ctx, id)
	})

	l.info("subscriber joined", "id", id)
}

// Unsubscribed cancels both tasks and releases the subscriber's state; no
// further pushes occur after it returns.
func (l *Loop) Unsubscribed(id string) {
	l.mu.Lock()
	sub, ok := l.subs[id]
	if ok {
		delete(l.subs, id)
	}
	l.mu.Unlock()

	if !ok {
		return
	}

	if sub.newsTask != nil {
		sub.newsTask.Stop()
	}
	if sub.screenTask != nil {
		sub.screenTask.Stop()
	}

	l.info("subscriber left", "id", id)
}

// Stop tears down every active subscription.
func (l *Loop) Stop() {
	l.mu.Lock()
	ids := make([]string, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	for _, id := range ids {
		l.Unsubscribed(id)
	}
	l.cancel()
}

// refreshNews re-runs per-source crawls, merging each batch into the
// subscriber's keyed cache and pushing the enriched union as every source
// completes. Repeated pushes are idempotent unions, not replacements.
func (l *Loop) refreshNews(ctx context.Context, id string, sub *subscription) {
	for _, src := range l.pipeline.Sources() {
		if ctx.Err() != nil {
			return
		}

		batch := l.pipeline.CrawlSource(ctx, src)
		merged := sub.merge(batch, time.Now())
		enriched := l.pipeline.Enrich(ctx, merged)

		if ctx.Err() != nil || l.publisher == nil {
			return
		}
		l.publisher.Publish(id, newsEvent, enriched)
	}
}

// refreshScreening runs one screening pass and pushes the full replacement
// result.
func (l *Loop) refreshScreening(ctx context.Context, id string) {
	results := l.screener.Screen(ctx, l.symbols)
	if ctx.Err() != nil || l.publisher == nil {
		return
	}
	l.publisher.Publish(id, screeningEvent, results)
}

// merge unions a crawled batch into the cache keyed by article identity and
// evicts entries that have aged out of the retention window. First
// occurrence wins for an identity already cached.
func (s *subscription) merge(batch []domain.Article, now time.Time) []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range batch {
		if _, exists := s.articles[a.ID]; exists {
			continue
		}
		s.articles[a.ID] = a
	}

	merged := make([]domain.Article, 0, len(s.articles))
	for id, a := range s.articles {
		if now.Sub(a.PublishedAt) > retentionWindow {
			delete(s.articles, id)
			continue
		}
		merged = append(merged, a)
	}
	return merged
}

func (l *Loop) info(msg string, args ...any) {
	if l.log != nil {
		l.log.Info(msg, args...)
	}
}
