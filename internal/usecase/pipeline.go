package usecase

import (
	"context"
	"log/slog"
	"time"

	"marketpulse/internal/domain"
	"marketpulse/internal/ports"
	"marketpulse/internal/scanner"
)

// PipelineDeps wires the ingestion strategies and market data into the
// enrichment pipeline.
type PipelineDeps struct {
	Registry *scanner.Registry
	Sources  []domain.Source
	Market   ports.MarketData
	Logger   *slog.Logger
}

// Pipeline turns raw per-source article batches into a ranked, enriched,
// deduplicated list.
type Pipeline struct {
	registry *scanner.Registry
	sources  []domain.Source
	market   ports.MarketData
	log      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		registry: deps.Registry,
		sources:  deps.Sources,
		market:   deps.Market,
		log:      deps.Logger,
	}
}

// Sources returns the registry table driving the crawl.
func (p *Pipeline) Sources() []domain.Source {
	out := make([]domain.Source, len(p.sources))
	copy(out, p.sources)
	return out
}

// CrawlSource runs one source's ingestion strategy. Any failure yields an
// empty batch for that source; it never aborts the crawl of other sources.
func (p *Pipeline) CrawlSource(ctx context.Context, src domain.Source) []domain.Article {
	strategy, err := p.registry.Resolve(string(src.Kind))
	if err != nil {
		p.warn("no strategy for source", "source", src.Name, "kind", src.Kind, "error", err)
		return nil
	}

	articles, err := strategy.Scan(ctx, scanner.Request{Source: src, Now: time.Now()})
	if err != nil {
		p.warn("source crawl failed", "source", src.Name, "error", err)
		return nil
	}

	p.debug("source crawled", "source", src.Name, "articles", len(articles))
	return articles
}

// CrawlAll walks every registered source and collects the raw batches.
func (p *Pipeline) CrawlAll(ctx context.Context) []domain.Article {
	var collected []domain.Article
	for _, src := range p.sources {
		collected = append(collected, p.CrawlSource(ctx, src)...)
	}
	return collected
}

// Enrich applies the full enrichment chain: central relevance re-check,
// (title, timestamp) dedup, market attachment, reliability scoring,
// sentiment/impact classification, category tagging, and final ranking.
func (p *Pipeline) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	tickers := p.market.Tickers(ctx)
	return enrichArticles(articles, tickers, time.Now())
}

// Run executes the whole pipeline: crawl all sources, then enrich.
func (p *Pipeline) Run(ctx context.Context) []domain.Article {
	return p.Enrich(ctx, p.CrawlAll(ctx))
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.log != nil {
		p.log.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.log != nil {
		p.log.Debug(msg, args...)
	}
}
