package service

import (
	"context"
	"log/slog"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/pool"
	"github.com/legxcy/outreach-api/internal/provider/pagespeed"
	"github.com/legxcy/outreach-api/internal/repository"
)

// PerformanceScorer runs a PageSpeed report for one strategy.
type PerformanceScorer interface {
	Score(ctx context.Context, url string, strategy pagespeed.Strategy) (entity.Score, error)
}

// PerformanceLookup serves PageSpeed scores from the cache and falls back to
// the scorer. Failures degrade to an unavailable score.
type PerformanceLookup struct {
	cache  *repository.OutreachCache
	scorer PerformanceScorer
	logger *slog.Logger
}

// NewPerformanceLookup wires a cache-first score lookup.
func NewPerformanceLookup(cache *repository.OutreachCache, scorer PerformanceScorer, logger *slog.Logger) *PerformanceLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceLookup{cache: cache, scorer: scorer, logger: logger}
}

// Score returns the score of site for one strategy. host keys the cache.
func (p *PerformanceLookup) Score(ctx context.Context, site, host string, strategy pagespeed.Strategy) entity.Score {
	log := p.logger.With("host", host, "strategy", string(strategy))

	if host != "" {
		cached, ok, err := p.cache.GetPerformance(ctx, string(strategy), host)
		switch {
		case err != nil:
			log.Warn("performance cache read failed", "error", err)
		case ok:
			return cached
		}
	}

	score, err := p.scorer.Score(ctx, site, strategy)
	if err != nil {
		log.Warn("pagespeed lookup failed", "error", err)
		return entity.Unavailable
	}
	if err := p.cache.SetPerformance(ctx, string(strategy), host, score); err != nil {
		log.Warn("performance cache write failed", "error", err)
	}
	return score
}

// Both looks up the mobile and desktop scores concurrently.
func (p *PerformanceLookup) Both(ctx context.Context, site, host string) entity.PerformanceScore {
	scores, err := pool.Map(ctx, pagespeed.Strategies, len(pagespeed.Strategies), func(ctx context.Context, _ int, strategy pagespeed.Strategy) (entity.Score, error) {
		return p.Score(ctx, site, host, strategy), nil
	})
	if err != nil {
		return entity.PerformanceScore{}
	}
	return entity.PerformanceScore{Mobile: scores[0], Desktop: scores[1]}
}

// Invalidate drops both cached scores of host.
func (p *PerformanceLookup) Invalidate(ctx context.Context, host string) {
	if err := p.cache.DeletePerformance(ctx, host); err != nil {
		p.logger.Warn("performance cache invalidation failed", "host", host, "error", err)
	}
}
