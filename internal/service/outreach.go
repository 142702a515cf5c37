package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/normalize"
	"github.com/legxcy/outreach-api/internal/pool"
	"github.com/legxcy/outreach-api/internal/provider/places"
	"github.com/legxcy/outreach-api/internal/repository"
	"github.com/legxcy/outreach-api/internal/service/scoring"
)

// DefaultConcurrency is the number of candidates enriched at once.
const DefaultConcurrency = 4

// PlacesClient finds candidates and their contact details.
type PlacesClient interface {
	TextSearch(ctx context.Context, query string) ([]places.Candidate, error)
	Details(ctx context.Context, placeID string) (places.Details, error)
}

// OutreachOptions tunes the pipeline.
type OutreachOptions struct {
	Concurrency int
	ForceHTTPS  bool
	PhoneRegion string
}

// OutreachService builds the prioritized prospect list for a search query.
type OutreachService struct {
	places      PlacesClient
	performance *PerformanceLookup
	cache       *repository.OutreachCache
	opts        OutreachOptions
	logger      *slog.Logger
}

// NewOutreachService wires the outreach pipeline.
func NewOutreachService(placesClient PlacesClient, performance *PerformanceLookup, cache *repository.OutreachCache, opts OutreachOptions, logger *slog.Logger) *OutreachService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = normalize.DefaultPhoneRegion
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutreachService{places: placesClient, performance: performance, cache: cache, opts: opts, logger: logger}
}

// List returns the actionable prospects for rawQuery, highest priority first.
// Without refresh a cached list is served when present; with refresh every
// cached value involved is discarded and fetched again.
func (s *OutreachService) List(ctx context.Context, rawQuery string, refresh bool) ([]entity.BusinessEntry, error) {
	query := normalize.Query(rawQuery)

	if refresh {
		if err := s.cache.DeleteList(ctx, query); err != nil {
			return nil, err
		}
	} else {
		cached, ok, err := s.cache.GetList(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("read outreach cache: %w", err)
		}
		if ok {
			return scoring.Apply(cached), nil
		}
	}

	candidates, err := s.places.TextSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	entries, err := pool.Map(ctx, candidates, s.opts.Concurrency, func(ctx context.Context, _ int, candidate places.Candidate) (entity.BusinessEntry, error) {
		return s.enrich(ctx, candidate, refresh), nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := scoring.Apply(entries)
	if err := s.cache.SetList(ctx, query, result); err != nil {
		return nil, fmt.Errorf("write outreach cache: %w", err)
	}

	s.logger.Info("outreach list built", "query", query, "candidates", len(candidates), "prospects", len(result), "refresh", refresh)
	return result, nil
}

// enrich resolves details and scores of one candidate. Failures leave the
// affected fields absent instead of failing the batch.
func (s *OutreachService) enrich(ctx context.Context, candidate places.Candidate, refresh bool) entity.BusinessEntry {
	log := s.logger.With("place_id", candidate.PlaceID)
	entry := entity.BusinessEntry{
		ID:          candidate.PlaceID,
		Name:        candidate.Name,
		ProfileLink: entity.ProfileLink(candidate.PlaceID),
	}

	if refresh {
		if err := s.cache.DeletePlace(ctx, candidate.PlaceID); err != nil {
			log.Warn("place cache invalidation failed", "error", err)
		}
	}

	details, err := s.placeDetails(ctx, candidate.PlaceID, log)
	if err != nil {
		log.Warn("place details failed", "error", err)
		return entry.Sanitize()
	}
	entry.Phone = details.Phone
	entry.URL = details.URL

	site, ok := entry.Website()
	if !ok {
		return entry.Sanitize()
	}
	entry.HasWebsite = true

	host := normalize.HostKey(site)
	if refresh {
		s.performance.Invalidate(ctx, host)
	}
	entry.PerformanceScore = s.performance.Both(ctx, site, host)
	return entry.Sanitize()
}

func (s *OutreachService) placeDetails(ctx context.Context, placeID string, log *slog.Logger) (entity.PlaceDetails, error) {
	cached, ok, err := s.cache.GetPlace(ctx, placeID)
	if err != nil {
		log.Warn("place cache read failed", "error", err)
	} else if ok {
		return s.normalizeDetails(cached), nil
	}

	raw, err := s.places.Details(ctx, placeID)
	if err != nil {
		return entity.PlaceDetails{}, err
	}

	details := entity.PlaceDetails{}
	if raw.Phone != "" {
		details.Phone = entity.StringPtr(normalize.Phone(raw.Phone, s.opts.PhoneRegion))
	}
	if site, ok := normalize.Website(raw.Website, s.opts.ForceHTTPS); ok {
		details.URL = entity.StringPtr(site)
	}

	if err := s.cache.SetPlace(ctx, placeID, details); err != nil {
		log.Warn("place cache write failed", "error", err)
	}
	return details, nil
}

// normalizeDetails re-applies URL canonicalization to cached values, which
// is a no-op for anything this service wrote itself.
func (s *OutreachService) normalizeDetails(details entity.PlaceDetails) entity.PlaceDetails {
	if details.URL == nil {
		return details
	}
	if site, ok := normalize.Website(*details.URL, s.opts.ForceHTTPS); ok {
		details.URL = entity.StringPtr(site)
	} else {
		details.URL = nil
	}
	return details
}

// RefreshAll rebuilds the list of every query in order and reports the list
// length per query, or -1 when the refresh failed.
func (s *OutreachService) RefreshAll(ctx context.Context, queries []string) map[string]int {
	results := make(map[string]int, len(queries))
	for _, query := range queries {
		entries, err := s.List(ctx, query, true)
		if err != nil {
			s.logger.Error("scheduled refresh failed", "query", query, "error", err)
			results[query] = -1
			continue
		}
		s.logger.Info("scheduled refresh complete", "query", query, "prospects", len(entries))
		results[query] = len(entries)
	}
	return results
}
