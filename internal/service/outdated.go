package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/normalize"
	"github.com/legxcy/outreach-api/internal/pool"
	"github.com/legxcy/outreach-api/internal/provider/pagespeed"
	"github.com/legxcy/outreach-api/internal/provider/yell"
	"github.com/legxcy/outreach-api/internal/repository"
)

const (
	// DefaultOutdatedKeywords is searched when no keywords are given.
	DefaultOutdatedKeywords = "website"
	// DefaultOutdatedLocation is searched when no location is given.
	DefaultOutdatedLocation = "United Kingdom"
	// OutdatedLimit caps the listings scored per scan.
	OutdatedLimit = 5
)

// ListingSearcher returns directory listings.
type ListingSearcher interface {
	Search(ctx context.Context, keywords, location string, limit int) ([]yell.Listing, error)
}

// OutdatedSitesService scores the websites of directory listings.
type OutdatedSitesService struct {
	listings    ListingSearcher
	performance *PerformanceLookup
	cache       *repository.OutreachCache
	opts        OutreachOptions
	logger      *slog.Logger
}

// NewOutdatedSitesService wires an OutdatedSitesService.
func NewOutdatedSitesService(listings ListingSearcher, performance *PerformanceLookup, cache *repository.OutreachCache, opts OutreachOptions, logger *slog.Logger) *OutdatedSitesService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = normalize.DefaultPhoneRegion
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutdatedSitesService{listings: listings, performance: performance, cache: cache, opts: opts, logger: logger}
}

// Scan returns the first listings for keywords in location with the mobile
// score of each website.
func (s *OutdatedSitesService) Scan(ctx context.Context, keywords, location string, refresh bool) ([]entity.OutdatedSite, error) {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		keywords = DefaultOutdatedKeywords
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultOutdatedLocation
	}

	if refresh {
		if err := s.cache.DeleteOutdated(ctx, keywords, location); err != nil {
			return nil, err
		}
	} else {
		cached, ok, err := s.cache.GetOutdated(ctx, keywords, location)
		if err != nil {
			return nil, fmt.Errorf("read outdated cache: %w", err)
		}
		if ok {
			return cached, nil
		}
	}

	listings, err := s.listings.Search(ctx, keywords, location, OutdatedLimit)
	if err != nil {
		return nil, err
	}

	sites, err := pool.Map(ctx, listings, s.opts.Concurrency, func(ctx context.Context, _ int, listing yell.Listing) (entity.OutdatedSite, error) {
		site := entity.OutdatedSite{Name: listing.Name}
		if listing.Phone != "" {
			site.Phone = entity.StringPtr(normalize.Phone(listing.Phone, s.opts.PhoneRegion))
		}
		website, ok := normalize.Website(listing.Website, s.opts.ForceHTTPS)
		if !ok {
			return site, nil
		}
		site.URL = entity.StringPtr(website)
		host := normalize.HostKey(website)
		if refresh {
			s.performance.Invalidate(ctx, host)
		}
		site.PerformanceScore = s.performance.Score(ctx, website, host, pagespeed.Mobile)
		return site, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.cache.SetOutdated(ctx, keywords, location, sites); err != nil {
		return nil, fmt.Errorf("write outdated cache: %w", err)
	}
	s.logger.Info("outdated sites scanned", "keywords", keywords, "location", location, "sites", len(sites))
	return sites, nil
}
