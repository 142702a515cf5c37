package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/metrics"
)

// Cache lifetimes per data class.
const (
	ListTTL        = 24 * time.Hour
	PlaceTTL       = 7 * 24 * time.Hour
	PerformanceTTL = 7 * 24 * time.Hour
	OutdatedTTL    = 24 * time.Hour
)

// ListKey is the cache key of an outreach result list.
func ListKey(query string) string { return "outreach:list:" + query }

// PlaceKey is the cache key of a place's contact details.
func PlaceKey(placeID string) string { return "place:" + placeID }

// PerformanceKey is the cache key of one PageSpeed strategy score for a host.
func PerformanceKey(strategy, host string) string {
	return "performance:" + strings.ToLower(strategy) + ":" + host
}

// OutdatedKey is the cache key of an outdated-sites scan.
func OutdatedKey(keywords, location string) string {
	return "outdated:list:" + keywords + ":" + location
}

var performanceStrategies = []string{"mobile", "desktop"}

// OutreachCache stores pipeline results in the shared Store.
type OutreachCache struct {
	store Store
}

// NewOutreachCache wraps store.
func NewOutreachCache(store Store) *OutreachCache {
	return &OutreachCache{store: store}
}

// GetList returns the cached list for query.
func (c *OutreachCache) GetList(ctx context.Context, query string) ([]entity.BusinessEntry, bool, error) {
	var entries []entity.BusinessEntry
	ok, err := GetJSON(ctx, c.store, ListKey(query), &entries)
	if err != nil {
		return nil, false, err
	}
	metrics.RecordCacheLookup("list", ok)
	return entries, ok, nil
}

// SetList caches the final list for query.
func (c *OutreachCache) SetList(ctx context.Context, query string, entries []entity.BusinessEntry) error {
	if entries == nil {
		entries = []entity.BusinessEntry{}
	}
	return SetJSON(ctx, c.store, ListKey(query), entries, ListTTL)
}

// DeleteList drops the cached list for query.
func (c *OutreachCache) DeleteList(ctx context.Context, query string) error {
	if err := c.store.Delete(ctx, ListKey(query)); err != nil {
		return fmt.Errorf("delete list cache: %w", err)
	}
	return nil
}

// GetPlace returns the cached details of a place.
func (c *OutreachCache) GetPlace(ctx context.Context, placeID string) (entity.PlaceDetails, bool, error) {
	var details entity.PlaceDetails
	ok, err := GetJSON(ctx, c.store, PlaceKey(placeID), &details)
	if err != nil {
		return entity.PlaceDetails{}, false, err
	}
	metrics.RecordCacheLookup("place", ok)
	return details, ok, nil
}

// SetPlace caches the details of a place.
func (c *OutreachCache) SetPlace(ctx context.Context, placeID string, details entity.PlaceDetails) error {
	return SetJSON(ctx, c.store, PlaceKey(placeID), details, PlaceTTL)
}

// DeletePlace drops the cached details of a place.
func (c *OutreachCache) DeletePlace(ctx context.Context, placeID string) error {
	if err := c.store.Delete(ctx, PlaceKey(placeID)); err != nil {
		return fmt.Errorf("delete place cache: %w", err)
	}
	return nil
}

// GetPerformance returns a cached numeric score. Unparsable values count as a miss.
func (c *OutreachCache) GetPerformance(ctx context.Context, strategy, host string) (entity.Score, bool, error) {
	raw, err := c.store.Get(ctx, PerformanceKey(strategy, host))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordCacheLookup("performance", false)
			return entity.Unavailable, false, nil
		}
		return entity.Unavailable, false, fmt.Errorf("get performance cache: %w", err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		metrics.RecordCacheLookup("performance", false)
		return entity.Unavailable, false, nil
	}
	metrics.RecordCacheLookup("performance", true)
	return entity.NewScore(value), true, nil
}

// SetPerformance caches a score. Unavailable scores are never cached.
func (c *OutreachCache) SetPerformance(ctx context.Context, strategy, host string, score entity.Score) error {
	if !score.Available || host == "" {
		return nil
	}
	if err := c.store.Set(ctx, PerformanceKey(strategy, host), []byte(strconv.Itoa(score.Value)), PerformanceTTL); err != nil {
		return fmt.Errorf("set performance cache: %w", err)
	}
	return nil
}

// DeletePerformance drops both strategy scores of a host.
func (c *OutreachCache) DeletePerformance(ctx context.Context, host string) error {
	if host == "" {
		return nil
	}
	keys := make([]string, 0, len(performanceStrategies))
	for _, strategy := range performanceStrategies {
		keys = append(keys, PerformanceKey(strategy, host))
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete performance cache: %w", err)
	}
	return nil
}

// GetOutdated returns a cached outdated-sites scan.
func (c *OutreachCache) GetOutdated(ctx context.Context, keywords, location string) ([]entity.OutdatedSite, bool, error) {
	var sites []entity.OutdatedSite
	ok, err := GetJSON(ctx, c.store, OutdatedKey(keywords, location), &sites)
	if err != nil {
		return nil, false, err
	}
	metrics.RecordCacheLookup("outdated", ok)
	return sites, ok, nil
}

// SetOutdated caches an outdated-sites scan.
func (c *OutreachCache) SetOutdated(ctx context.Context, keywords, location string, sites []entity.OutdatedSite) error {
	if sites == nil {
		sites = []entity.OutdatedSite{}
	}
	return SetJSON(ctx, c.store, OutdatedKey(keywords, location), sites, OutdatedTTL)
}

// DeleteOutdated drops a cached outdated-sites scan.
func (c *OutreachCache) DeleteOutdated(ctx context.Context, keywords, location string) error {
	if err := c.store.Delete(ctx, OutdatedKey(keywords, location)); err != nil {
		return fmt.Errorf("delete outdated cache: %w", err)
	}
	return nil
}
