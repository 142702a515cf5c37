package scoring

import (
	"slices"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/normalize"
)

// Priority values, highest first.
const (
	PriorityNoWebsite  = 100
	PriorityInsecure   = 80
	PrioritySlowMobile = 60
	PriorityNone       = 0
)

// MobileThreshold is the mobile score below which a secure site still counts
// as a prospect. Desktop scores never participate.
const MobileThreshold = 50

// Priority evaluates the outreach priority of an enriched entry.
func Priority(entry entity.BusinessEntry) int {
	site, ok := entry.Website()
	switch {
	case !ok || !entry.HasWebsite:
		return PriorityNoWebsite
	case !normalize.IsSecure(site):
		return PriorityInsecure
	case entry.PerformanceScore.Mobile.Below(MobileThreshold):
		return PrioritySlowMobile
	default:
		return PriorityNone
	}
}

// Actionable reports whether the entry is worth contacting.
func Actionable(entry entity.BusinessEntry) bool {
	return Priority(entry) > PriorityNone
}

// Apply recomputes every priority, drops non-actionable entries and sorts the
// rest by priority, highest first. Equal priorities keep their input order.
func Apply(entries []entity.BusinessEntry) []entity.BusinessEntry {
	result := make([]entity.BusinessEntry, 0, len(entries))
	for _, entry := range entries {
		entry = entry.Sanitize()
		entry.PriorityScore = Priority(entry)
		if entry.PriorityScore == PriorityNone {
			continue
		}
		result = append(result, entry)
	}

	slices.SortStableFunc(result, func(a, b entity.BusinessEntry) int {
		return b.PriorityScore - a.PriorityScore
	})
	return result
}
