package entity

import (
	"net/url"
	"strings"
)

const profileLinkBase = "https://www.google.com/maps/place/?q=place_id:"

// BusinessEntry is one enriched outreach prospect.
type BusinessEntry struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	URL              *string          `json:"url"`
	Phone            *string          `json:"phone"`
	HasWebsite       bool             `json:"hasWebsite"`
	ProfileLink      string           `json:"profileLink"`
	PerformanceScore PerformanceScore `json:"performanceScore"`
	PriorityScore    int              `json:"priorityScore"`
}

// PlaceDetails is the cached contact subset of a place.
type PlaceDetails struct {
	Phone *string `json:"phone"`
	URL   *string `json:"url"`
}

// OutdatedSite is a business listing scored for the outdated-sites scan.
type OutdatedSite struct {
	Name             string  `json:"name"`
	URL              *string `json:"url"`
	Phone            *string `json:"phone"`
	PerformanceScore Score   `json:"performanceScore"`
}

// ProfileLink builds the Maps deep link for a place id.
func ProfileLink(placeID string) string {
	return profileLinkBase + url.QueryEscape(placeID)
}

// Website returns the entry URL when present.
func (b BusinessEntry) Website() (string, bool) {
	if b.URL == nil {
		return "", false
	}
	site := strings.TrimSpace(*b.URL)
	if site == "" {
		return "", false
	}
	return site, true
}

// Sanitize enforces the entry invariants: no website means no URL and no scores.
func (b BusinessEntry) Sanitize() BusinessEntry {
	site, ok := b.Website()
	if !ok {
		b.URL = nil
		b.HasWebsite = false
		b.PerformanceScore = PerformanceScore{}
	} else {
		b.URL = &site
		b.HasWebsite = true
	}
	if b.Phone != nil && strings.TrimSpace(*b.Phone) == "" {
		b.Phone = nil
	}
	if b.ProfileLink == "" && b.ID != "" {
		b.ProfileLink = ProfileLink(b.ID)
	}
	return b
}

// StringPtr returns nil for blank values.
func StringPtr(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
