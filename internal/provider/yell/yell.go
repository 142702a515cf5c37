// Package yell scrapes business listings from Yell.com search results.
package yell

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/legxcy/outreach-api/internal/provider"
	"github.com/legxcy/outreach-api/internal/retry"
)

const (
	// DefaultBaseURL is the public Yell.com root.
	DefaultBaseURL = "https://www.yell.com"

	serviceName = "yell"
	searchPath  = "/ucs/UcsSearchAction.do"
	userAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Listing is one business capsule of a search page.
type Listing struct {
	Name    string
	Website string
	Phone   string
}

// Client fetches and parses search pages.
type Client struct {
	baseURL string
	http    provider.Doer
	policy  retry.Policy
}

// NewClient builds a Yell client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient provider.Doer, baseURL string, policy retry.Policy) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, policy: policy}
}

// Search returns up to limit listings for keywords in location.
func (c *Client) Search(ctx context.Context, keywords, location string, limit int) ([]Listing, error) {
	params := url.Values{}
	params.Set("keywords", keywords)
	params.Set("location", location)
	endpoint := c.baseURL + searchPath + "?" + params.Encode()

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html")
		return req, nil
	}

	var listings []Listing
	err := provider.Call(ctx, c.http, c.policy, serviceName, build, func(r io.Reader) error {
		parsed, err := ParseListings(r, limit)
		if err != nil {
			return err
		}
		listings = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("yell search: %w", err)
	}
	return listings, nil
}

// ParseListings extracts business capsules from a search results page. A
// limit of zero or less returns every capsule.
func ParseListings(r io.Reader, limit int) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	listings := make([]Listing, 0)
	doc.Find(".businessCapsule--mainContent").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if limit > 0 && len(listings) >= limit {
			return false
		}

		name := strings.TrimSpace(s.Find("h2 a").First().Text())
		if name == "" {
			name = "Unknown"
		}
		website, _ := s.Find(".businessCapsule--ctas a").First().Attr("href")
		phone := strings.TrimSpace(s.Find(".business--telephone").First().Text())

		listings = append(listings, Listing{Name: name, Website: strings.TrimSpace(website), Phone: phone})
		return true
	})
	return listings, nil
}
