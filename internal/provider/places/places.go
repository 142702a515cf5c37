// Package places is a small client for the Google Places text search and
// place details endpoints.
package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/legxcy/outreach-api/internal/provider"
	"github.com/legxcy/outreach-api/internal/retry"
)

const (
	// DefaultBaseURL is the public Places API root.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	// MaxCandidates caps how many text search results are enriched.
	MaxCandidates = 20

	serviceName   = "places"
	detailsFields = "formatted_phone_number,website"
)

// Candidate is one text search hit.
type Candidate struct {
	PlaceID string
	Name    string
}

// Details holds the raw contact fields of a place.
type Details struct {
	Phone   string
	Website string
}

// Client talks to the Places API.
type Client struct {
	baseURL string
	apiKey  string
	http    provider.Doer
	policy  retry.Policy
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient builds a client using apiKey for every request.
func NewClient(httpClient provider.Doer, apiKey string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    httpClient,
		policy:  retry.DefaultPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textSearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID string `json:"place_id"`
		Name    string `json:"name"`
	} `json:"results"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		FormattedPhoneNumber string `json:"formatted_phone_number"`
		Website              string `json:"website"`
	} `json:"result"`
}

// TextSearch returns at most MaxCandidates places matching query. Results
// without a place id are skipped.
func (c *Client) TextSearch(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)

	var payload textSearchResponse
	if err := provider.CallJSON(ctx, c.http, c.policy, serviceName, c.get("/textsearch/json", params), &payload); err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}
	if err := statusError(payload.Status, payload.ErrorMessage); err != nil {
		return nil, fmt.Errorf("places text search: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Results))
	for _, result := range payload.Results {
		if len(candidates) == MaxCandidates {
			break
		}
		id := strings.TrimSpace(result.PlaceID)
		if id == "" {
			continue
		}
		candidates = append(candidates, Candidate{PlaceID: id, Name: strings.TrimSpace(result.Name)})
	}
	return candidates, nil
}

// Details fetches the phone number and website of a place.
func (c *Client) Details(ctx context.Context, placeID string) (Details, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)
	params.Set("key", c.apiKey)

	var payload detailsResponse
	if err := provider.CallJSON(ctx, c.http, c.policy, serviceName, c.get("/details/json", params), &payload); err != nil {
		return Details{}, fmt.Errorf("place details %s: %w", placeID, err)
	}
	if err := statusError(payload.Status, payload.ErrorMessage); err != nil {
		return Details{}, fmt.Errorf("place details %s: %w", placeID, err)
	}

	return Details{
		Phone:   strings.TrimSpace(payload.Result.FormattedPhoneNumber),
		Website: strings.TrimSpace(payload.Result.Website),
	}, nil
}

func (c *Client) get(path string, params url.Values) func(ctx context.Context) (*http.Request, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}
}

// statusError maps the API status field. OK and ZERO_RESULTS are successes.
func statusError(status, message string) error {
	switch status {
	case "OK", "ZERO_RESULTS", "":
		if message != "" {
			return &provider.UpstreamError{Service: serviceName, Message: message}
		}
		return nil
	default:
		if message == "" {
			message = status
		}
		return &provider.UpstreamError{Service: serviceName, Message: fmt.Sprintf("%s: %s", status, message)}
	}
}
