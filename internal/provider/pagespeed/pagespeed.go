// Package pagespeed scores websites with PageSpeed Insights.
package pagespeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	pagespeedonline "google.golang.org/api/pagespeedonline/v5"

	"github.com/legxcy/outreach-api/internal/entity"
	"github.com/legxcy/outreach-api/internal/metrics"
	"github.com/legxcy/outreach-api/internal/provider"
	"github.com/legxcy/outreach-api/internal/retry"
)

const serviceName = "pagespeed"

// Strategy is the Lighthouse device profile.
type Strategy string

const (
	Mobile  Strategy = "mobile"
	Desktop Strategy = "desktop"
)

// Strategies lists every profile the pipeline scores.
var Strategies = []Strategy{Mobile, Desktop}

// Client runs the performance category of PageSpeed Insights.
type Client struct {
	svc    *pagespeedonline.Service
	apiKey string
	policy retry.Policy
}

// Config configures a Client.
type Config struct {
	HTTPClient *http.Client
	APIKey     string
	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
	Policy  *retry.Policy
}

// NewClient builds a PageSpeed client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}

	svc, err := pagespeedonline.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pagespeed service: %w", err)
	}

	policy := retry.DefaultPolicy
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	return &Client{svc: svc, apiKey: cfg.APIKey, policy: policy}, nil
}

// Score returns the 0-100 performance score of url, or Unavailable when the
// report carries no numeric score.
func (c *Client) Score(ctx context.Context, url string, strategy Strategy) (entity.Score, error) {
	resp, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*pagespeedonline.PagespeedApiPagespeedResponseV5, error) {
		start := time.Now()
		call := c.svc.Pagespeedapi.Runpagespeed(url).
			Strategy(strings.ToUpper(string(strategy))).
			Category("PERFORMANCE").
			Context(ctx)

		var callOpts []googleapi.CallOption
		if c.apiKey != "" {
			callOpts = append(callOpts, googleapi.QueryParameter("key", c.apiKey))
		}
		resp, err := call.Do(callOpts...)
		metrics.ObserveUpstream(serviceName, err, time.Since(start))
		if err != nil {
			return nil, classify(err)
		}
		return resp, nil
	}, provider.LogRetry(serviceName))
	if err != nil {
		return entity.Unavailable, fmt.Errorf("pagespeed %s %s: %w", strategy, url, err)
	}
	return extractScore(resp), nil
}

// extractScore scales the 0-1 Lighthouse fraction to 0-100.
func extractScore(resp *pagespeedonline.PagespeedApiPagespeedResponseV5) entity.Score {
	if resp == nil || resp.LighthouseResult == nil || resp.LighthouseResult.Categories == nil {
		return entity.Unavailable
	}
	perf := resp.LighthouseResult.Categories.Performance
	if perf == nil {
		return entity.Unavailable
	}
	fraction, ok := perf.Score.(float64)
	if !ok {
		return entity.Unavailable
	}
	return entity.ParseScore(fraction * 100)
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		upstream := &provider.UpstreamError{
			Service:    serviceName,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Retryable:  apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500,
		}
		if !upstream.Retryable {
			return retry.Permanent(upstream)
		}
		return upstream
	}
	return err
}
