// Package provider holds the shared plumbing of the third-party API clients.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/legxcy/outreach-api/internal/metrics"
	"github.com/legxcy/outreach-api/internal/retry"
)

const maxErrorBody = 2048

// UpstreamError describes a failed call to a third-party service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// StatusError builds an UpstreamError from a non-2xx response. Only 429 and
// 5xx responses are worth retrying.
func StatusError(service string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &UpstreamError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Message:    msg,
		Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Call performs a request built by build under the retry policy and hands a
// 2xx body to decode. Non-retryable upstream errors stop the retry loop.
func Call(ctx context.Context, client Doer, policy retry.Policy, service string, build func(ctx context.Context) (*http.Request, error), decode func(r io.Reader) error) error {
	_, err := retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		start := time.Now()
		err := attempt(ctx, client, service, build, decode)
		metrics.ObserveUpstream(service, err, time.Since(start))
		if err != nil {
			var upstream *UpstreamError
			if errors.As(err, &upstream) && !upstream.Retryable {
				return struct{}{}, retry.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, LogRetry(service))
	return err
}

// LogRetry returns a retry.Notify that logs each failed attempt of service
// on the default logger before the backoff sleep.
func LogRetry(service string) retry.Notify {
	return func(attempt int, err error, wait time.Duration) {
		slog.Warn("upstream call failed, retrying",
			"service", service,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}
}

// CallJSON is Call with a JSON decoder into dest.
func CallJSON(ctx context.Context, client Doer, policy retry.Policy, service string, build func(ctx context.Context) (*http.Request, error), dest any) error {
	return Call(ctx, client, policy, service, build, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(dest)
	})
}

func attempt(ctx context.Context, client Doer, service string, build func(ctx context.Context) (*http.Request, error), decode func(r io.Reader) error) error {
	req, err := build(ctx)
	if err != nil {
		return &UpstreamError{Service: service, Message: fmt.Sprintf("build request: %v", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusError(service, resp)
	}
	if decode == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decode(resp.Body); err != nil {
		return &UpstreamError{Service: service, StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
