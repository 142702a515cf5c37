package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/legxcy/outreach-api/internal/retry"
)

func getRequest(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestCallJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":7}`)
	}))
	defer srv.Close()

	var out struct {
		Value int `json:"value"`
	}
	if err := CallJSON(context.Background(), srv.Client(), retry.Policy{MaxAttempts: 1}, "test", getRequest(srv.URL), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != 7 {
		t.Fatalf("unexpected value %d", out.Value)
	}
}

func TestCall_RetryClassification(t *testing.T) {
	cases := map[string]struct {
		status    int
		wantCalls int32
		retryable bool
	}{
		"bad request":       {status: http.StatusBadRequest, wantCalls: 1},
		"not found":         {status: http.StatusNotFound, wantCalls: 1},
		"too many requests": {status: http.StatusTooManyRequests, wantCalls: 3, retryable: true},
		"server error":      {status: http.StatusInternalServerError, wantCalls: 3, retryable: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				fmt.Fprint(w, "nope")
			}))
			defer srv.Close()

			policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
			err := Call(context.Background(), srv.Client(), policy, "test", getRequest(srv.URL), nil)

			var upstream *UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upstream.StatusCode != tc.status || upstream.Retryable != tc.retryable || upstream.Message != "nope" {
				t.Fatalf("unexpected upstream error %+v", upstream)
			}
			if calls != tc.wantCalls {
				t.Fatalf("expected %d calls, got %d", tc.wantCalls, calls)
			}
		})
	}
}

func TestCall_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	var calls int
	err := Call(context.Background(), srv.Client(), retry.Policy{MaxAttempts: 3}, "test", getRequest(srv.URL), func(r io.Reader) error {
		calls++
		return errors.New("bad payload")
	})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if calls != 1 {
		t.Fatalf("expected decode failures not to be retried, got %d", calls)
	}
}

func TestCall_LogsRetries(t *testing.T) {
	buf := &bytes.Buffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	policy := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	if err := Call(context.Background(), srv.Client(), policy, "places", getRequest(srv.URL), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "upstream call failed, retrying") != 1 {
		t.Fatalf("expected one retry log line, got %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "service=places") || !strings.Contains(out, "attempt=1") {
		t.Fatalf("unexpected retry log line: %s", out)
	}
}
