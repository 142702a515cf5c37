package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/legxcy/outreach-api/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "request_id=rid-123") || !strings.Contains(buf.String(), "status=200") {
		t.Fatalf("expected log output to contain request id and status, got %s", buf.String())
	}

	// ensure errors are propagated and logged
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	if !strings.Contains(buf.String(), "rid-456") || !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected second log entry at error level, got %s", buf.String())
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
	if strings.Contains(buf.String(), "operator=") {
		t.Fatalf("expected no operator on anonymous requests, got %s", buf.String())
	}

	// authenticated requests carry the operator e-mail
	buf.Reset()
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyUserEmail, "ops@legxcysol.dev")
	if err := Logging(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "operator=ops@legxcysol.dev") {
		t.Fatalf("expected operator in log output, got %s", buf.String())
	}
}

func TestRouteRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Second}
	mw := RouteRateLimiter(cfg, "/api/outreach")

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/outreach", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/outreach")

	_ = mw(next)(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/outreach", nil)
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(req2, rec2)
	c2.SetPath("/api/outreach")
	_ = mw(next)(c2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", rec2.Code)
	}

	// Unguarded path should bypass limiter.
	req3 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec3 := httptest.NewRecorder()
	c3 := e.NewContext(req3, rec3)
	c3.SetPath("/healthz")
	_ = mw(next)(c3)
	if rec3.Code != http.StatusOK {
		t.Fatalf("expected unguarded request to pass")
	}

	// zero config should behave as passthrough
	mw = RouteRateLimiter(config.RateLimitConfig{}, "/api/outreach")
	req4 := httptest.NewRequest(http.MethodGet, "/api/outreach", nil)
	rec4 := httptest.NewRecorder()
	c4 := e.NewContext(req4, rec4)
	c4.SetPath("/api/outreach")
	_ = mw(next)(c4)
	if rec4.Code != http.StatusOK {
		t.Fatalf("expected passthrough when limiter disabled")
	}
	if nextCalls != 3 {
		t.Fatalf("expected next handler to be invoked 3 times, got %d", nextCalls)
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(config.RateLimitConfig{Requests: 3, Interval: 15 * time.Minute})
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !limiter.Allow("203.0.113.7") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("203.0.113.7") {
		t.Fatalf("fourth request should be rejected")
	}
	if !limiter.Allow("198.51.100.2") {
		t.Fatalf("other clients keep their own budget")
	}

	now = now.Add(5*time.Minute + time.Second)
	if limiter.Allow("203.0.113.7") {
		t.Fatalf("budget must not refill within the window")
	}

	now = now.Add(9*time.Minute + 58*time.Second)
	if limiter.Allow("203.0.113.7") {
		t.Fatalf("budget must not refill before the window ends")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("203.0.113.7") {
		t.Fatalf("expected a new window after the interval")
	}
	if len(limiter.windows) != 1 {
		t.Fatalf("expected expired windows to be pruned, got %d", len(limiter.windows))
	}

	open := NewIPRateLimiter(config.RateLimitConfig{})
	for i := 0; i < 10; i++ {
		if !open.Allow("x") {
			t.Fatalf("zero config should admit everything")
		}
	}
}

func TestClientIP(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.Header.Set(echo.HeaderXForwardedFor, " 203.0.113.7 , 10.0.0.1")
	if got := ClientIP(e.NewContext(req, httptest.NewRecorder())); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	if got := ClientIP(e.NewContext(req, httptest.NewRecorder())); got != "192.0.2.10" {
		t.Fatalf("expected remote address, got %q", got)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("operator")

	t.Run("missing role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("incorrect role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "viewer")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyUserRole, "operator")

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			rid := RequestIDFromContext(c)
			if rid == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})

	t.Run("replace malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "bad id with spaces")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := rec.Header().Get("X-Request-ID"); got == "" || strings.Contains(got, " ") {
			t.Fatalf("expected generated request id, got %q", got)
		}
	})
}
