package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/legxcy/outreach-api/internal/config"
)

// RouteRateLimiter applies one shared token bucket to the given route paths.
// With no paths every request is limited.
func RouteRateLimiter(cfg config.RateLimitConfig, paths ...string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	limiter := newLimiter(cfg)
	var mu sync.Mutex

	guarded := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		guarded[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(guarded) > 0 {
				if _, ok := guarded[c.Path()]; !ok {
					return next(c)
				}
			}

			mu.Lock()
			allowed := limiter.Allow()
			mu.Unlock()

			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}

			return next(c)
		}
	}
}

// IPRateLimiter admits cfg.Requests per client key within a fixed window of
// cfg.Interval that starts at the key's first request.
type IPRateLimiter struct {
	cfg     config.RateLimitConfig
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewIPRateLimiter builds a per-key limiter. A zero cfg admits everything.
func NewIPRateLimiter(cfg config.RateLimitConfig) *IPRateLimiter {
	return &IPRateLimiter{cfg: cfg, windows: make(map[string]*window), now: time.Now}
}

// Allow counts one request for key. Expired windows are dropped.
func (l *IPRateLimiter) Allow(key string) bool {
	if l.cfg.Requests <= 0 || l.cfg.Interval <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	w, ok := l.windows[key]
	if !ok {
		w = &window{start: now}
		l.windows[key] = w
	}
	if w.count >= l.cfg.Requests {
		return false
	}
	w.count++
	return true
}

func (l *IPRateLimiter) prune(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.start.Add(l.cfg.Interval)) {
			delete(l.windows, key)
		}
	}
}

func newLimiter(cfg config.RateLimitConfig) *rate.Limiter {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
}

// ClientIP returns the first X-Forwarded-For entry, falling back to echo's RealIP.
func ClientIP(c echo.Context) string {
	if forwarded := c.Request().Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return c.RealIP()
}
