package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/legxcy/outreach-api/internal/auth"
	"github.com/legxcy/outreach-api/internal/config"
	"github.com/legxcy/outreach-api/internal/database"
	"github.com/legxcy/outreach-api/internal/handler"
	middlewarepkg "github.com/legxcy/outreach-api/internal/middleware"
	"github.com/legxcy/outreach-api/internal/provider/pagespeed"
	"github.com/legxcy/outreach-api/internal/provider/places"
	"github.com/legxcy/outreach-api/internal/provider/resend"
	"github.com/legxcy/outreach-api/internal/provider/turnstile"
	"github.com/legxcy/outreach-api/internal/provider/yell"
	"github.com/legxcy/outreach-api/internal/repository"
	"github.com/legxcy/outreach-api/internal/retry"
	"github.com/legxcy/outreach-api/internal/router"
	"github.com/legxcy/outreach-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open kv store", "backend", cfg.KVBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("kv store ready", "backend", cfg.KVBackend)

	policy := retry.DefaultPolicy
	policy.AttemptTimeout = cfg.HTTPTimeout
	httpClient := &http.Client{Timeout: 2 * cfg.HTTPTimeout}

	pageSpeedPolicy := policy
	pageSpeedPolicy.AttemptTimeout = 5 * cfg.HTTPTimeout
	pageSpeedClient, err := pagespeed.NewClient(ctx, pagespeed.Config{
		HTTPClient: &http.Client{Timeout: 2 * pageSpeedPolicy.AttemptTimeout},
		APIKey:     cfg.PageSpeedAPIKey,
		BaseURL:    cfg.PageSpeedBaseURL,
		Policy:     &pageSpeedPolicy,
	})
	if err != nil {
		logger.Error("failed to create pagespeed client", "error", err)
		os.Exit(1)
	}
	placesClient := places.NewClient(httpClient, cfg.GoogleAPIKey, places.WithBaseURL(cfg.PlacesBaseURL), places.WithPolicy(policy))
	resendClient := resend.NewClient(httpClient, cfg.ResendAPIKey, cfg.ResendBaseURL, policy)
	verifier := turnstile.NewVerifier(httpClient, cfg.TurnstileSecret, cfg.TurnstileVerifyURL, policy)
	yellClient := yell.NewClient(httpClient, cfg.YellBaseURL, policy)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	cache := repository.NewOutreachCache(store)
	contactStatuses := repository.NewContactStatusRepository(store)
	quota := repository.NewSendQuota(store)

	outreachOpts := service.OutreachOptions{
		Concurrency: cfg.Concurrency,
		ForceHTTPS:  cfg.ForceHTTPS,
		PhoneRegion: cfg.PhoneRegion,
	}
	mailerOpts := service.MailerOptions{
		From:     cfg.FromEmail,
		ReplyTo:  cfg.OperatorInbox,
		DailyCap: cfg.DailyCap,
	}

	performance := service.NewPerformanceLookup(cache, pageSpeedClient, logger)
	outreachService := service.NewOutreachService(placesClient, performance, cache, outreachOpts, logger)
	contactsService := service.NewContactsService(contactStatuses)
	mailer := service.NewOutreachMailer(resendClient, quota, contactsService, mailerOpts, logger)
	contactService := service.NewContactService(resendClient, verifier, middlewarepkg.NewIPRateLimiter(cfg.RateLimitContact), mailerOpts, logger)
	outdatedService := service.NewOutdatedSitesService(yellClient, performance, cache, outreachOpts, logger)
	authService := service.NewAuthService(service.Operator{Email: cfg.OperatorEmail, PasswordHash: cfg.OperatorPasswordHash}, jwtManager)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Outreach:  handler.NewOutreachHandler(outreachService, mailer),
		Contacted: handler.NewContactedHandler(contactsService),
		Contact:   handler.NewContactFormHandler(contactService),
		Cron:      handler.NewCronHandler(outreachService, cfg.CronQueries),
		Outdated:  handler.NewOutdatedSitesHandler(outdatedService),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
