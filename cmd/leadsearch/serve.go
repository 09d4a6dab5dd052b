package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"leadsearch/internal/api"
	"leadsearch/internal/auth"
	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (host:port), overrides the configured one",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}
			return serve(ctx, cfg, logger)
		},
	}
}

func initSentry(cfg *config.Config, logger observability.Logger) bool {
	if cfg.Sentry.DSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Metrics.Version,
		TracesSampleRate: 1.0,
		AttachStacktrace: true,
	})
	if err != nil {
		logger.Warn("sentry initialization failed", "error", err)
		return false
	}
	logger.Info("sentry initialized", "environment", cfg.Sentry.Environment, "release", cfg.Metrics.Version)
	return true
}

func serve(ctx context.Context, cfg *config.Config, logger observability.Logger) error {
	if initSentry(cfg, logger) {
		defer sentry.Flush(2 * time.Second)
	}

	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Error("error closing store", "error", err)
		}
	}()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics)
		logger.Info("metrics enabled", "namespace", cfg.Metrics.Namespace, "version", cfg.Metrics.Version)
	} else {
		logger.Info("metrics disabled")
	}

	rateCfg := api.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}
	if cfg.TrustedProxies != "" {
		rateCfg.Proxies, err = api.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return fmt.Errorf("trusted proxies: %w", err)
		}
		logger.Info("trusted proxies configured", "count", len(rateCfg.Proxies.CIDRs))
	}
	if rateCfg.Enabled() {
		logger.Info("rate limiting configured", "requests_per_second", rateCfg.RequestsPerSecond, "burst", rateCfg.Burst)
	} else {
		logger.Info("rate limiting disabled")
	}

	mux := http.NewServeMux()
	srv, err := api.NewServer(mux, be.store, be.searchLog, be.sessions, cfg.Pagination, logger, metrics)
	if err != nil {
		return err
	}
	srv.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(rateCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("leadsearch listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", "timeout", cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	})
	g.Go(func() error {
		cleanSessions(gctx, be.sessions, cfg.SessionCleanupInterval, logger)
		return nil
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

// cleanSessions removes expired sessions every interval until ctx is done.
func cleanSessions(ctx context.Context, sessions auth.SessionStore, interval time.Duration, logger observability.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Cleanup(ctx)
			if err != nil {
				logger.Warn("session cleanup error", "error", err)
			} else if n > 0 {
				logger.Info("cleaned up expired sessions", "count", n)
			}
		}
	}
}
