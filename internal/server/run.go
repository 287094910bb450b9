// Package server assembles the StreakedIn HTTP service from its components.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/streakedin/streakedin/internal/ai"
	"github.com/streakedin/streakedin/internal/api"
	"github.com/streakedin/streakedin/internal/auth"
	"github.com/streakedin/streakedin/internal/changefeed"
	"github.com/streakedin/streakedin/internal/config"
	"github.com/streakedin/streakedin/internal/factory"
	"github.com/streakedin/streakedin/internal/health"
	"github.com/streakedin/streakedin/internal/logger"
	"github.com/streakedin/streakedin/internal/reminders"
	"github.com/streakedin/streakedin/internal/services"
	"github.com/streakedin/streakedin/internal/store"
)

// Run starts the StreakedIn server and blocks until shutdown or error.
func Run() error {
	log := logger.New("streakedin-server")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.WithLevel(log, cfg.LogLevel)

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("ai_provider", cfg.AIProvider).
		Msg("StreakedIn server starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := buildServices(ctx, cfg, log, st, tokens)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	worker := reminders.NewWorker(svc.Reminders, reminders.LogNotifier{Log: log}, reminders.Config{
		Interval: cfg.ReminderInterval,
	}, log)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Stack().Err(err).Msg("reminder worker stopped")
		}
	}()

	router := api.NewRouter(api.RouterDeps{
		Services:       svc,
		Authorizer:     auth.NewAuthorizer(cfg, tokens),
		AllowedOrigins: cfg.AllowedOrigins,
		Health:         api.NewHealthHandler(svcHealth.IsHealthy, components(svcHealth, svc.Suggestions)),
		Log:            log,
	})

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildServices wires the domain services over st.
func buildServices(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, tokens *auth.TokenIssuer) *services.Services {
	gen := ai.NewGenerator(factory.NewModel(ctx, cfg, log), factory.NewBreaker(cfg), log).WithTimeout(cfg.AITimeout)
	deps := services.Deps{
		Store: st,
		Feed:  changefeed.New(cfg.ChangefeedBuffer, log),
		Log:   log,
	}
	return services.New(deps, gen, tokens, cfg.StatsDebounce)
}

// startHealthCheckers starts the store probe and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	interval := cfg.HealthInterval()

	if pinger, ok := st.(health.HealthPinger); ok {
		storeChecker := health.NewPingChecker("store", pinger, log, cfg.HealthProbeTimeout())
		go storeChecker.Start(ctx, interval)
		checkers = append(checkers, storeChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

// components reports the AI breaker next to the probed dependencies without
// letting it gate service health.
func components(svcHealth *health.ServiceHealthChecker, suggestions *services.SuggestionsService) func() map[string]bool {
	return func() map[string]bool {
		out := svcHealth.Components()
		out["ai"] = suggestions.Status().State != ai.BreakerOpen.String()
		return out
	}
}

// WriteTimeout stays zero so websocket streams are not cut off.
func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout is interval*2 with a minimum of 60 seconds.
func startupHealthTimeout(interval time.Duration) time.Duration {
	timeout := interval * 2
	if timeout < time.Minute {
		return time.Minute
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeout := startupHealthTimeout(cfg.HealthInterval())
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
