package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/analytics"
	"github.com/dianoite/quiz-analytics/internal/config"
	"github.com/dianoite/quiz-analytics/internal/logging"
	"github.com/dianoite/quiz-analytics/internal/metrics"
	"github.com/dianoite/quiz-analytics/internal/scoring"
	"github.com/dianoite/quiz-analytics/internal/server"
	"github.com/dianoite/quiz-analytics/internal/session"
	"github.com/dianoite/quiz-analytics/internal/stats"
	"github.com/dianoite/quiz-analytics/pkg/http/ws"
)

// Application aggregates shared infrastructure for the analytics service.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger
	http   *http.Server
}

// New bootstraps config, logger, the in-memory tracking core, and the HTTP
// server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	strategy, err := scoring.NewStrategy(cfg.Scoring.Strategy, scoring.CompositeWeights{
		Time:       cfg.Scoring.TimeWeight,
		Accuracy:   cfg.Scoring.AccuracyWeight,
		Streak:     cfg.Scoring.StreakWeight,
		Difficulty: cfg.Scoring.DifficultyWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("build scoring strategy: %w", err)
	}
	logger.Info().Str("strategy", strategy.Name()).Msg("scoring strategy configured")

	store := session.NewStore(logger)
	tracker := session.NewTracker(logger)
	calculator := scoring.NewCalculator(strategy)
	aggregator := stats.NewAggregator(logger)
	streaks := stats.NewStreakManager()
	exporter := stats.NewExporter(cfg.Gameplay.ActivityID)
	hub := ws.NewHub(logger)

	svc := analytics.NewService(
		store,
		tracker,
		calculator,
		aggregator,
		streaks,
		exporter,
		hub,
		m,
		analytics.ServiceOptions{
			DefaultTimeLimit: cfg.Gameplay.DefaultTimeLimit.Seconds(),
		},
		logger,
	)

	handlers := analytics.NewHTTPHandlers(svc, logger)
	wsHandler := analytics.NewWSHandler(hub, logger)

	apiServer := server.NewHTTPServer(cfg, logger, handlers, wsHandler.HandleWebSocket, registry)

	return &Application{
		cfg:    cfg,
		logger: logger,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
