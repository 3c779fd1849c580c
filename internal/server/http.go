package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dianoite/quiz-analytics/internal/analytics"
	"github.com/dianoite/quiz-analytics/internal/config"
)

// NewHTTPServer wires the API routes (sessions, analytics, health, metrics)
// for the service.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	handlers *analytics.HTTPHandlers,
	wsHandler http.HandlerFunc,
	registry *prometheus.Registry,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/v1/sessions/start", handlers.StartSession)
	mux.HandleFunc("/v1/sessions/challenge", handlers.LogChallengeStart)
	mux.HandleFunc("/v1/sessions/complete", handlers.CompleteChallenge)
	mux.HandleFunc("/v1/sessions/attempt", handlers.IncrementAttempts)
	mux.HandleFunc("/v1/sessions/interaction", handlers.LogInteraction)
	mux.HandleFunc("/v1/sessions/end", handlers.EndSession)
	mux.HandleFunc("/v1/sessions/{id}", handlers.GetSession)
	mux.HandleFunc("/v1/users/{id}/report", handlers.GetUserReport)
	mux.HandleFunc("/v1/users/{id}/stats", handlers.GetUserStats)
	mux.HandleFunc("/v1/analytics", handlers.ExportAnalytics)

	if wsHandler != nil {
		mux.HandleFunc("/ws/sessions", wsHandler)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS, mux),
	}
}

func corsMiddleware(cfg config.CORS, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
