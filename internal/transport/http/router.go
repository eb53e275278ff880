package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"daily-challenge-service/internal/app"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Service       *app.DailyChallengeService
	Authenticator *Authenticator
	Metrics       http.Handler
	DefaultLimit  int
	Logger        *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(cfg.Service, cfg.DefaultLimit, logger)
	ws := NewWSHandler(cfg.Service, logger)

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/api/daily-challenge", func(sr chi.Router) {
		sr.Get("/problems", h.Problems)
		sr.Post("/score-only", h.ScoreOnly)
		sr.Get("/leaderboard", h.Leaderboard)
		sr.Get("/leaderboard/live", ws.ServeWS)
		sr.Get("/average", h.Average)

		sr.Group(func(pr chi.Router) {
			pr.Use(cfg.Authenticator.Middleware)
			pr.Post("/submit", h.Submit)
			pr.Get("/me", h.Me)
			pr.Get("/history", h.History)
		})
	})

	r.Route("/api/admin/daily-challenge", func(ar chi.Router) {
		ar.Use(cfg.Authenticator.Middleware, cfg.Authenticator.RequireAdmin)
		ar.Delete("/reset", h.Reset)
	})

	return r
}

// statusRecorder captures the status code for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// websocket upgrades need the raw writer for hijacking
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
