package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes holds the handlers mounted on the HTTP router.
type Routes struct {
	Twilio       http.Handler
	Telegram     http.Handler
	TelegramPath string
	// StaticDir is served read-only under /static/.
	StaticDir string
	// Health reports backend readiness for /healthz.
	Health func(ctx context.Context) error
}

// NewRouter wires webhooks, invoice downloads and health checks.
func NewRouter(rt Routes, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"service": "billbot", "status": "running"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if rt.Health != nil {
			if err := rt.Health(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if rt.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", noListing(http.FileServer(http.Dir(rt.StaticDir)))))
	}
	if rt.Twilio != nil {
		r.Method(http.MethodPost, "/webhooks/twilio", rt.Twilio)
	}
	if rt.Telegram != nil && rt.TelegramPath != "" {
		r.Method(http.MethodPost, rt.TelegramPath, rt.Telegram)
	}
	return r
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
