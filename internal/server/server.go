// Package server exposes digests over HTTP: the UI page, a JSON API and the
// monitoring endpoints.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/deusflow/ainews/internal/app"
	"github.com/deusflow/ainews/internal/cache"
	"github.com/deusflow/ainews/internal/metrics"
	"github.com/deusflow/ainews/internal/news"
	"github.com/deusflow/ainews/internal/render"
)

// Digester builds digests; *app.App implements it.
type Digester interface {
	Digest(ctx context.Context, category, language string) app.Digest
	CacheStats() cache.Stats
}

type Server struct {
	digester Digester
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func New(digester Digester, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{digester: digester, metrics: metrics.Global, log: log}
}

func (s *Server) WithMetrics(m *metrics.Metrics) *Server {
	s.metrics = m
	return s
}

// Routes configures the HTTP routes.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.HandleFunc("/", s.pageHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.metricsHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(corsMiddleware)
	api.HandleFunc("/news", s.newsHandler).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.categoriesHandler).Methods(http.MethodGet)
	api.HandleFunc("/languages", s.languagesHandler).Methods(http.MethodGet)
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods(http.MethodGet)

	return r
}

// pageHandler serves the UI, with a digest once a category or language is submitted.
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := render.Page{Category: q.Get("category"), Language: q.Get("language")}

	if q.Has("category") || q.Has("language") {
		d := s.digester.Digest(r.Context(), page.Category, page.Language)
		page.Message = d.Message
		if d.Message == "" {
			page.Records = d.Result.Records
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WritePage(w, page); err != nil {
		s.log.Error("error rendering page", "error", err)
	}
}

type newsResponse struct {
	Status    string        `json:"status"`
	Category  string        `json:"category"`
	Language  string        `json:"language"`
	Message   string        `json:"message,omitempty"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Records   []news.Record `json:"records"`
}

func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := s.digester.Digest(r.Context(), q.Get("category"), q.Get("language"))

	resp := newsResponse{
		Status:    "ok",
		Category:  d.Category,
		Language:  d.Language,
		Message:   d.Message,
		Succeeded: d.Result.Succeeded,
		Failed:    d.Result.Failed,
		Records:   d.Result.Records,
	}
	if resp.Records == nil {
		resp.Records = []news.Record{}
	}

	code := http.StatusOK
	if d.Message != "" {
		resp.Status = "error"
		if d.Message == app.MessageMissingInput {
			code = http.StatusBadRequest
		}
	}
	writeJSON(w, code, resp)
}

func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": news.Categories})
}

func (s *Server) languagesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"languages": news.Languages, "default": news.Languages[0]})
}

func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.digester.CacheStats())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.metrics.GetStats()

	status, code := "ok", http.StatusOK
	if !s.metrics.Healthy() {
		status, code = "error", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
		"timestamp":  time.Now().Unix(),
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetStats())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
