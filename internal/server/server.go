// Package server exposes the crawler over HTTP. Each /webState request
// seeds the frontier and advances the crawl by a bounded number of steps.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/alvmarrod/web-spider/internal/crawler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server serves the crawl graph
type Server struct {
	crawler *crawler.Crawler
	steps   int
	log     logrus.FieldLogger
	mu      sync.Mutex
}

// NewHandler creates the HTTP handler. steps is the number of crawl steps
// taken per /webState request; gatherer backs /metrics and may be nil.
func NewHandler(c *crawler.Crawler, steps int, gatherer prometheus.Gatherer, log logrus.FieldLogger) http.Handler {
	s := &Server{
		crawler: c,
		steps:   steps,
		log:     log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/webState", s.WebState)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// WebState handles GET /webState?url=<seed>
func (s *Server) WebState(w http.ResponseWriter, r *http.Request) {
	seed := r.URL.Query().Get("url")
	if seed == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	// Steps of concurrent requests are not interleaved
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.crawler.Seed(seed); err != nil {
		s.log.WithError(err).WithField("url", seed).Warn("Rejected seed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for i := 0; i < s.steps; i++ {
		more, err := s.crawler.Step(r.Context())
		if err != nil {
			if !errors.Is(err, r.Context().Err()) {
				s.log.WithError(err).Error("Crawl step failed")
			}
			break
		}
		if !more {
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.crawler.Snapshot()); err != nil {
		s.log.WithError(err).Error("Failed to encode graph snapshot")
	}
}
