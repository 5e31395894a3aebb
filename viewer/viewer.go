// Package viewer serves one run log over HTTP, read-only: run metadata at
// the root, individual steps under /get_step/{id}, and Prometheus
// collectors under /metrics.
package viewer

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jonwraymond/debuggym/metrics"
	"github.com/jonwraymond/debuggym/runlog"
)

// Options configure a Server.
type Options struct {
	// Metrics served under /metrics. Nil disables the endpoint.
	Metrics *metrics.Metrics

	// Logger for request-level diagnostics. The zero value discards
	// everything.
	Logger zerolog.Logger
}

// Server exposes a loaded run log. It never mutates the log and is safe
// for concurrent requests.
type Server struct {
	log     runlog.RunLog
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New returns a server over the given run log.
func New(l runlog.RunLog, opts Options) *Server {
	return &Server{log: l, metrics: opts.Metrics, logger: opts.Logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("GET /get_step/{id}", s.stepHandler)
	mux.HandleFunc("GET /metrics", s.metricsHandler)
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("problem", s.log.Problem).Msg("viewer listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("viewer shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// indexMetadata is the root document: the run's identity plus how many
// steps /get_step can serve.
type indexMetadata struct {
	Problem    string        `json:"problem"`
	Config     runlog.Config `json:"config"`
	UUID       string        `json:"uuid"`
	Success    bool          `json:"success"`
	TotalSteps int           `json:"total_steps"`
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexMetadata{
		Problem:    s.log.Problem,
		Config:     s.log.Config,
		UUID:       s.log.UUID,
		Success:    s.log.Success,
		TotalSteps: len(s.log.Log),
	})
}

func (s *Server) stepHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 || id >= len(s.log.Log) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Step not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.log.Log[id])
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.NotFound(w, r)
		return
	}
	promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
