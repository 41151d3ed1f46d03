// Package server exposes read-only pedigree queries over HTTP.
//
// The server holds one simulated (or imported) population. Individuals are
// addressed by pid in every route; handles never leave the process.
//
//	GET /healthz
//	GET /pedigrees
//	GET /pedigrees/{id}
//	GET /pedigrees/{id}/dot?detailed=true
//	GET /individuals/{pid}
//	GET /distance?from=&to=
//	GET /path?from=&to=
//	GET /histogram?pid=&max_generation=
//	GET /haplotypes/distance?a=&b=
//	GET /metrics
//
// Failures are written as {"code": ..., "message": ...} with the HTTP status
// derived from the error code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/genealogy"
)

// Server answers queries against one population.
type Server struct {
	pop    *genealogy.Population
	runID  string
	logger *log.Logger

	gatherer prometheus.Gatherer

	// mu serializes core calls; pedigrees cache their root lazily.
	mu sync.Mutex
}

// Options configures a Server.
type Options struct {
	RunID  string
	Logger *log.Logger
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
}

// New creates a server for pop. Pedigrees must already be assigned.
func New(pop *genealogy.Population, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		pop:      pop,
		runID:    opts.RunID,
		logger:   logger,
		gatherer: opts.Gatherer,
	}
}

// Handler returns the chi router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/pedigrees", s.handlePedigrees)
	r.Route("/pedigrees/{id}", func(r chi.Router) {
		r.Get("/", s.handlePedigree)
		r.Get("/dot", s.handlePedigreeDOT)
	})
	r.Get("/individuals/{pid}", s.handleIndividual)
	r.Get("/distance", s.handleDistance)
	r.Get("/path", s.handlePath)
	r.Get("/histogram", s.handleHistogram)
	r.Get("/haplotypes/distance", s.handleHaplotypeDistance)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving queries", "addr", addr, "run", s.runID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("query failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: perrors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code perrors.Code) int {
	switch code {
	case perrors.ErrCodePrecondition, perrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case perrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
