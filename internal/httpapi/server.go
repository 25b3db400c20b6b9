// Package httpapi exposes the operator-facing health and metrics
// endpoints (§6), following the teacher's gorilla/mux wiring for its
// own status server.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HealthChecker reports whether a dependency the server fronts is
// reachable. postgres.DB satisfies this with a trivial ping; the
// registry client has no Ping method.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server is the health/metrics HTTP surface. It owns no business logic;
// it only reports on the subsystems it's given.
type Server struct {
	httpServer *http.Server
	checkers   map[string]HealthChecker
}

// New builds a Server listening on addr. checkers is name -> dependency,
// each polled fresh on every /readyz call.
func New(addr string, checkers map[string]HealthChecker) *Server {
	s := &Server{checkers: checkers}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("httpapi: shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readyStatus struct {
	Ready bool              `json:"ready"`
	Deps  map[string]string `json:"deps"`
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := readyStatus{Ready: true, Deps: map[string]string{}}

	for name, checker := range s.checkers {
		if err := checker.Ping(r.Context()); err != nil {
			status.Ready = false
			status.Deps[name] = err.Error()
			continue
		}
		status.Deps[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if !status.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
