// Package server exposes the incident feed over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/securo-skn/crimefeed/pkg/aggregator"
	"github.com/securo-skn/crimefeed/pkg/feed"
	"github.com/securo-skn/crimefeed/pkg/storage"
)

// ArchiveReader is the read side of the incident archive.
type ArchiveReader interface {
	ListIncidents(ctx context.Context, opts storage.ListOptions) ([]storage.Record, error)
}

type Server struct {
	Feed     *feed.Service
	Archive  ArchiveReader       // optional
	Gatherer prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	Username string
	Password string
	Log      aggregator.Logger
}

func New(svc *feed.Service, user, pass string) *Server {
	return &Server{
		Feed:     svc,
		Username: user,
		Password: pass,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	if s.Log == nil {
		s.Log = aggregator.NopLogger{}
	}
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	// API Group
	for _, p := range []string{"GET /api/incidents", "GET /api/live-feed-data"} {
		mux.HandleFunc(p, s.api(s.handleIncidents))
	}
	for _, p := range []string{"GET /api/sources", "GET /api/crime-feed-sources"} {
		mux.HandleFunc(p, s.api(s.handleSources))
	}
	for _, p := range []string{"POST /api/refresh", "POST /api/refresh-crime-sources"} {
		mux.HandleFunc(p, s.api(s.handleRefresh))
	}
	mux.HandleFunc("GET /api/archive", s.api(s.handleArchive))
	mux.HandleFunc("OPTIONS /api/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Log.Infof("Starting server on %s", addr)
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
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) api(next http.HandlerFunc) http.HandlerFunc {
	return withCORS(s.basicAuth(next))
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		next(w, r)
	}
}
