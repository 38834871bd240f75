// Package api serves the import engine over HTTP for the back-office UI.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/policy-sync/internal/analytics"
	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// OperatorHeader carries the id of the signed-in operator.
const OperatorHeader = "X-Operator-ID"

// DefaultMaxUpload bounds the size of an uploaded import file.
const DefaultMaxUpload = 32 << 20

// Server routes API requests to the engine and the store.
type Server struct {
	store     service.Storage
	engine    *reconcile.Engine
	reporter  *analytics.Reporter
	logger    *slog.Logger
	router    *mux.Router
	maxUpload int64
}

// NewServer creates a server. The engine options apply to every upload.
func NewServer(store service.Storage, opts reconcile.Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger
	reporter, err := analytics.NewReporter(store)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:     store,
		engine:    reconcile.NewEngine(store, opts),
		reporter:  reporter,
		logger:    logger,
		router:    mux.NewRouter().StrictSlash(true),
		maxUpload: DefaultMaxUpload,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/imports/{kind:policies|claims}", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/companies", s.handleCompanies).Methods(http.MethodGet)
	api.HandleFunc("/policies", s.handlePolicies).Methods(http.MethodGet)
	api.HandleFunc("/templates/{kind:policies|claims}", s.handleTemplate).Methods(http.MethodGet)
	api.HandleFunc("/reports/loss-ratio", s.handleLossRatio).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled. A non-nil tlsConfig
// serves HTTPS with its certificates.
func (s *Server) ListenAndServe(ctx context.Context, addr string, tlsConfig *tls.Config) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr, "tls", tlsConfig != nil)
		if tlsConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("request_id", uuid.NewString())
		r = r.WithContext(context.WithValue(r.Context(), common.LoggerKey{}, logger))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
