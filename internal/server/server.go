package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tential/gqlbody"
	"github.com/tential/gqlbody/internal/config"
	"github.com/tential/gqlbody/internal/metrics"
)

// Server serves the GraphQL endpoint and, optionally, the metrics endpoint
type Server struct {
	cfg        *config.Config
	logger     *logrus.Entry
	parser     *gqlbody.Parser
	httpServer *http.Server
	monitoring *http.Server
}

// NewServer creates a new server from cfg
func NewServer(cfg *config.Config, logger *logrus.Entry) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		cfg:    cfg,
		logger: logger.WithField("component", "server"),
	}

	s.parser = gqlbody.New(
		gqlbody.WithMaxBytes(cfg.MaxBodyBytes),
		gqlbody.WithLogger(s.logger.WithField("component", "gqlbody")),
		gqlbody.WithErrorHandler(s.handleBodyError),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Monitoring.Enabled {
		mon := http.NewServeMux()
		mon.Handle(cfg.Monitoring.MetricsPath, metrics.Handler())
		s.monitoring = &http.Server{
			Addr:              cfg.Monitoring.BindAddress,
			Handler:           mon,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware applied
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	logging := &requestLogger{logger: s.logger, logHealthRequests: s.cfg.LogHealthRequests}
	router.Use(logging.Middleware)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle(s.cfg.GraphQLPath, s.parser.Middleware(http.HandlerFunc(s.handleGraphQL))).
		Methods(http.MethodGet, http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.cfg.CORS.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Content-Encoding", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.logger),
		handlers.PrintRecoveryStack(true),
	)

	return recovery(cors(router))
}

// Start runs the server until ctx is cancelled, then shuts it down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		s.logger.WithField("address", s.httpServer.Addr).Info("Starting GraphQL server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("graphql server: %w", err)
		}
	}()

	if s.monitoring != nil {
		go func() {
			s.logger.WithFields(logrus.Fields{
				"address": s.monitoring.Addr,
				"path":    s.cfg.Monitoring.MetricsPath,
			}).Info("Starting monitoring server")
			if err := s.monitoring.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("monitoring server: %w", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return s.Shutdown()
}

// Shutdown stops both listeners within the configured timeout
func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down server")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("graphql server shutdown: %w", err))
	}
	if s.monitoring != nil {
		if err := s.monitoring.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("monitoring server shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
