// Package httpserver exposes the account service over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/aimauth/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

type Server struct {
	address         string
	handler         http.Handler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewServer wires the account routes behind request-id, access-log, recovery
// and OpenTelemetry middleware.
func NewServer(a string, l logging.Logger, accounts AccountAPI, shutdownTimeout time.Duration) *Server {
	l = l.With("module", "http_server")
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	h := NewHandler(accounts, l).Routes()
	h = withRecover(l, h)
	h = withAccessLog(l, h)
	h = withRequestID(h)

	return &Server{
		address:         a,
		handler:         otelhttp.NewHandler(h, "aimauth"),
		logger:          l,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listen)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
