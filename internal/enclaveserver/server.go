package enclaveserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server wraps an http.Server hosting the Gin engine built by NewRouter,
// providing Start/Shutdown around its lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a Server listening on host:port. If certPath and keyPath
// are both non-empty, the server terminates TLS in-enclave; otherwise it
// serves plaintext HTTP, which is the default for local development and the
// integration test harness.
func NewServer(handler http.Handler, host string, port int, certPath, keyPath string, logger *slog.Logger) (*Server, error) {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  RequestTimeout,
		WriteTimeout: RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	if certPath != "" && keyPath != "" {
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, fmt.Errorf("load TLS key pair: %w", err)
		}
		httpServer.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	return &Server{httpServer: httpServer, logger: logger}, nil
}

// Start runs the server until it's shut down, blocking the caller.
func (s *Server) Start() error {
	s.logger.Info("starting http server", slog.String("addr", s.httpServer.Addr))

	var err error
	if s.httpServer.TLSConfig != nil {
		err = s.httpServer.ListenAndServeTLS("", "")
	} else {
		err = s.httpServer.ListenAndServe()
	}

	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
