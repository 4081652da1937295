package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/boardswarmd/internal/broker"
	"github.com/nerrad567/boardswarmd/internal/config"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.ServerConfig
	Logger  *slog.Logger
	Broker  *broker.Broker
	Version string
}

// Server is the HTTP+WebSocket API server fronting a broker.Broker.
type Server struct {
	cfg     config.ServerConfig
	log     *slog.Logger
	broker  *broker.Broker
	version string

	startTime time.Time
	server    *http.Server
}

// New creates an API server. It is not started until Start is called.
func New(deps Deps) *Server {
	return &Server{
		cfg:       deps.Config,
		log:       deps.Logger,
		broker:    deps.Broker,
		version:   deps.Version,
		startTime: time.Now(),
	}
}

// Start binds the listening socket synchronously, so a bind failure
// (port already in use, permission denied, ...) is reported to the
// caller immediately instead of surfacing only as a background log
// line. Once bound, the server serves that listener in the background.
func (s *Server) Start(_ context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding API server to %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("API server error", "error", err)
		}
	}()

	s.log.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.log.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
