package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/portailcloud/demoserver/internal/accesslog"
	"github.com/portailcloud/demoserver/internal/page"
)

// Recorder receives one record per completed request.
type Recorder interface {
	Record(ctx context.Context, req accesslog.Request) error
}

// Options configures a Server.
type Options struct {
	// Root is the directory static files are served from.
	Root string
	// Renderer produces the status page for / and /index.html.
	Renderer *page.Renderer
	// Recorder is optional; when set every request is also appended to it.
	Recorder Recorder
	// Logger defaults to slog.Default() scoped to the server component.
	Logger *slog.Logger
}

// Server serves the status page and the static root over HTTP.
type Server struct {
	logger *slog.Logger
	server *http.Server

	mu       sync.Mutex
	started  bool
	listener net.Listener
	ready    chan struct{}
}

// ErrAlreadyStarted is returned by a second call to ListenTCP.
var ErrAlreadyStarted = errors.New("server already started")

// New creates a server from opts.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.With("component", "server")
	}
	root := opts.Root
	if root == "" {
		root = "."
	}

	h := newHandler(root, opts.Renderer, logger)
	s := &Server{
		logger: logger,
		ready:  make(chan struct{}),
	}
	s.server = &http.Server{
		Handler:  logRequests(h, logger, opts.Recorder),
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return s
}

// Handler returns the request handler including the access-log middleware.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenTCP binds addr and serves until Shutdown. Bind failures are
// returned immediately. A Server listens at most once.
func (s *Server) ListenTCP(addr string) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("listening", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before ListenTCP succeeds.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
