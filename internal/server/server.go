package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/srg/buttplugd/internal/config"
	"github.com/srg/buttplugd/internal/devicemanager"
	"github.com/srg/buttplugd/internal/groutine"
)

// Server accepts websocket connections and runs one Session per connection,
// enforcing the single-active-client rule (spec section 4.7: "Only one
// client is Active at a time; a second transport connection is rejected").
type Server struct {
	manager *devicemanager.Manager
	cfg     *config.ServerConfig
	logger  *logrus.Logger

	httpServer *http.Server

	mu     sync.Mutex
	active bool
}

// New builds a Server bound to manager, ready to Serve on an http.Server.
func New(manager *devicemanager.Manager, cfg *config.ServerConfig, logger *logrus.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultServerConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	s := &Server{manager: manager, cfg: cfg, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConnect)
	s.httpServer = &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	return s
}

// ListenAndServe blocks serving websocket connections until ctx is canceled
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	groutine.Go(ctx, "server.listen", func(context.Context) {
		errc <- s.httpServer.ListenAndServe()
	})

	select {
	case <-ctx.Done():
		return s.httpServer.Close()
	case err := <-errc:
		return err
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if !s.claim() {
		http.Error(w, "a client is already connected", http.StatusConflict)
		return
	}
	defer s.release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	transport := newWebsocketTransport(conn)
	session := NewSession(transport, s.manager, s.cfg, s.logger)

	if err := session.Run(r.Context()); err != nil {
		s.logger.WithError(err).Debug("session ended")
	}
}

func (s *Server) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}
