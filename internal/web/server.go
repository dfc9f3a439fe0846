// Package web serves the HTTP API for inspecting bot status, post
// history, and schedules.
package web

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/marketbat/marketbat/internal/config"
	"github.com/marketbat/marketbat/internal/ledger"
	"github.com/marketbat/marketbat/internal/realtime"
	"github.com/marketbat/marketbat/internal/scheduler"
	"github.com/marketbat/marketbat/internal/web/api"
)

// Server is the HTTP server for the marketbat API.
type Server struct {
	logger     zerolog.Logger
	httpServer *http.Server
}

// NewServer creates a Server with the given dependencies.
func NewServer(
	logger zerolog.Logger,
	addr string,
	statusDir string,
	posts ledger.PostStore,
	events *realtime.Broker,
	getConfig func() *config.Config,
	slots func() []scheduler.SlotInfo,
	triggerSlot func(slot string),
) *Server {
	mux := http.NewServeMux()

	a := &api.API{
		Logger:      logger,
		StatusDir:   statusDir,
		Posts:       posts,
		Events:      events,
		GetConfig:   getConfig,
		Slots:       slots,
		TriggerSlot: triggerSlot,
	}
	a.RegisterRoutes(mux)

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: corsMiddleware(mux),
		},
	}
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds permissive CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
