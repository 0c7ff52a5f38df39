package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
	"github.com/samvad-hq/samvad-newsdesk/internal/storage"
	"github.com/samvad-hq/samvad-newsdesk/internal/view"
)

// HistoryReader lists recently issued queries.
type HistoryReader interface {
	RecentQueries(limit int) ([]storage.HistoryEntry, error)
}

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Page       *view.Controller
	News       view.NewsSource
	History    HistoryReader
	SubmitWait time.Duration
	Logger     logger.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	if d.SubmitWait <= 0 {
		d.SubmitWait = 10 * time.Second
	}
	d.Logger = logger.Ensure(d.Logger)

	r := gin.New()
	r.Use(gin.Recovery())

	RegisterPageRoutes(r, d)
	RegisterNewsAPIRoutes(r, d)
	RegisterHealthRoutes(r)
	return r
}

// Server wraps the HTTP listener.
type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

// New returns a server bound to addr.
func New(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logger.Ensure(log),
	}
}

// Serve blocks until the listener stops. A graceful shutdown returns nil.
func (s *Server) Serve() error {
	s.log.InfoObj("http server listening", "http_server", map[string]any{
		"addr": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
