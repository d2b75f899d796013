package ws

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

//go:embed templates/index.html
var templatesFS embed.FS

type server struct {
	srv      *http.Server
	hub      domain.HubUseCase
	upgrader websocket.Upgrader
	page     *template.Template
	logger   *zap.Logger
}

func New(addr string, hub domain.HubUseCase, logger *zap.Logger) *server {
	s := &server{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		page:   template.Must(template.ParseFS(templatesFS, "templates/index.html")),
		logger: logger,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.index)
	r.Get("/game", s.serveWs)
	r.Get("/health", s.healthCheck)
	r.Post("/api/move", s.selectMove)
	return r
}

func (s *server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks until the server stops; a graceful Shutdown is not an error.
func (s *server) ListenAndServe() error {
	s.logger.Info("starting listening address: " + s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithMessage(err, "listen and serve")
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
