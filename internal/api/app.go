package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/teris-io/shortid"

	"github.com/jaeholee/decotree/internal/channel"
	"github.com/jaeholee/decotree/internal/config"
)

// App is the HTTP surface of the service: anonymous session issuance,
// the websocket channel endpoint, and read-only channel snapshots.
type App struct {
	log            *log.Logger
	controller     *channel.Controller
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string

	// swappable in tests
	generateUserId func() (string, error)
}

func NewApp(mux *http.ServeMux, logger *log.Logger, ctrl *channel.Controller, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		controller:     ctrl,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
		generateUserId: shortid.Generate,
	}

	mux.HandleFunc("POST /api/session", s.createSession)
	mux.Handle("GET /api/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/channels/{channel}", s.authMiddleware(s.getChannel))
	mux.HandleFunc("GET /api/decorations", s.decorations)
	mux.Handle("GET /channel/{channel}", s.authMiddleware(s.serveWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
