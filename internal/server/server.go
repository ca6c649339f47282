package server

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/payu_gateway/internal/config"
	"github.com/congo-pay/payu_gateway/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app   *fiber.App
	cfg   config.Config
	cache *redis.Client
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
// transcript may be nil.
func New(cfg config.Config, cache *redis.Client, logger *slog.Logger, transcript io.Writer) (*Server, error) {
	// Processor calls can take up to the gateway timeout.
	timeout := cfg.Gateway.Timeout + 5*time.Second
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, Cache: cache, Logger: logger, Transcript: transcript}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, cache: cache}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
