package routes

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/payu_gateway/internal/config"
	"github.com/congo-pay/payu_gateway/internal/middleware"
	"github.com/congo-pay/payu_gateway/internal/notification"
	"github.com/congo-pay/payu_gateway/internal/payments"
	"github.com/congo-pay/payu_gateway/internal/payu"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Cache  *redis.Client
	Logger *slog.Logger
	// Transport overrides the HTTP transport to the processor.
	Transport payu.Transport
	// Transcript, when set, receives a scrubbed copy of every processor exchange.
	Transcript io.Writer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Cache == nil && !d.Cfg.IsDevelopment() {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	paymentSvc, err := buildPaymentService(d)
	if err != nil {
		return err
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	protected := api.Group("", middleware.APIKey(d.Cfg.APIKeyHash), middleware.RateLimit(d.Cache, d.Cfg.RateLimitPerMinute))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterPaymentRoutes(protected, payments.NewHandler(paymentSvc))

	return nil
}

// buildPaymentService creates one gateway for the default country and one
// for each extra country listed in the configured accounts.
func buildPaymentService(d Deps) (*payments.Service, error) {
	codes := []string{d.Cfg.Gateway.PaymentCountry}
	for code := range d.Cfg.Accounts {
		if code != d.Cfg.Gateway.PaymentCountry {
			codes = append(codes, code)
		}
	}

	var transcript io.Writer
	if d.Transcript != nil {
		transcript = &lockedWriter{w: d.Transcript}
	}

	processors := make(map[string]payments.Processor, len(codes))
	for _, code := range codes {
		cfg := d.Cfg.GatewayFor(code)
		transport := d.Transport
		if transport == nil {
			transport = payu.NewHTTPTransport(cfg.Timeout)
		}
		if transcript != nil {
			apiKey := cfg.APIKey
			transport = payu.NewRecordingTransport(transport, transcript, func(s string) string {
				return payu.Scrub(s, apiKey)
			})
		}
		processors[code] = payu.New(cfg, transport, d.Logger.With("country", code))
	}

	return payments.NewService(d.Cfg.Gateway.PaymentCountry, processors, notification.NewLoggerNotifier(d.Logger), d.Logger)
}

// lockedWriter serializes writes from the per-country recording transports.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
