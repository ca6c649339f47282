package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds a liveness endpoint that also pings Redis when
// one is configured.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		redisStatus := "disabled"
		status := http.StatusOK

		if d.Cache != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			redisStatus = "ok"
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				redisStatus = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{"redis": redisStatus},
			"gateway":   fiber.Map{"country": d.Cfg.Gateway.PaymentCountry, "test": d.Cfg.Gateway.Test},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
