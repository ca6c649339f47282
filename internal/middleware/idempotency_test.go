package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/payu_gateway/internal/logging"
)

func newTestCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})
	return cache, mr
}

func setupIdempotentApp(t *testing.T, status int) (*fiber.App, *int32) {
	t.Helper()
	cache, _ := newTestCache(t)

	var calls int32
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/payments/purchase", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(status).JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func postPurchase(t *testing.T, app *fiber.App, key, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/payments/purchase", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(payload)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _ := setupIdempotentApp(t, fiber.StatusOK)

	status, _ := postPurchase(t, app, "", "{}")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupIdempotentApp(t, fiber.StatusOK)

	status, first := postPurchase(t, app, "abc123", `{"amount":4000}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected status 200 got %d", status)
	}

	status, second := postPurchase(t, app, "abc123", `{"amount":4000}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status 200 got %d", status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("handler invoked %d times", *calls)
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	app, _ := setupIdempotentApp(t, fiber.StatusOK)

	postPurchase(t, app, "abc123", `{"amount":4000}`)
	status, _ := postPurchase(t, app, "abc123", `{"amount":9999}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", status)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	app, calls := setupIdempotentApp(t, fiber.StatusBadGateway)

	postPurchase(t, app, "retry-me", `{}`)
	postPurchase(t, app, "retry-me", `{}`)
	if atomic.LoadInt32(calls) != 2 {
		t.Fatalf("5xx responses must be retried, handler invoked %d times", *calls)
	}
}

func TestIdempotencyInProgress(t *testing.T) {
	cache, mr := newTestCache(t)
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/payments/purchase", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	if err := mr.Set(idempotencyPrefix+"busy", inProgressMarker); err != nil {
		t.Fatalf("seed: %v", err)
	}
	status, _ := postPurchase(t, app, "busy", `{}`)
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 got %d", status)
	}
}
