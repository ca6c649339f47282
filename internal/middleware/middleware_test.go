package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/congo-pay/payu_gateway/internal/logging"
)

func TestAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app := fiber.New()
	app.Use(APIKey(string(hash)))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	cases := []struct {
		key  string
		want int
	}{
		{"", fiber.StatusUnauthorized},
		{"wrong", fiber.StatusUnauthorized},
		{"s3cret", fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
		if tc.key != "" {
			req.Header.Set(apiKeyHeader, tc.key)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("key %q: expected %d got %d", tc.key, tc.want, resp.StatusCode)
		}
	}
}

func TestAPIKeyDisabledWithoutHash(t *testing.T) {
	app := fiber.New()
	app.Use(APIKey(""))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	cache, mr := newTestCache(t)
	app := fiber.New()
	app.Use(RateLimit(cache, 2))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	send := func(key string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
		req.Header.Set(apiKeyHeader, key)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("merchant-a"); got != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, got)
		}
	}
	if got := send("merchant-a"); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := send("merchant-b"); got != fiber.StatusOK {
		t.Fatalf("other callers keep their own budget, got %d", got)
	}

	for _, k := range mr.Keys() {
		if strings.Contains(k, "merchant-a") {
			t.Fatalf("raw API key stored in redis key %s", k)
		}
	}

	mr.FastForward(61 * time.Second)
	if got := send("merchant-a"); got != fiber.StatusOK {
		t.Fatalf("window should reset, got %d", got)
	}
}

func TestRequestIDAndAudit(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logging.NewWithWriter(&buf, "info")))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadGateway, "processor down") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	id := resp.Header.Get(requestIDHeader)
	if id == "" {
		t.Fatal("missing request id header")
	}
	if !strings.Contains(buf.String(), id) {
		t.Fatalf("audit log lacks request id: %s", buf.String())
	}

	req := httptest.NewRequest(fiber.MethodGet, "/boom", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) != "caller-id" {
		t.Fatalf("caller request id not echoed")
	}
	if !strings.Contains(buf.String(), `"status":502`) || !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("audit log lacks failure: %s", buf.String())
	}
}
