package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/congo-pay/payu_gateway/internal/country"
	"github.com/congo-pay/payu_gateway/internal/payu"
)

const (
	defaultAppName         = "PayUGateway"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultRateLimit       = 120
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName            string
	AppEnv             string
	Port               string
	LogLevel           string
	RedisURL           string
	ShutdownPeriod     time.Duration
	IdempotencyTTL     time.Duration
	APIKeyHash         string
	RateLimitPerMinute int

	// Gateway is the merchant configuration of the default country.
	Gateway payu.Config
	// Accounts maps extra country codes to their PayU account ids.
	Accounts map[string]string
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		RedisURL:           os.Getenv("REDIS_URL"),
		ShutdownPeriod:     defaultShutdownDelay,
		IdempotencyTTL:     defaultIdempotencyTTL,
		APIKeyHash:         os.Getenv("API_KEY_HASH"),
		RateLimitPerMinute: defaultRateLimit,
		Gateway: payu.Config{
			MerchantID:     os.Getenv("PAYU_MERCHANT_ID"),
			AccountID:      os.Getenv("PAYU_ACCOUNT_ID"),
			APILogin:       os.Getenv("PAYU_API_LOGIN"),
			APIKey:         os.Getenv("PAYU_API_KEY"),
			PaymentCountry: strings.ToUpper(os.Getenv("PAYU_PAYMENT_COUNTRY")),
			Language:       getEnv("PAYU_LANGUAGE", payu.DefaultLanguage),
			Test:           true,
			Endpoint:       os.Getenv("PAYU_ENDPOINT"),
			Timeout:        payu.DefaultTimeout,
		},
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}

	if v := os.Getenv("PAYU_TEST"); v != "" {
		test, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PAYU_TEST: %w", err)
		}
		cfg.Gateway.Test = test
	}

	if v := os.Getenv("PAYU_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PAYU_TIMEOUT: %w", err)
		}
		cfg.Gateway.Timeout = d
	}

	if cfg.Accounts, err = parseAccounts(os.Getenv("PAYU_ACCOUNTS")); err != nil {
		return Config{}, fmt.Errorf("invalid PAYU_ACCOUNTS: %w", err)
	}

	if cfg.Gateway.PaymentCountry == "" {
		return Config{}, fmt.Errorf("PAYU_PAYMENT_COUNTRY must be set")
	}
	if _, err := country.Lookup(cfg.Gateway.PaymentCountry); err != nil {
		return Config{}, fmt.Errorf("invalid PAYU_PAYMENT_COUNTRY: %w", err)
	}
	if cfg.Gateway.MerchantID == "" || cfg.Gateway.APILogin == "" || cfg.Gateway.APIKey == "" {
		return Config{}, fmt.Errorf("PAYU_MERCHANT_ID, PAYU_API_LOGIN and PAYU_API_KEY must be set")
	}

	if cfg.RedisURL == "" && !cfg.IsDevelopment() {
		return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment reports whether the app runs in a local environment.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// GatewayFor returns the merchant configuration for a country listed in
// Accounts. The default country keeps its own account id.
func (c Config) GatewayFor(code string) payu.Config {
	gw := c.Gateway
	gw.PaymentCountry = code
	if id, ok := c.Accounts[code]; ok {
		gw.AccountID = id
	}
	return gw
}

// parseAccounts reads "CO=512321,BR=512327".
func parseAccounts(raw string) (map[string]string, error) {
	accounts := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, id, ok := strings.Cut(pair, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("expected CC=accountId, got %q", pair)
		}
		if _, err := country.Lookup(code); err != nil {
			return nil, err
		}
		accounts[code] = id
	}
	return accounts, nil
}

func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
