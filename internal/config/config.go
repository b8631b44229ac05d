package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "MineDesk"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultWalletCacheTTL = 10 * time.Minute
	defaultPoolProvider   = "luxor"

	// Billing defaults, all amounts in cents.
	defaultHostingFeeCentsPerDay = 250
	defaultPowerRateCentsPerKWh  = 9
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	// Pool API access.
	PoolProvider     string
	LuxorAPIURL      string
	LuxorAPIKey      string
	BinanceAPIURL    string
	BinanceAPIKey    string
	BinanceAPISecret string

	// Wallet-settings cache.
	WalletCacheTTL time.Duration

	// Operator routes (cache invalidation, invoice generation).
	AdminToken string

	// Billing rates.
	HostingFeeCentsPerDay int64
	PowerRateCentsPerKWh  int64
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		PoolProvider:     strings.ToLower(getEnv("POOL_PROVIDER", defaultPoolProvider)),
		LuxorAPIURL:      getEnv("LUXOR_API_URL", "https://app.luxor.tech/api/v1"),
		LuxorAPIKey:      os.Getenv("LUXOR_API_KEY"),
		BinanceAPIURL:    getEnv("BINANCE_API_URL", "https://api.binance.com"),
		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		WalletCacheTTL:   defaultWalletCacheTTL,
		AdminToken:       os.Getenv("ADMIN_TOKEN"),

		HostingFeeCentsPerDay: defaultHostingFeeCentsPerDay,
		PowerRateCentsPerKWh:  defaultPowerRateCentsPerKWh,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.WalletCacheTTL, err = durationEnv("WALLET_CACHE_TTL", cfg.WalletCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.HostingFeeCentsPerDay, err = centsEnv("HOSTING_FEE_CENTS_PER_DAY", cfg.HostingFeeCentsPerDay); err != nil {
		return Config{}, err
	}
	if cfg.PowerRateCentsPerKWh, err = centsEnv("POWER_RATE_CENTS_PER_KWH", cfg.PowerRateCentsPerKWh); err != nil {
		return Config{}, err
	}

	switch cfg.PoolProvider {
	case "luxor", "binance":
	default:
		return Config{}, fmt.Errorf("unsupported POOL_PROVIDER %q", cfg.PoolProvider)
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.AdminToken == "" {
			return Config{}, fmt.Errorf("ADMIN_TOKEN must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development environment, where
// Postgres and Redis are optional and memory backends are substituted.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads KEY as a Go duration, falling back to KEY_SECONDS as a
// plain integer for operators who prefer raw numbers.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	return fallback, nil
}

func centsEnv(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	cents, err := strconv.ParseInt(v, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer", key)
	}
	return cents, nil
}
