package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/joeshaw/envdecode"
)

const (
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

type Config struct {
	// Required: HS256 secret, at least 32 bytes
	SecretKey          string `env:"JWT_SECRET_KEY,required"`
	AccessExpiredSecs  int64  `env:"JWT_ACCESS_EXPIRED,default=1800"`
	RefreshExpiredSecs int64  `env:"JWT_REFRESH_EXPIRED,default=1209600"`

	// StoreDriver is redis or memory. The memory driver only works for a
	// single instance.
	StoreDriver  string `env:"STORE_DRIVER,default=redis"`
	Redis        redis.Config
	DatabaseFile string `env:"AUTH_DATABASE_FILE,default=auth.db"`

	Env                  string        `env:"ENV,default=dev"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	LogFormat            string        `env:"LOG_FORMAT,default=json"`
	Port                 int           `env:"PORT,default=8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD,default=10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL,default=1h"`

	// TrustProxyHeaders keys rate limits on X-Forwarded-For. Leave it off
	// unless a proxy in front overwrites the header.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS,default=false"`

	RateLimit RateLimitConfig
}

// RateLimitConfig overrides the httpx profiles. Unset values keep the
// defaults.
type RateLimitConfig struct {
	StrictRequests    int `env:"RATELIMIT_STRICT_REQUESTS"`
	StrictWindowSec   int `env:"RATELIMIT_STRICT_WINDOW_SEC"`
	StrictBurst       int `env:"RATELIMIT_STRICT_BURST"`
	ModerateRequests  int `env:"RATELIMIT_MODERATE_REQUESTS"`
	ModerateWindowSec int `env:"RATELIMIT_MODERATE_WINDOW_SEC"`
	ModerateBurst     int `env:"RATELIMIT_MODERATE_BURST"`
}

func (c RateLimitConfig) Strict() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{
		Requests: c.StrictRequests,
		Window:   time.Duration(c.StrictWindowSec) * time.Second,
		Burst:    c.StrictBurst,
	}.Or(httpx.StrictLimit)
}

func (c RateLimitConfig) Moderate() httpx.RateLimitConfig {
	return httpx.RateLimitConfig{
		Requests: c.ModerateRequests,
		Window:   time.Duration(c.ModerateWindowSec) * time.Second,
		Burst:    c.ModerateBurst,
	}.Or(httpx.ModerateLimit)
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks what envdecode can't. The secret's length is checked
// when the signing key is built.
func (c Config) Validate() error {
	var errs []error

	if c.AccessExpiredSecs <= 0 {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRED must be positive, got %d", c.AccessExpiredSecs))
	}
	if c.RefreshExpiredSecs <= 0 {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_EXPIRED must be positive, got %d", c.RefreshExpiredSecs))
	}

	switch c.StoreDriver {
	case StoreDriverRedis, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q",
			StoreDriverRedis, StoreDriverMemory, c.StoreDriver))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	return errors.Join(errs...)
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessExpiredSecs) * time.Second
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpiredSecs) * time.Second
}
