package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string `env:"PORT,            default=8080"`
	Env           string `env:"ENV,             default=development"`
	LogLevel      string `env:"LOG_LEVEL,       default=info"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
	SentryDSN     string `env:"SENTRY_DSN"`

	Token   TokenConfig
	Account AccountConfig
	Notify  NotifyConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type TokenConfig struct {
	Secret          string        `env:"JWT_SECRET"`
	Issuer          string        `env:"JWT_ISSUER,             default=todoapp"`
	Algorithm       string        `env:"JWT_ALGORITHM,          default=HS256"`
	AccessTTL       time.Duration `env:"ACCESS_TOKEN_TTL,       default=15m"`
	RefreshTTL      time.Duration `env:"REFRESH_TOKEN_TTL,      default=168h"`
	VerificationTTL time.Duration `env:"VERIFICATION_TOKEN_TTL, default=24h"`
	UnlockTTL       time.Duration `env:"UNLOCK_TOKEN_TTL,       default=24h"`
	EnableTTL       time.Duration `env:"ENABLE_TOKEN_TTL,       default=24h"`
}

type AccountConfig struct {
	DefaultRole      string        `env:"DEFAULT_ROLE,      default=USER"`
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD, default=5"`
	UnverifiedGrace  time.Duration `env:"UNVERIFIED_GRACE,  default=168h"`
	BcryptCost       int           `env:"BCRYPT_COST,       default=10"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=todoapp"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the auth subsystem cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Token.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Account.LockoutThreshold < 0 {
		errs = append(errs, errors.New("LOCKOUT_THRESHOLD must not be negative"))
	}
	if c.Account.UnverifiedGrace < 0 {
		errs = append(errs, errors.New("UNVERIFIED_GRACE must not be negative"))
	}
	for name, ttl := range map[string]time.Duration{
		"ACCESS_TOKEN_TTL":       c.Token.AccessTTL,
		"REFRESH_TOKEN_TTL":      c.Token.RefreshTTL,
		"VERIFICATION_TOKEN_TTL": c.Token.VerificationTTL,
		"UNLOCK_TOKEN_TTL":       c.Token.UnlockTTL,
		"ENABLE_TOKEN_TTL":       c.Token.EnableTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
