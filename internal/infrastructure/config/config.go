package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sethvargo/go-envconfig"
)

// ErrInvalidConfig wraps every configuration failure. The process must not
// start when Load returns it.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth   AuthConfig
	Store  StoreConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
	Redis  RedisConfig
}

type AuthConfig struct {
	SecretKey                string `env:"SECRET_KEY, required"`
	Algorithm                string `env:"ALGORITHM, required"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, required"`
	BcryptCost               int    `env:"BCRYPT_COST, default=10"`
}

// TokenTTL is the lifetime of issued access tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_api"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=tasks.db"`
}

// RedisConfig configures the idempotency store.
type RedisConfig struct {
	Enabled bool   `env:"REDIS_ENABLED, default=true"`
	Addr    string `env:"REDIS_ADDR,    default=localhost:6379"`
	DB      int    `env:"REDIS_DB,      default=0"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envconfig cannot: non-blank secret, an HMAC
// signing algorithm, a positive token lifetime and a known store driver.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		return fmt.Errorf("%w: SECRET_KEY must not be empty", ErrInvalidConfig)
	}
	if _, ok := jwt.GetSigningMethod(c.Auth.Algorithm).(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("%w: ALGORITHM %q is not a supported HMAC algorithm", ErrInvalidConfig, c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("%w: ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", ErrInvalidConfig, c.Auth.AccessTokenExpireMinutes)
	}
	switch c.Store.Driver {
	case StoreMongo, StoreSQLite:
	default:
		return fmt.Errorf("%w: STORE_DRIVER %q must be %q or %q", ErrInvalidConfig, c.Store.Driver, StoreMongo, StoreSQLite)
	}
	return nil
}
