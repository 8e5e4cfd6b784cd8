package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:"coursedesk.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// DefaultVATRate applies when neither the booking nor the course carries one.
	DefaultVATRate float64 `envconfig:"DEFAULT_VAT_RATE" default:"19"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	PermissionTTL time.Duration `envconfig:"PERMISSION_CACHE_TTL" default:"10m"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"coursedesk.events"`

	// MetricsToken protects /metrics when set.
	MetricsToken      string   `envconfig:"METRICS_TOKEN"`
	MetricsAllowedIPs []string `envconfig:"METRICS_ALLOWED_IPS"`

	// SweepInterval makes cmd/ledger_sweep loop instead of running once.
	SweepInterval time.Duration `envconfig:"LEDGER_SWEEP_INTERVAL" default:"0s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.DefaultVATRate < 0 || cfg.DefaultVATRate > 100 {
		return fmt.Errorf("DEFAULT_VAT_RATE must be between 0 and 100")
	}
	if cfg.PermissionTTL <= 0 {
		return fmt.Errorf("PERMISSION_CACHE_TTL must be > 0")
	}

	if cfg.IsProdLike() {
		secret := strings.TrimSpace(cfg.JWTSecret)
		if secret == "" || secret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}
