package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL         string        `env:"DATABASE_URL"`
	ServerAddr          string        `env:"SERVER_ADDR" envDefault:"0.0.0.0:8080"`
	RequestExpiry       time.Duration `env:"REQUEST_EXPIRY" envDefault:"10m"`
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"30s"`
	ExpirySweepLimit    int           `env:"EXPIRY_SWEEP_LIMIT" envDefault:"100"`
	IdentityBaseURL     string        `env:"IDENTITY_BASE_URL"`
	IdentitySecret      string        `env:"IDENTITY_RESOURCE_SECRET"`

	Postgres postgresEnv
}

// postgresEnv assembles a DSN when DATABASE_URL is unset.
type postgresEnv struct {
	User     string `env:"POSTGRES_USER" envDefault:"snapmatch"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"snapmatch_pass"`
	DB       string `env:"POSTGRES_DB" envDefault:"snapmatch"`
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
	SSLMode  string `env:"DATABASE_SSLMODE" envDefault:"disable"`
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DatabaseURL == "" {
		p := cfg.Postgres
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
	}
	return &cfg, nil
}
