package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// ErrMissingBackendURL is returned when BACKEND_URL is not configured.
var ErrMissingBackendURL = errors.New("BACKEND_URL is required")

// Config holds the runtime settings of the back-office gateway.
//
// CORS_ORIGINS lists allowed origins separated by ";" (the envdecode slice
// separator). Commas are accepted too and split by Validate.
type Config struct {
	Port           string        `env:"PORT,default=8081"`
	Env            string        `env:"APP_ENV,default=production"`
	BackendURL     string        `env:"BACKEND_URL"`
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT,default=30s"`
	ReportTimeout  time.Duration `env:"REPORT_TIMEOUT,default=5m"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	CORSOrigins    []string      `env:"CORS_ORIGINS,default=http://localhost:3000"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=40"`
	DraftTTL       time.Duration `env:"WIZARD_DRAFT_TTL,default=30m"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and clamps invalid values to defaults.
func (c *Config) Validate() error {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	if c.BackendURL == "" {
		return ErrMissingBackendURL
	}
	if c.BackendTimeout <= 0 {
		c.BackendTimeout = 30 * time.Second
	}
	if c.ReportTimeout <= 0 {
		c.ReportTimeout = 5 * time.Minute
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 20
	}
	if c.RateLimitBurst < c.RateLimitRPS {
		c.RateLimitBurst = c.RateLimitRPS
	}
	if c.DraftTTL <= 0 {
		c.DraftTTL = 30 * time.Minute
	}
	c.CORSOrigins = splitOrigins(c.CORSOrigins)
	return nil
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func splitOrigins(values []string) []string {
	var origins []string
	for _, v := range values {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return origins
}
