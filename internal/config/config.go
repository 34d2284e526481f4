// Package config loads the BFF runtime configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultCookieName = "windback_token"
	// DefaultSessionMaxAge is the fixed seven-day credential horizon.
	DefaultSessionMaxAge = 7 * 24 * time.Hour
)

// Config is built once at startup and passed explicitly to every component
// that needs it.
type Config struct {
	Env      string
	HTTPAddr string

	// BackendURL is the origin of the private upstream API. Requests are
	// forwarded under BackendURL + "/api/v1/".
	BackendURL string

	CookieName    string
	SessionMaxAge time.Duration

	ShutdownTimeout time.Duration

	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Env:             env("WINDBACK_ENV", EnvDevelopment),
		HTTPAddr:        env("WINDBACK_HTTP_ADDR", ":3000"),
		BackendURL:      env("BACKEND_URL", "http://localhost:8080"),
		CookieName:      env("SESSION_COOKIE_NAME", DefaultCookieName),
		SessionMaxAge:   envSeconds("SESSION_MAX_AGE_SEC", DefaultSessionMaxAge),
		ShutdownTimeout: envSeconds("SHUTDOWN_TIMEOUT_SEC", 10*time.Second),
		OTLPEndpoint:    env("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration that would make the gateway unusable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid BACKEND_URL %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid BACKEND_URL %q: missing host", c.BackendURL)
	}
	if strings.TrimSpace(c.CookieName) == "" {
		return fmt.Errorf("session cookie name must not be empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %s", c.SessionMaxAge)
	}
	return nil
}

// IsProduction reports whether cookies must carry the Secure attribute.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction) || strings.EqualFold(c.Env, "prod")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envSeconds(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return time.Duration(i) * time.Second
}
