// Package config loads the runtime configuration of the web service from dotenv files,
// the process environment and explicit overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "JUANTAP_"

	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultPaymentTimeout  = 30 * time.Second
	defaultMaxReceiptBytes = 10 << 20
	defaultCookieName      = "juantap_session"
	defaultSessionTTL      = 7 * 24 * time.Hour
	defaultResolution      = "completion"
	minSessionSecretLength = 16
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	LogLevel    string
	Server      ServerConfig
	Backend     BackendConfig
	Frontend    FrontendConfig
	Session     SessionConfig
	Payments    PaymentsConfig
	Status      StatusConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig points at the external REST API.
type BackendConfig struct {
	BaseURL string
}

// FrontendConfig describes the public site, used to build profile URLs and QR payloads.
type FrontendConfig struct {
	BaseURL string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// PaymentsConfig controls payment proof submission.
type PaymentsConfig struct {
	Timeout         time.Duration
	MaxReceiptBytes int64
}

// StatusConfig selects how concurrent acquisition status lookups are resolved:
// "completion" (last response wins) or "priority" (bought > pending > saved).
type StatusConfig struct {
	Resolution string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing or invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// IsLocal reports whether the service runs in a developer environment.
func (c Config) IsLocal() bool {
	return c.Environment == "local" || c.Environment == "dev"
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the dotenv file path. An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration. Precedence is dotenv < process environment < explicit map.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnvValues[key]
		return value, ok
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "ENVIRONMENT", "local")),
		LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", ""),
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "SERVER_PORT", defaultPort),
			ReadTimeout:     durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "BACKEND_BASE_URL", ""), "/"),
		},
		Frontend: FrontendConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "FRONTEND_BASE_URL", ""), "/"),
		},
		Session: SessionConfig{
			CookieName: stringWithDefault(lookup, "SESSION_COOKIE_NAME", defaultCookieName),
			Secret:     stringWithDefault(lookup, "SESSION_SECRET", ""),
			TTL:        durationWithDefault(lookup, "SESSION_TTL", defaultSessionTTL),
			Secure:     boolWithDefault(lookup, "SESSION_SECURE", true),
		},
		Payments: PaymentsConfig{
			Timeout:         durationWithDefault(lookup, "PAYMENTS_TIMEOUT", defaultPaymentTimeout),
			MaxReceiptBytes: int64(intWithDefault(lookup, "PAYMENTS_MAX_RECEIPT_BYTES", defaultMaxReceiptBytes)),
		},
		Status: StatusConfig{
			Resolution: strings.ToLower(stringWithDefault(lookup, "STATUS_RESOLUTION", defaultResolution)),
		},
	}

	if cfg.IsLocal() && !hasKey(lookup, "SESSION_SECURE") {
		cfg.Session.Secure = false
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string
	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !validBaseURL(cfg.Backend.BaseURL) {
		missing = append(missing, "Backend.BaseURL")
	}
	if !validBaseURL(cfg.Frontend.BaseURL) {
		missing = append(missing, "Frontend.BaseURL")
	}
	if len(cfg.Session.Secret) < minSessionSecretLength {
		missing = append(missing, "Session.Secret")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}
	if cfg.Payments.Timeout <= 0 {
		missing = append(missing, "Payments.Timeout")
	}
	if cfg.Payments.MaxReceiptBytes <= 0 {
		missing = append(missing, "Payments.MaxReceiptBytes")
	}
	if cfg.Status.Resolution != "completion" && cfg.Status.Resolution != "priority" {
		missing = append(missing, "Status.Resolution")
	}
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func validBaseURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func hasKey(lookup func(string) (string, bool), key string) bool {
	value, ok := lookup(key)
	return ok && value != ""
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
