package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultDatabaseHost   = "localhost"
	defaultDatabasePort   = "5432"
	defaultRootBaseURL    = "https://sandbox.rootplatform.com"
	defaultSMTPPort       = 587
	defaultPaymentBaseURL = "https://payments.techstore.co.za"
	defaultBillingDay     = 1
	defaultQuoteExcess    = "R100"
	defaultQuoteAreaCode  = "0181"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Root     RootConfig
	SMTP     SMTPConfig
	Store    StoreConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig stores postgres connection parameters. URL wins when set;
// otherwise a DSN is assembled from the discrete fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns the connection string handed to the pool.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// RootConfig carries credentials for the insurance platform. The API key is
// environment-injected only and never appears in source or logs.
type RootConfig struct {
	BaseURL string
	APIKey  string
}

// SMTPConfig configures the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to attempt delivery.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// StoreConfig groups storefront-level settings.
type StoreConfig struct {
	PaymentLinkBaseURL string
	BillingDay         int
	QuoteExcess        string
	QuoteAreaCode      string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file consulted during loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables fallbacks to the process environment (tests).
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
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
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Database: DatabaseConfig{
			URL:      stringWithDefault(lookup, "DATABASE_URL", ""),
			Host:     stringWithDefault(lookup, "DB_HOST", defaultDatabaseHost),
			Port:     stringWithDefault(lookup, "DB_PORT", defaultDatabasePort),
			User:     stringWithDefault(lookup, "DB_USER", ""),
			Password: stringWithDefault(lookup, "DB_PASSWORD", ""),
			Name:     stringWithDefault(lookup, "DB_NAME", ""),
		},
		Root: RootConfig{
			BaseURL: stringWithDefault(lookup, "ROOT_BASE_URL", defaultRootBaseURL),
			APIKey:  stringWithDefault(lookup, "ROOT_API_KEY", ""),
		},
		SMTP: SMTPConfig{
			Host:     stringWithDefault(lookup, "SMTP_HOST", ""),
			Port:     intWithDefault(lookup, "SMTP_PORT", defaultSMTPPort),
			Username: stringWithDefault(lookup, "SMTP_USER", ""),
			Password: stringWithDefault(lookup, "SMTP_PASS", ""),
			From:     stringWithDefault(lookup, "SMTP_FROM", ""),
		},
		Store: StoreConfig{
			PaymentLinkBaseURL: stringWithDefault(lookup, "STORE_PAYMENT_LINK_BASE_URL", defaultPaymentBaseURL),
			BillingDay:         intWithDefault(lookup, "STORE_BILLING_DAY", defaultBillingDay),
			QuoteExcess:        stringWithDefault(lookup, "STORE_QUOTE_EXCESS", defaultQuoteExcess),
			QuoteAreaCode:      stringWithDefault(lookup, "STORE_QUOTE_AREA_CODE", defaultQuoteAreaCode),
		},
	}

	var missing []string
	if cfg.Root.APIKey == "" {
		missing = append(missing, "Root.APIKey")
	}
	if cfg.Database.URL == "" && (cfg.Database.User == "" || cfg.Database.Name == "") {
		missing = append(missing, "Database.URL")
	}
	if len(missing) > 0 {
		return Config{}, &ValidationError{fields: missing}
	}

	return cfg, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

type lookupFunc func(key string) (string, bool)

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func intWithDefault(lookup lookupFunc, key string, fallback int) int {
	if value, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
