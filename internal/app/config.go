package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	GotenbergURL     string        `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	GotenbergTimeout time.Duration `envconfig:"GOTENBERG_TIMEOUT" default:"30s"`

	InvoiceCurrencySymbol string `envconfig:"INVOICE_CURRENCY_SYMBOL" default:"₹"`
	InvoiceLocale         string `envconfig:"INVOICE_LOCALE" default:"en-IN"`
	InvoiceRateLimit      int    `envconfig:"INVOICE_RATE_LIMIT" default:"60"`
	InvoiceDocumentLimit  int    `envconfig:"INVOICE_DOCUMENT_RATE_LIMIT" default:"10"`
	InvoiceMaxSessions    int    `envconfig:"INVOICE_MAX_SESSIONS" default:"1000"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.InvoiceRateLimit <= 0 {
		return errors.New("invoice rate limit must be positive")
	}
	if c.InvoiceDocumentLimit <= 0 {
		return errors.New("invoice document rate limit must be positive")
	}
	if c.InvoiceMaxSessions < 0 {
		return errors.New("invoice max sessions must not be negative")
	}
	if c.InvoiceLocale == "" {
		return errors.New("invoice locale must be provided")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
