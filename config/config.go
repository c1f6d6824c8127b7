// Package config loads the settings of the pfa tools.
//
// Settings come from, in increasing precedence: defaults, a YAML file, a
// .env file and FOLIO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/etnz/folio"
)

// Config holds every setting.
type Config struct {
	ReportingCurrency string `yaml:"reporting_currency"`
	// InformativeRate is the FX rate threshold above which broker rates
	// are used for conversion.
	InformativeRate float64 `yaml:"informative_rate"`

	Provider    string `yaml:"provider"` // yahoo or eodhd
	EODHDAPIKey string `yaml:"eodhd_api_key"`

	FetchConcurrency  int           `yaml:"fetch_concurrency"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	CacheDir          string        `yaml:"cache_dir"`

	ParamsDB string `yaml:"params_db"`
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	// Exchanges extends the exchange code to symbol suffix table.
	Exchanges map[string]string `yaml:"exchanges"`
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		ReportingCurrency: "EUR",
		InformativeRate:   1,
		Provider:          "yahoo",
		FetchConcurrency:  4,
		FetchTimeout:      15 * time.Second,
		RequestsPerSecond: 5,
		CacheDir:          os.TempDir(),
		ParamsDB:          "folio.db",
		Listen:            "127.0.0.1:5001",
		LogLevel:          "info",
	}
}

// DefaultPath is the configuration file read when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "folio.yaml"
	}
	return filepath.Join(dir, "folio", "config.yaml")
}

// Load reads the settings. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("no configuration file")
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file")
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides settings with FOLIO_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	float := func(name string, dst *float64) {
		if v, ok := lookup(name); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = f
		}
	}

	str("FOLIO_REPORTING_CURRENCY", &c.ReportingCurrency)
	float("FOLIO_INFORMATIVE_RATE", &c.InformativeRate)
	str("FOLIO_PROVIDER", &c.Provider)
	str("FOLIO_EODHD_API_KEY", &c.EODHDAPIKey)
	if c.EODHDAPIKey == "" {
		str("EODHD_API_KEY", &c.EODHDAPIKey)
	}
	if v, ok := lookup("FOLIO_FETCH_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOLIO_FETCH_CONCURRENCY: %w", err))
		} else {
			c.FetchConcurrency = n
		}
	}
	if v, ok := lookup("FOLIO_FETCH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FOLIO_FETCH_TIMEOUT: %w", err))
		} else {
			c.FetchTimeout = d
		}
	}
	float("FOLIO_REQUESTS_PER_SECOND", &c.RequestsPerSecond)
	str("FOLIO_CACHE_DIR", &c.CacheDir)
	str("FOLIO_PARAMS_DB", &c.ParamsDB)
	str("FOLIO_LISTEN", &c.Listen)
	str("FOLIO_LOG_LEVEL", &c.LogLevel)
	return errors.Join(errs...)
}

// Validate checks the settings.
func (c *Config) Validate() error {
	c.ReportingCurrency = strings.ToUpper(c.ReportingCurrency)
	if len(c.ReportingCurrency) != 3 {
		return fmt.Errorf("reporting currency %q is not an ISO 4217 code", c.ReportingCurrency)
	}
	switch c.Provider {
	case "yahoo", "eodhd":
	default:
		return fmt.Errorf("unknown provider %q, use yahoo or eodhd", c.Provider)
	}
	if c.InformativeRate < 0 {
		return fmt.Errorf("informative rate must be positive, got %v", c.InformativeRate)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.FetchConcurrency)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// FXPolicy returns the conversion policy.
func (c *Config) FXPolicy() folio.FXPolicy {
	return folio.FXPolicy{InformativeThreshold: decimal.NewFromFloat(c.InformativeRate)}
}

// Symbols returns the symbol table with the configured exchanges.
func (c *Config) Symbols() *folio.SymbolTable { return folio.NewSymbolTable(c.Exchanges) }

// ClientOptions returns the HTTP client options for provider name.
func (c *Config) ClientOptions(name string) folio.ClientOptions {
	return folio.ClientOptions{Name: name, RequestsPerSecond: c.RequestsPerSecond, CacheDir: c.CacheDir}
}

// Level returns the log level.
func (c *Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
