// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

type Config struct {
	Port           int           `env:"PORT" envDefault:"8080"`
	Store          string        `env:"STORE" envDefault:"file"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	Timezone       string        `env:"TIMEZONE" envDefault:"Local"`
	StorageTimeout time.Duration `env:"STORAGE_TIMEOUT" envDefault:"5s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
	StaticDir      string        `env:"STATIC_DIR"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT"`
	// AllowedOrigins lists the cross-site frontends that may call the API
	// and open streams. Same-origin requests are always allowed.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Location is resolved from Timezone
	Location *time.Location `env:"-"`
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags builds the configuration from the environment and args.
// Command line flags override environment variables.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("daily-pick", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.Store, "s", cfg.Store, "Store backend (file, sqlite, postgres or bolt)")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Data directory for file, sqlite and bolt stores")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL or path")
	fs.StringVar(&cfg.Timezone, "tz", cfg.Timezone, "IANA time zone that defines the voting day")
	fs.DurationVar(&cfg.StorageTimeout, "storage-timeout", cfg.StorageTimeout, "Timeout for a single storage operation")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Timeout for a single websocket write")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory of frontend assets to serve")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json, default depends on terminal)")
	origins := fs.String("origins", strings.Join(cfg.AllowedOrigins, ","), "Comma-separated cross-site origins allowed to use the API")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	allowed, err := parseOrigins(*origins)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowedOrigins = allowed

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreFile:
	case StoreSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = filepath.Join(cfg.DataDir, "daily-pick.db")
		}
	case StoreBolt:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = filepath.Join(cfg.DataDir, "daily-pick.bolt")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.DataDir == "" {
		return Config{}, errors.New("data directory required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.StorageTimeout <= 0 {
		return Config{}, errors.New("storage timeout must be positive")
	}
	if cfg.WriteTimeout <= 0 {
		return Config{}, errors.New("write timeout must be positive")
	}

	return cfg, nil
}

// parseOrigins splits a comma-separated origin list and normalizes each
// entry to scheme://host[:port]
func parseOrigins(list string) ([]string, error) {
	var origins []string
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if raw == "*" {
			return nil, errors.New("wildcard origin is not allowed; list each frontend origin")
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid origin %q", raw)
		}
		if u.Path != "" && u.Path != "/" {
			return nil, fmt.Errorf("invalid origin %q: must not have a path", raw)
		}
		origins = append(origins, strings.ToLower(u.Scheme+"://"+u.Host))
	}
	return origins, nil
}
