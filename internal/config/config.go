// Package config loads Imperivm settings from IMPERIVM_* environment
// variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "IMPERIVM_"

// Config is the daemon and CLI configuration.
type Config struct {
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:":7002"`
	Driver     string `env:"STORE_DRIVER" envDefault:"file"`
	SQLitePath string `env:"SQLITE_PATH"`
	Namespace  string `env:"NAMESPACE" envDefault:"imperivm"`

	WebhookURL     string        `env:"WEBHOOK_URL"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`

	OracleBaseURL string        `env:"ORACLE_BASE_URL"`
	OracleAPIKey  string        `env:"ORACLE_API_KEY"`
	OracleModel   string        `env:"ORACLE_MODEL"`
	OracleTimeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"0s"`

	CredentialsFile string        `env:"CREDENTIALS_FILE"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	LoginDelay      time.Duration `env:"LOGIN_DELAY" envDefault:"1200ms"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerated values.
func (c Config) Validate() error {
	switch c.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid %sSTORE_DRIVER %q (want file or sqlite)", Prefix, c.Driver)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid %sLOG_FORMAT %q (want text or json)", Prefix, c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Namespace == "" {
		return fmt.Errorf("%sNAMESPACE must not be empty", Prefix)
	}
	if c.LoginDelay < 0 {
		return fmt.Errorf("%sLOGIN_DELAY must not be negative", Prefix)
	}
	return nil
}

// StorePath is the data directory for the file driver and the database
// file for sqlite.
func (c Config) StorePath() string {
	if c.Driver != "sqlite" {
		return c.DataDir
	}
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "imperivm.db")
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.LogFormat) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid %sLOG_LEVEL %q: %w", Prefix, s, err)
	}
	return level, nil
}
