// Package config loads the runtime configuration from the environment. A
// .env file in the working directory is honored when present, matching how
// the hosted deployments inject DATABASE_URL.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the ingestion core.
type Config struct {
	// DatabaseURL selects the remote Postgres store when non-empty; when
	// empty the embedded SQLite store at SQLitePath is used.
	DatabaseURL string

	// SQLitePath is the embedded store location. Default "elta.db".
	SQLitePath string

	// DataTable is the wide reporting table name. Default "data".
	DataTable string

	// MetricsBackend selects the metrics sink ("pushgateway" or "none").
	MetricsBackend string

	// PushgatewayURL is the Prometheus Pushgateway base URL.
	PushgatewayURL string
}

// Load reads configuration from the environment, after loading an optional
// .env file. Missing keys fall back to local-development defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:     strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		DataTable:      strings.TrimSpace(os.Getenv("DATA_TABLE")),
		MetricsBackend: strings.TrimSpace(os.Getenv("METRICS_BACKEND")),
		PushgatewayURL: strings.TrimSpace(os.Getenv("PUSHGATEWAY_URL")),
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "elta.db"
	}
	if cfg.DataTable == "" {
		cfg.DataTable = "data"
	}
	// Heroku-style URLs use the legacy postgres:// scheme; pgx accepts both,
	// but normalize for consistency with older tooling.
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		cfg.DatabaseURL = "postgresql://" + strings.TrimPrefix(cfg.DatabaseURL, "postgres://")
	}
	return cfg
}
