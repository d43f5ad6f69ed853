package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("DATA_TABLE", "")

	cfg := Load()
	if cfg.SQLitePath != "elta.db" {
		t.Fatalf("SQLitePath = %q; want elta.db", cfg.SQLitePath)
	}
	if cfg.DataTable != "data" {
		t.Fatalf("DataTable = %q; want data", cfg.DataTable)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q; want empty", cfg.DatabaseURL)
	}
}

func TestLoadNormalizesPostgresScheme(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@host:5432/elta")

	cfg := Load()
	want := "postgresql://u:p@host:5432/elta"
	if cfg.DatabaseURL != want {
		t.Fatalf("DatabaseURL = %q; want %q", cfg.DatabaseURL, want)
	}
}
