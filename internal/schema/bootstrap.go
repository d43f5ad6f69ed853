package schema

import (
	"context"
	"fmt"

	"github.com/pr0100noob/elta-import/internal/db"
)

// Bootstrap creates the registry, rules, uploads, and wide data tables when
// absent. DDL differences between the engines are limited to the
// auto-generated key fragment, taken from the connection's capabilities.
// Timestamps are stored as RFC 3339 text on both engines.
func Bootstrap(ctx context.Context, conn db.Conn, dataTable string) error {
	pk := conn.Caps().AutoIncrementPK

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS fields_registry(
			id %s,
			field TEXT NOT NULL UNIQUE,
			field_type TEXT NOT NULL DEFAULT 'TEXT',
			created_at TEXT NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS mapping_rules(
			id %s,
			field TEXT NOT NULL,
			source_text TEXT NOT NULL,
			target_text TEXT NOT NULL,
			match_type TEXT NOT NULL DEFAULT 'contains',
			created_at TEXT NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS uploads(
			id %s,
			filename TEXT,
			content_hash TEXT,
			uploaded_by TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q(
			id %s,
			upload_id INTEGER NOT NULL,
			uploaded_by TEXT NOT NULL,
			uploaded_at TEXT NOT NULL
		)`, dataTable, pk),
	}
	for _, stmt := range stmts {
		if err := conn.Exec(ctx, stmt); err != nil {
			if db.IsDuplicate(err) {
				continue
			}
			return fmt.Errorf("schema: bootstrap: %w", err)
		}
	}
	return nil
}
