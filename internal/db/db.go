// Package db abstracts the two storage engines behind one connection
// interface. Statements are written once with '?' placeholders; each adapter
// rewrites them into its engine's convention. Engine differences that matter
// to callers (column rename support, last-insert-id retrieval, auto-key DDL)
// are exposed as explicit capabilities instead of being branched on at call
// sites.
package db

import (
	"context"
	"strings"
)

// Capabilities describes what the connected engine can do. Callers consult
// these flags rather than inspecting the connection string.
type Capabilities struct {
	// SupportsRenameColumn reports whether ALTER TABLE ... RENAME COLUMN is
	// available. When false, RenameColumn returns ErrRenameUnsupported.
	SupportsRenameColumn bool

	// ReturnsLastInsertID reports whether the statement handle exposes the
	// generated key directly. When false, Insert falls back to a
	// SELECT MAX(id) read, which callers must treat as authoritative.
	ReturnsLastInsertID bool

	// AutoIncrementPK is the DDL fragment declaring an auto-generated
	// integer surrogate key, e.g. "SERIAL PRIMARY KEY".
	AutoIncrementPK string
}

// Result is a tabular read result: ordered columns, ordered rows, nullable
// cells.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Conn is a storage handle, safe for concurrent use: the Postgres adapter
// wraps a pgx pool and the SQLite adapter database/sql's pool, so callers
// may issue independent queries from multiple goroutines.
type Conn interface {
	// Exec runs a write/DDL statement with commit semantics.
	Exec(ctx context.Context, query string, args ...any) error

	// Query runs a read statement and returns the full result.
	Query(ctx context.Context, query string, args ...any) (*Result, error)

	// Insert runs an INSERT against table and returns the generated key,
	// using the engine's native mechanism or the MAX(id) fallback.
	Insert(ctx context.Context, table, query string, args ...any) (int64, error)

	// BulkInsert writes rows into table in a single transaction. Either all
	// rows commit or none do.
	BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error

	// AddColumn adds a column if it is not already present. It succeeds
	// whether or not the column exists, so concurrent callers converge.
	AddColumn(ctx context.Context, table, column, sqlType string) error

	// RenameColumn renames a physical column, or returns
	// ErrRenameUnsupported on engines without native support.
	RenameColumn(ctx context.Context, table, oldName, newName string) error

	// ListColumns returns the table's column names in definition order.
	ListColumns(ctx context.Context, table string) ([]string, error)

	Caps() Capabilities
	Close(ctx context.Context) error
}

// quoteIdent quotes a single identifier for either engine (both accept
// double-quoted identifiers).
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteIdents(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quoteIdent(id)
	}
	return out
}
