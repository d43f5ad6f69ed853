package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteConn adapts the embedded SQLite store (database/sql + modernc) to
// Conn. It is selected when no remote connection string is configured.
// Deployed databases predate ALTER TABLE ... RENAME COLUMN, so renames are
// reported as unsupported rather than attempted.
type sqliteConn struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the embedded store at path.
func OpenSQLite(ctx context.Context, path string) (Conn, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: path must not be empty")
	}
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One pooled connection: writes serialize instead of hitting
	// SQLITE_BUSY, and an in-memory database stays a single database.
	d.SetMaxOpenConns(1)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.PingContext(pingCtx); err != nil {
		d.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	_, _ = d.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	return &sqliteConn{db: d}, nil
}

func (s *sqliteConn) Caps() Capabilities {
	return Capabilities{
		SupportsRenameColumn: false,
		ReturnsLastInsertID:  true,
		AutoIncrementPK:      "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
}

func (s *sqliteConn) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

func (s *sqliteConn) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func (s *sqliteConn) Insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	return id, nil
}

// BulkInsert writes all rows inside one transaction through a prepared
// statement; SQLite has no COPY equivalent but a transaction keeps moderate
// volumes fast.
func (s *sqliteConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoteIdents(columns), ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (s *sqliteConn) AddColumn(ctx context.Context, table, column, sqlType string) error {
	existing, err := s.ListColumns(ctx, table)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c == column {
			return nil
		}
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(table), quoteIdent(column), sqlType)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		// Another process may have added it between the list and the ALTER.
		if IsDuplicate(err) {
			return nil
		}
		return fmt.Errorf("sqlite: add column %s.%s: %w", table, column, err)
	}
	return nil
}

func (s *sqliteConn) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	return ErrRenameUnsupported
}

func (s *sqliteConn) ListColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("sqlite: table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("sqlite: table_info scan: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (s *sqliteConn) Close(ctx context.Context) error { return s.db.Close() }
