package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the subset of *pgxpool.Pool the adapter uses. The seam
// allows injecting a fake in unit tests. A pool, not a single *pgx.Conn:
// callers issue concurrent queries on one Conn (errgroup reads during
// normalization) and a bare pgx connection is single-flight.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// pgConn adapts a Postgres connection pool to Conn.
type pgConn struct {
	conn  pgxQuerier
	close func()
}

// OpenPostgres connects to the remote store identified by dsn.
func OpenPostgres(ctx context.Context, dsn string) (Conn, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &pgConn{conn: pool, close: pool.Close}, nil
}

func (p *pgConn) Caps() Capabilities {
	return Capabilities{
		SupportsRenameColumn: true,
		ReturnsLastInsertID:  false,
		AutoIncrementPK:      "SERIAL PRIMARY KEY",
	}
}

func (p *pgConn) Exec(ctx context.Context, query string, args ...any) error {
	_, err := p.conn.Exec(ctx, rewritePlaceholders(query), args...)
	return err
}

func (p *pgConn) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := p.conn.Query(ctx, rewritePlaceholders(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	res := &Result{Columns: make([]string, len(fds))}
	for i, fd := range fds {
		res.Columns[i] = fd.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]any, len(vals))
		copy(row, vals)
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

// Insert executes the statement and reads the generated key back with a
// MAX(id) query; pgx does not expose last-insert-id on the command tag.
func (p *pgConn) Insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	if _, err := p.conn.Exec(ctx, rewritePlaceholders(query), args...); err != nil {
		return 0, err
	}
	res, err := p.Query(ctx, "SELECT MAX(id) FROM "+quoteIdent(table))
	if err != nil {
		return 0, fmt.Errorf("postgres: read generated id: %w", err)
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 || res.Rows[0][0] == nil {
		return 0, fmt.Errorf("postgres: no generated id in %s", table)
	}
	return toInt64(res.Rows[0][0])
}

func (p *pgConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := p.conn.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("postgres: copy into %s: %w", table, err)
	}
	if n != int64(len(rows)) {
		return fmt.Errorf("postgres: copy into %s: inserted %d of %d rows", table, n, len(rows))
	}
	return nil
}

func (p *pgConn) AddColumn(ctx context.Context, table, column, sqlType string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		quoteIdent(table), quoteIdent(column), sqlType)
	if _, err := p.conn.Exec(ctx, stmt); err != nil {
		if IsDuplicate(err) {
			return nil
		}
		return fmt.Errorf("postgres: add column %s.%s: %w", table, column, err)
	}
	return nil
}

func (p *pgConn) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		quoteIdent(table), quoteIdent(oldName), quoteIdent(newName))
	if _, err := p.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: rename column %s.%s: %w", table, oldName, err)
	}
	return nil
}

func (p *pgConn) ListColumns(ctx context.Context, table string) ([]string, error) {
	res, err := p.Query(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
		table)
	if err != nil {
		return nil, fmt.Errorf("postgres: list columns of %s: %w", table, err)
	}
	cols := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) > 0 && row[0] != nil {
			cols = append(cols, fmt.Sprint(row[0]))
		}
	}
	return cols, nil
}

func (p *pgConn) Close(ctx context.Context) error {
	if p.close != nil {
		p.close()
	}
	return nil
}

// toInt64 accepts the integer shapes pgx may return for MAX(id).
func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("postgres: unexpected id type %T (%v)", v, v)
	}
}
