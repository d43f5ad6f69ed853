// Package dbtest provides a scripted in-memory db.Conn for unit tests. It
// records every statement it receives and serves canned query results, so
// store and service logic can be exercised without a live database.
package dbtest

import (
	"context"

	"github.com/pr0100noob/elta-import/internal/db"
)

// Call records one executed statement.
type Call struct {
	Query string
	Args  []any
}

// BulkCall records one BulkInsert invocation.
type BulkCall struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Fake implements db.Conn. Zero value is usable; set QueryFunc to script
// read results and Cols to pre-seed physical columns per table.
type Fake struct {
	Capabilities db.Capabilities

	// QueryFunc serves Query calls. When nil, an empty result is returned.
	QueryFunc func(query string, args ...any) (*db.Result, error)

	// ExecErr, when set, can fail selected Exec statements.
	ExecErr func(query string) error

	// Cols holds the physical column set per table.
	Cols map[string][]string

	NextInsertID int64
	RenameErr    error

	Execs   []Call
	Inserts []Call
	Bulks   []BulkCall
	Added   []string
	Renames []string
	Closed  bool
}

func (f *Fake) Caps() db.Capabilities { return f.Capabilities }

func (f *Fake) Exec(ctx context.Context, query string, args ...any) error {
	f.Execs = append(f.Execs, Call{Query: query, Args: args})
	if f.ExecErr != nil {
		return f.ExecErr(query)
	}
	return nil
}

func (f *Fake) Query(ctx context.Context, query string, args ...any) (*db.Result, error) {
	if f.QueryFunc != nil {
		return f.QueryFunc(query, args...)
	}
	return &db.Result{}, nil
}

func (f *Fake) Insert(ctx context.Context, table, query string, args ...any) (int64, error) {
	f.Inserts = append(f.Inserts, Call{Query: query, Args: args})
	f.NextInsertID++
	return f.NextInsertID, nil
}

func (f *Fake) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	f.Bulks = append(f.Bulks, BulkCall{Table: table, Columns: columns, Rows: rows})
	return nil
}

func (f *Fake) AddColumn(ctx context.Context, table, column, sqlType string) error {
	for _, c := range f.Cols[table] {
		if c == column {
			return nil
		}
	}
	if f.Cols == nil {
		f.Cols = map[string][]string{}
	}
	f.Cols[table] = append(f.Cols[table], column)
	f.Added = append(f.Added, table+"."+column+" "+sqlType)
	return nil
}

func (f *Fake) RenameColumn(ctx context.Context, table, oldName, newName string) error {
	if f.RenameErr != nil {
		return f.RenameErr
	}
	f.Renames = append(f.Renames, table+"."+oldName+"->"+newName)
	for i, c := range f.Cols[table] {
		if c == oldName {
			f.Cols[table][i] = newName
		}
	}
	return nil
}

func (f *Fake) ListColumns(ctx context.Context, table string) ([]string, error) {
	return append([]string(nil), f.Cols[table]...), nil
}

func (f *Fake) Close(ctx context.Context) error {
	f.Closed = true
	return nil
}
