package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/registry"
)

// Sync reconciles the registry against the physical reporting table, adding
// any missing columns with their declared types. It is idempotent and
// order-independent: the adapter's AddColumn treats "already exists" as
// success, so concurrent runs converge without locking. Columns are only
// ever added; nothing is dropped or retyped here.
func Sync(ctx context.Context, conn db.Conn, table string, fields []registry.Field) error {
	start := time.Now()
	err := sync(ctx, conn, table, fields)
	metrics.RecordOp("sync", err, time.Since(start))
	return err
}

func sync(ctx context.Context, conn db.Conn, table string, fields []registry.Field) error {
	existing, err := conn.ListColumns(ctx, table)
	if err != nil {
		return fmt.Errorf("schema: sync %s: %w", table, err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	for _, f := range fields {
		if have[f.Name] {
			continue
		}
		if err := conn.AddColumn(ctx, table, f.Name, f.Type); err != nil {
			return fmt.Errorf("schema: sync %s: %w", table, err)
		}
	}
	return nil
}

// EnsureColumns adds physical columns for ad-hoc field names a batch
// introduced that the registry does not know. Unseen names default to REAL
// when they match the numeric convention, TEXT otherwise.
func EnsureColumns(ctx context.Context, conn db.Conn, table string, names []string) error {
	existing, err := conn.ListColumns(ctx, table)
	if err != nil {
		return fmt.Errorf("schema: ensure columns %s: %w", table, err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	for _, name := range names {
		if have[name] {
			continue
		}
		if err := conn.AddColumn(ctx, table, name, DefaultType(name)); err != nil {
			return fmt.Errorf("schema: ensure columns %s: %w", table, err)
		}
		have[name] = true
	}
	return nil
}
