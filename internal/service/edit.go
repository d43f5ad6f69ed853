package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/registry"
)

// ErrReservedColumn reports an attempt to edit an identity or audit column.
var ErrReservedColumn = errors.New("service: column is not editable")

// reserved are the columns UpdateRecord refuses to touch. Business keys
// like Год stay editable; only row identity and audit provenance are fixed.
var reserved = map[string]bool{
	"id":          true,
	"upload_id":   true,
	"uploaded_by": true,
	"uploaded_at": true,
}

// GetRecord fetches one data row by id for the editor. Admin only.
func (s *Service) GetRecord(ctx context.Context, p Principal, id int64) (record.Record, error) {
	if p.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: record edit", ErrPermissionDenied)
	}
	q := fmt.Sprintf("SELECT * FROM %q WHERE id = ?", s.table)
	res, err := s.conn.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("service: get record %d: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return nil, fmt.Errorf("%w: record %d", ErrNotFound, id)
	}
	rec := make(record.Record, len(res.Columns))
	for i, c := range res.Columns {
		if i < len(res.Rows[0]) {
			rec[c] = res.Rows[0][i]
		}
	}
	return rec, nil
}

// UpdateRecord applies field edits to one data row. Admin only. Reserved
// columns are rejected, and every edited field must be registered. Updates
// run per field in name order.
func (s *Service) UpdateRecord(ctx context.Context, p Principal, id int64, updates map[string]any) error {
	if p.Role != RoleAdmin {
		return fmt.Errorf("%w: record edit", ErrPermissionDenied)
	}
	if len(updates) == 0 {
		return nil
	}

	names := make([]string, 0, len(updates))
	for k := range updates {
		if reserved[k] {
			return fmt.Errorf("%w: %q", ErrReservedColumn, k)
		}
		names = append(names, k)
	}
	sort.Strings(names)

	fields, err := s.Registry.List(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	for _, k := range names {
		if !known[k] {
			return fmt.Errorf("%w: %q", registry.ErrNotFound, k)
		}
	}

	check := fmt.Sprintf("SELECT 1 FROM %q WHERE id = ?", s.table)
	res, err := s.conn.Query(ctx, check, id)
	if err != nil {
		return fmt.Errorf("service: update record %d: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("%w: record %d", ErrNotFound, id)
	}

	for _, k := range names {
		q := fmt.Sprintf("UPDATE %q SET %q = ? WHERE id = ?", s.table, k)
		if err := s.conn.Exec(ctx, q, updates[k], id); err != nil {
			return fmt.Errorf("service: update record %d field %q: %w", id, k, err)
		}
	}
	return nil
}
