package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/report"
	"github.com/pr0100noob/elta-import/internal/schema"
	"github.com/pr0100noob/elta-import/internal/xlsx"
)

// Upload summarizes one persisted batch.
type Upload struct {
	ID          int64
	Filename    string
	ContentHash string
	UploadedBy  string
	UploadedAt  time.Time
}

// Query returns the reporting table scoped to the principal, with the given
// membership filters applied in memory. A user-role principal only sees
// rows from its own uploads. Columns come back in physical table order.
func (s *Service) Query(ctx context.Context, p Principal, filters map[string][]string) ([]string, []record.Record, error) {
	start := time.Now()
	cols, rows, err := s.query(ctx, p, filters)
	metrics.RecordOp("query", err, time.Since(start))
	return cols, rows, err
}

func (s *Service) query(ctx context.Context, p Principal, filters map[string][]string) ([]string, []record.Record, error) {
	q := fmt.Sprintf("SELECT * FROM %q", s.table)
	var args []any
	if p.Role != RoleAdmin {
		q += " WHERE uploaded_by = ?"
		args = append(args, p.Email)
	}
	q += " ORDER BY id"

	res, err := s.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("service: query: %w", err)
	}
	rows := toRecords(res)
	return res.Columns, report.Filter(rows, filters), nil
}

// Export renders the principal's filtered report as an xlsx workbook.
// Exported columns are the registry's fields in registry order; identity
// and audit columns (id, upload_id, uploaded_by, uploaded_at) stay out of
// the workbook. With withTotals set, a synthetic totals row over the
// numeric fields is appended; report.ErrAlreadyTotaled surfaces unchanged
// if the data somehow already carries one.
func (s *Service) Export(ctx context.Context, p Principal, filters map[string][]string, withTotals bool) ([]byte, error) {
	cols, rows, err := s.Query(ctx, p, filters)
	if err != nil {
		return nil, err
	}
	fields, err := s.Registry.List(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	exportCols := make([]string, 0, len(fields))
	for _, f := range fields {
		if have[f.Name] {
			exportCols = append(exportCols, f.Name)
		}
	}
	if withTotals {
		rows, err = report.Totals(rows, schema.NumericFieldNames(fields))
		if err != nil {
			return nil, err
		}
	}
	return xlsx.Export(exportCols, rows)
}

// PreviewTotals appends the ИТОГО row to a normalized batch for display
// before it is persisted. The synthetic row itself is never persisted.
func (s *Service) PreviewTotals(ctx context.Context, rows []record.Record) ([]record.Record, error) {
	fields, err := s.Registry.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.Totals(rows, schema.NumericFieldNames(fields))
}

// ListUploads returns upload batches newest-first, scoped to the principal.
func (s *Service) ListUploads(ctx context.Context, p Principal) ([]Upload, error) {
	q := "SELECT id, filename, content_hash, uploaded_by, uploaded_at FROM uploads"
	var args []any
	if p.Role != RoleAdmin {
		q += " WHERE uploaded_by = ?"
		args = append(args, p.Email)
	}
	q += " ORDER BY id DESC"

	res, err := s.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("service: list uploads: %w", err)
	}
	out := make([]Upload, 0, len(res.Rows))
	for _, row := range res.Rows {
		u := Upload{
			Filename:    cellString(row, 1),
			ContentHash: cellString(row, 2),
			UploadedBy:  cellString(row, 3),
		}
		if id, ok := cellInt(row, 0); ok {
			u.ID = id
		}
		if ts, err := time.Parse(time.RFC3339, cellString(row, 4)); err == nil {
			u.UploadedAt = ts
		}
		out = append(out, u)
	}
	return out, nil
}

// DeleteUpload removes one batch and all of its data rows. Admins may
// delete any upload; a user only its own. Missing uploads report
// ErrNotFound before any ownership decision, so probing ids does not leak
// ownership.
func (s *Service) DeleteUpload(ctx context.Context, p Principal, id int64) error {
	start := time.Now()
	err := s.deleteUpload(ctx, p, id)
	metrics.RecordOp("delete_upload", err, time.Since(start))
	return err
}

func (s *Service) deleteUpload(ctx context.Context, p Principal, id int64) error {
	res, err := s.conn.Query(ctx, "SELECT uploaded_by FROM uploads WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("service: delete upload %d: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("%w: upload %d", ErrNotFound, id)
	}
	if p.Role != RoleAdmin && cellString(res.Rows[0], 0) != p.Email {
		return fmt.Errorf("%w: upload %d", ErrPermissionDenied, id)
	}

	// Data rows first, then the upload record. The pair is not atomic; a
	// failure between the two leaves an empty upload entry, which a retry
	// cleans up.
	del := fmt.Sprintf("DELETE FROM %q WHERE upload_id = ?", s.table)
	if err := s.conn.Exec(ctx, del, id); err != nil {
		return fmt.Errorf("service: delete upload %d data: %w", id, err)
	}
	if err := s.conn.Exec(ctx, "DELETE FROM uploads WHERE id = ?", id); err != nil {
		return fmt.Errorf("service: delete upload %d: %w", id, err)
	}
	return nil
}

func toRecords(res *db.Result) []record.Record {
	rows := make([]record.Record, 0, len(res.Rows))
	for _, raw := range res.Rows {
		rec := make(record.Record, len(res.Columns))
		for i, c := range res.Columns {
			if i < len(raw) {
				rec[c] = raw[i]
			}
		}
		rows = append(rows, rec)
	}
	return rows
}

func cellString(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprint(row[i])
}

func cellInt(row []any, i int) (int64, bool) {
	if i >= len(row) {
		return 0, false
	}
	switch t := row[i].(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}
