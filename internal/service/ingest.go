package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/normalize"
	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/registry"
	"github.com/pr0100noob/elta-import/internal/rules"
	"github.com/pr0100noob/elta-import/internal/schema"
	"github.com/pr0100noob/elta-import/internal/xlsx"
)

// UploadMeta describes one parsed workbook. ContentHash is a hex xxh3
// fingerprint of the raw file bytes; the presentation layer can use it to
// flag re-uploads of an identical file.
type UploadMeta struct {
	Filename    string
	ContentHash string
}

// auditColumns are appended to every persisted row alongside the registry
// fields. They are never editable.
var auditColumns = []string{"upload_id", "uploaded_by", "uploaded_at"}

// ParseAndNormalize reads an uploaded workbook and runs the full
// normalization pipeline against the current registry and rule set. No
// storage mutation happens here; the caller previews the result and then
// commits it with Persist.
func (s *Service) ParseAndNormalize(ctx context.Context, filename string, data []byte) ([]record.Record, UploadMeta, error) {
	start := time.Now()
	rows, meta, err := s.parseAndNormalize(ctx, filename, data)
	metrics.RecordOp("parse", err, time.Since(start))
	return rows, meta, err
}

func (s *Service) parseAndNormalize(ctx context.Context, filename string, data []byte) ([]record.Record, UploadMeta, error) {
	in, err := xlsx.Parse(data)
	if err != nil {
		return nil, UploadMeta{}, err
	}

	// The registry and the rule set are independent reads.
	var (
		fields []registry.Field
		rls    []rules.Rule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fields, err = s.Registry.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rls, err = s.Rules.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, UploadMeta{}, err
	}

	rows := normalize.Normalize(in, fields, rls)
	metrics.RecordRows("normalized", int64(len(rows)))

	meta := UploadMeta{
		Filename:    filename,
		ContentHash: fmt.Sprintf("%016x", xxh3.Hash(data)),
	}
	return rows, meta, nil
}

// Persist commits a normalized batch: it records the upload, synchronizes
// the physical columns, and bulk-inserts the rows stamped with the audit
// columns. Returns the new upload id.
func (s *Service) Persist(ctx context.Context, p Principal, meta UploadMeta, rows []record.Record) (int64, error) {
	start := time.Now()
	id, err := s.persist(ctx, p, meta, rows)
	metrics.RecordOp("persist", err, time.Since(start))
	return id, err
}

func (s *Service) persist(ctx context.Context, p Principal, meta UploadMeta, rows []record.Record) (int64, error) {
	fields, err := s.Registry.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := schema.Sync(ctx, s.conn, s.table, fields); err != nil {
		return 0, err
	}
	if extra := extraFields(rows, fields); len(extra) > 0 {
		if err := schema.EnsureColumns(ctx, s.conn, s.table, extra); err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	uploadID, err := s.conn.Insert(ctx, "uploads",
		"INSERT INTO uploads(filename, content_hash, uploaded_by, uploaded_at) VALUES (?, ?, ?, ?)",
		meta.Filename, meta.ContentHash, p.Email, now)
	if err != nil {
		return 0, fmt.Errorf("service: record upload: %w", err)
	}

	columns := make([]string, 0, len(fields)+len(auditColumns))
	for _, f := range fields {
		columns = append(columns, f.Name)
	}
	columns = append(columns, extraFields(rows, fields)...)
	columns = append(columns, auditColumns...)

	bulk := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, 0, len(columns))
		for _, c := range columns[:len(columns)-len(auditColumns)] {
			vals = append(vals, row[c])
		}
		vals = append(vals, uploadID, p.Email, now)
		bulk[i] = vals
	}
	if err := s.conn.BulkInsert(ctx, s.table, columns, bulk); err != nil {
		return 0, fmt.Errorf("service: persist batch: %w", err)
	}

	metrics.RecordRows("persisted", int64(len(rows)))
	metrics.RecordUpload()
	return uploadID, nil
}

// extraFields returns, sorted, the field names present in rows but absent
// from the registry. Normalized batches never carry any; this covers rows
// assembled by other callers.
func extraFields(rows []record.Record, fields []registry.Field) []string {
	known := make(map[string]bool, len(fields)+len(auditColumns))
	for _, f := range fields {
		known[f.Name] = true
	}
	for _, c := range auditColumns {
		known[c] = true
	}
	seen := make(map[string]bool)
	var extra []string
	for _, row := range rows {
		for k := range row {
			if !known[k] && !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return extra
}
