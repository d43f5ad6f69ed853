// Package service is the function-level surface the external presentation
// and auth collaborators call into: registry and rule CRUD, spreadsheet
// ingestion, scoped querying, upload lifecycle, record edits, and export.
// Every operation takes an explicit principal where scoping matters; there
// is no ambient session state.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/registry"
	"github.com/pr0100noob/elta-import/internal/rules"
	"github.com/pr0100noob/elta-import/internal/schema"
)

// Role of a principal, supplied by the external authentication collaborator.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal identifies the caller of a scoped operation.
type Principal struct {
	Email string
	Role  Role
}

var (
	// ErrPermissionDenied reports a user-role principal acting outside its
	// own uploads, or a non-admin attempting an editor operation.
	ErrPermissionDenied = errors.New("service: permission denied")

	// ErrNotFound reports a missing upload or record.
	ErrNotFound = errors.New("service: not found")
)

// Service wires the registry, rules, synchronizer, and storage together.
type Service struct {
	conn  db.Conn
	table string

	Registry *registry.Store
	Rules    *rules.Store
}

// New builds a Service over an open connection. dataTable names the wide
// reporting table.
func New(conn db.Conn, dataTable string) *Service {
	return &Service{
		conn:     conn,
		table:    dataTable,
		Registry: registry.NewStore(conn),
		Rules:    rules.NewStore(conn),
	}
}

// Init bootstraps tables, seeds the default registry, and synchronizes the
// physical columns. Safe to run on every process start; all steps are
// idempotent.
func (s *Service) Init(ctx context.Context, now time.Time) error {
	start := time.Now()
	err := s.init(ctx, now)
	metrics.RecordOp("init", err, time.Since(start))
	return err
}

func (s *Service) init(ctx context.Context, now time.Time) error {
	if err := schema.Bootstrap(ctx, s.conn, s.table); err != nil {
		return err
	}
	if err := s.Registry.Seed(ctx, schema.SeedFields(now)); err != nil {
		return err
	}
	fields, err := s.Registry.List(ctx)
	if err != nil {
		return err
	}
	return schema.Sync(ctx, s.conn, s.table, fields)
}

// RegisterField adds a logical field and immediately gives it a physical
// column, keeping the convergence invariant after every mutation.
func (s *Service) RegisterField(ctx context.Context, name, fieldType string, now time.Time) error {
	if err := s.Registry.Register(ctx, name, fieldType, now); err != nil {
		return err
	}
	return s.conn.AddColumn(ctx, s.table, name, fieldType)
}

// RenameField updates the field's logical identity and then renames the
// physical column. On an engine without rename support the registry is
// still updated and db.ErrRenameUnsupported is returned so callers can
// surface the partial success as a warning, clearly distinct from full
// success.
func (s *Service) RenameField(ctx context.Context, oldName, newName, newType string) error {
	if err := s.Registry.Rename(ctx, oldName, newName, newType); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if !s.conn.Caps().SupportsRenameColumn {
		return db.ErrRenameUnsupported
	}
	if err := s.conn.RenameColumn(ctx, s.table, oldName, newName); err != nil {
		if errors.Is(err, db.ErrRenameUnsupported) {
			return db.ErrRenameUnsupported
		}
		return fmt.Errorf("service: rename column %q: %w", oldName, err)
	}
	return nil
}

// RemoveField deletes the logical entry only. The physical column and its
// data stay in place on both engines; this asymmetry is accepted behavior,
// not masked.
func (s *Service) RemoveField(ctx context.Context, name string) error {
	return s.Registry.Remove(ctx, name)
}
