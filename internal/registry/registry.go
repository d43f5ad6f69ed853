// Package registry maintains the authoritative list of logical fields and
// their declared types. The physical columns of the reporting table are a
// derived projection of this registry, reconciled by the schema package;
// removing a field here never drops its column or data, which is accepted,
// documented behavior.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
)

// Declared field types. These are logical types; each backend maps them to
// its own column types (both engines accept the names as-is).
const (
	TypeText    = "TEXT"
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
)

var (
	ErrDuplicateField = errors.New("registry: field already exists")
	ErrNotFound       = errors.New("registry: field not found")
	ErrConflict       = errors.New("registry: target field name already exists")
	ErrProtected      = errors.New("registry: field is protected")
	ErrBadType        = errors.New("registry: unknown field type")
)

// Field is one logical field of a record.
type Field struct {
	Name      string
	Type      string
	CreatedAt time.Time
}

// protected lists identity/audit columns and the minimal business keys that
// must never leave the registry.
var protected = map[string]bool{
	"id":          true,
	"upload_id":   true,
	"uploaded_by": true,
	"uploaded_at": true,
	"Год":         true,
	"Месяц":       true,
	"Код_клиента": true,
}

// Protected reports whether name may not be removed.
func Protected(name string) bool { return protected[name] }

// Store provides registry CRUD over the fields_registry table.
type Store struct {
	conn db.Conn
}

func NewStore(conn db.Conn) *Store { return &Store{conn: conn} }

func validType(t string) bool {
	return t == TypeText || t == TypeInteger || t == TypeReal
}

// Register adds a new logical field. It fails with ErrDuplicateField when
// the name is already present.
func (s *Store) Register(ctx context.Context, name, fieldType string, now time.Time) error {
	if !validType(fieldType) {
		return fmt.Errorf("%w: %q", ErrBadType, fieldType)
	}
	res, err := s.conn.Query(ctx, "SELECT 1 FROM fields_registry WHERE field = ?", name)
	if err != nil {
		return fmt.Errorf("registry: check %q: %w", name, err)
	}
	if len(res.Rows) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	err = s.conn.Exec(ctx,
		"INSERT INTO fields_registry(field, field_type, created_at) VALUES (?, ?, ?)",
		name, fieldType, now.Format(time.RFC3339))
	if err != nil {
		if db.IsDuplicate(err) {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		return fmt.Errorf("registry: register %q: %w", name, err)
	}
	return nil
}

// Seed inserts any of the given fields that are not yet registered. It is
// idempotent and order-independent, so re-running it (or racing another
// process) converges to the same registry.
func (s *Store) Seed(ctx context.Context, fields []Field) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, f := range existing {
		have[f.Name] = true
	}
	for _, f := range fields {
		if have[f.Name] {
			continue
		}
		err := s.conn.Exec(ctx,
			"INSERT INTO fields_registry(field, field_type, created_at) VALUES (?, ?, ?)",
			f.Name, f.Type, f.CreatedAt.Format(time.RFC3339))
		if err != nil {
			if db.IsDuplicate(err) {
				continue
			}
			return fmt.Errorf("registry: seed %q: %w", f.Name, err)
		}
	}
	return nil
}

// List returns all fields in registration order. This order drives the
// projection of normalized and exported frames.
func (s *Store) List(ctx context.Context) ([]Field, error) {
	res, err := s.conn.Query(ctx,
		"SELECT field, field_type, created_at FROM fields_registry ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("registry: list: %w", err)
	}
	fields := make([]Field, 0, len(res.Rows))
	for _, row := range res.Rows {
		f := Field{Name: cellString(row, 0), Type: cellString(row, 1)}
		if ts, err := time.Parse(time.RFC3339, cellString(row, 2)); err == nil {
			f.CreatedAt = ts
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Get returns a single field by name.
func (s *Store) Get(ctx context.Context, name string) (Field, error) {
	res, err := s.conn.Query(ctx,
		"SELECT field, field_type, created_at FROM fields_registry WHERE field = ?", name)
	if err != nil {
		return Field{}, fmt.Errorf("registry: get %q: %w", name, err)
	}
	if len(res.Rows) == 0 {
		return Field{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	row := res.Rows[0]
	f := Field{Name: cellString(row, 0), Type: cellString(row, 1)}
	if ts, err := time.Parse(time.RFC3339, cellString(row, 2)); err == nil {
		f.CreatedAt = ts
	}
	return f, nil
}

// Rename updates a field's logical identity (name and type). It fails with
// ErrNotFound when old is absent and ErrConflict when new already names a
// different field. The physical column rename is the caller's concern; see
// the service layer for the soft-failure path on engines without support.
func (s *Store) Rename(ctx context.Context, oldName, newName, newType string) error {
	if !validType(newType) {
		return fmt.Errorf("%w: %q", ErrBadType, newType)
	}
	if _, err := s.Get(ctx, oldName); err != nil {
		return err
	}
	if newName != oldName {
		if _, err := s.Get(ctx, newName); err == nil {
			return fmt.Errorf("%w: %q", ErrConflict, newName)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	err := s.conn.Exec(ctx,
		"UPDATE fields_registry SET field = ?, field_type = ? WHERE field = ?",
		newName, newType, oldName)
	if err != nil {
		return fmt.Errorf("registry: rename %q: %w", oldName, err)
	}
	return nil
}

// Remove deletes the logical entry. Protected fields are rejected. The
// physical column and its data are intentionally left in place.
func (s *Store) Remove(ctx context.Context, name string) error {
	if Protected(name) {
		return fmt.Errorf("%w: %q", ErrProtected, name)
	}
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}
	if err := s.conn.Exec(ctx, "DELETE FROM fields_registry WHERE field = ?", name); err != nil {
		return fmt.Errorf("registry: remove %q: %w", name, err)
	}
	return nil
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
