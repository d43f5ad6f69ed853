// Package rules stores administrator-authored text-rewrite rules and applies
// them to raw imported values during normalization.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
)

// Match types.
const (
	MatchContains = "contains"
	MatchEquals   = "equals"
)

var (
	ErrNotFound     = errors.New("rules: rule not found")
	ErrBadMatchType = errors.New("rules: unknown match type")
)

// Rule rewrites a field's cell to TargetText when the cell matches
// SourceText under MatchType.
type Rule struct {
	ID         int64
	Field      string
	SourceText string
	TargetText string
	MatchType  string
	CreatedAt  time.Time
}

// Store provides rule CRUD over the mapping_rules table.
type Store struct {
	conn db.Conn
}

func NewStore(conn db.Conn) *Store { return &Store{conn: conn} }

// Add inserts a rule and returns its generated id.
func (s *Store) Add(ctx context.Context, field, sourceText, targetText, matchType string, now time.Time) (int64, error) {
	if matchType != MatchContains && matchType != MatchEquals {
		return 0, fmt.Errorf("%w: %q", ErrBadMatchType, matchType)
	}
	id, err := s.conn.Insert(ctx, "mapping_rules",
		"INSERT INTO mapping_rules(field, source_text, target_text, match_type, created_at) VALUES (?, ?, ?, ?, ?)",
		field, sourceText, targetText, matchType, now.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("rules: add: %w", err)
	}
	return id, nil
}

// List returns all rules newest-first. This listing order is also the
// application order fed to Apply, so on overlapping matches the most
// recently created rule's output can still be rewritten by rules applied
// after it in the pass.
func (s *Store) List(ctx context.Context) ([]Rule, error) {
	res, err := s.conn.Query(ctx,
		"SELECT id, field, source_text, target_text, match_type, created_at FROM mapping_rules ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("rules: list: %w", err)
	}
	out := make([]Rule, 0, len(res.Rows))
	for _, row := range res.Rows {
		r := Rule{
			Field:      cellString(row, 1),
			SourceText: cellString(row, 2),
			TargetText: cellString(row, 3),
			MatchType:  cellString(row, 4),
		}
		if id, ok := cellInt(row, 0); ok {
			r.ID = id
		}
		if ts, err := time.Parse(time.RFC3339, cellString(row, 5)); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	return out, nil
}

// Delete removes a rule by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.Query(ctx, "SELECT 1 FROM mapping_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("rules: delete %d: %w", id, err)
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err := s.conn.Exec(ctx, "DELETE FROM mapping_rules WHERE id = ?", id); err != nil {
		return fmt.Errorf("rules: delete %d: %w", id, err)
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
