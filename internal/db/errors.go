package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrRenameUnsupported is returned by RenameColumn on engines without native
// column-rename support. The logical registry entry may still have been
// updated by the caller; only the physical column keeps its old name.
var ErrRenameUnsupported = errors.New("db: column rename not supported by this engine")

// Postgres SQLSTATE codes for the "already exists" error class.
const (
	pgDuplicateColumn = "42701"
	pgDuplicateTable  = "42P07"
	pgUniqueViolation = "23505"
)

// IsDuplicate reports whether err is an "already exists"/"duplicate key"
// class error on either engine. Callers swallow these only when the intent
// is idempotent seeding; everything else propagates.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateColumn, pgDuplicateTable, pgUniqueViolation:
			return true
		}
		return false
	}
	// modernc.org/sqlite surfaces these as plain message text.
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
