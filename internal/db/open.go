package db

import "context"

// Open selects the engine from the configuration switch: a non-empty remote
// connection string means Postgres, otherwise the embedded SQLite store at
// sqlitePath is used.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Conn, error) {
	if databaseURL != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	return OpenSQLite(ctx, sqlitePath)
}
