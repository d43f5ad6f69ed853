package db

import (
	"context"
	"errors"
	"testing"
)

func newTestConn(tb testing.TB) Conn {
	tb.Helper()
	conn, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}

func mustExec(tb testing.TB, conn Conn, stmt string, args ...any) {
	tb.Helper()
	if err := conn.Exec(context.Background(), stmt, args...); err != nil {
		tb.Fatalf("exec %q: %v", stmt, err)
	}
}

func TestSQLiteCaps(t *testing.T) {
	caps := newTestConn(t).Caps()
	if caps.SupportsRenameColumn {
		t.Fatal("sqlite reports rename support")
	}
	if !caps.ReturnsLastInsertID {
		t.Fatal("sqlite should expose last insert id")
	}
	if caps.AutoIncrementPK == "" {
		t.Fatal("empty auto-key fragment")
	}
}

func TestSQLiteAddColumnIdempotent(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	mustExec(t, conn, `CREATE TABLE data(id INTEGER PRIMARY KEY AUTOINCREMENT)`)

	for i := 0; i < 2; i++ {
		if err := conn.AddColumn(ctx, "data", "Регион", "TEXT"); err != nil {
			t.Fatalf("AddColumn pass %d: %v", i, err)
		}
	}
	if err := conn.AddColumn(ctx, "data", "Закупки_колво", "REAL"); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}

	cols, err := conn.ListColumns(ctx, "data")
	if err != nil {
		t.Fatalf("ListColumns: %v", err)
	}
	want := []string{"id", "Регион", "Закупки_колво"}
	if len(cols) != len(want) {
		t.Fatalf("columns = %v; want %v", cols, want)
	}
	for i, w := range want {
		if cols[i] != w {
			t.Fatalf("columns = %v; want %v", cols, want)
		}
	}
}

func TestSQLiteInsertReturnsGeneratedID(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	mustExec(t, conn, `CREATE TABLE uploads(id INTEGER PRIMARY KEY AUTOINCREMENT, filename TEXT)`)

	for want := int64(1); want <= 3; want++ {
		id, err := conn.Insert(ctx, "uploads",
			"INSERT INTO uploads(filename) VALUES (?)", "отчет.xlsx")
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if id != want {
			t.Fatalf("id = %d; want %d", id, want)
		}
	}
}

func TestSQLiteRenameColumnUnsupported(t *testing.T) {
	conn := newTestConn(t)
	err := conn.RenameColumn(context.Background(), "data", "a", "b")
	if !errors.Is(err, ErrRenameUnsupported) {
		t.Fatalf("got %v; want ErrRenameUnsupported", err)
	}
}

/*
TestSQLiteRoundTrip persists a batch through BulkInsert and reads it back
with Query: every non-null value must round-trip exactly with its storage
type (TEXT as string, INTEGER as int64, REAL as float64), and NULL cells
come back nil.
*/
func TestSQLiteRoundTrip(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	mustExec(t, conn, `CREATE TABLE data(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		"Год" INTEGER,
		"Регион" TEXT,
		"Закупки_колво" REAL
	)`)

	rows := [][]any{
		{int64(2024), "ЦФО", 2.5},
		{int64(2024), "СЗФО", float64(0)},
		{nil, nil, 1.5},
	}
	if err := conn.BulkInsert(ctx, "data", []string{"Год", "Регион", "Закупки_колво"}, rows); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	res, err := conn.Query(ctx, `SELECT "Год", "Регион", "Закупки_колво" FROM data ORDER BY id`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows; want 3", len(res.Rows))
	}
	if got := res.Rows[0]; got[0] != int64(2024) || got[1] != "ЦФО" || got[2] != 2.5 {
		t.Fatalf("row 0 = %#v", got)
	}
	if got := res.Rows[1]; got[2] != float64(0) {
		t.Fatalf("zero REAL cell = %#v; want 0", got[2])
	}
	if got := res.Rows[2]; got[0] != nil || got[1] != nil {
		t.Fatalf("NULL cells = %#v; want nil", got)
	}
}

func TestSQLiteBulkInsertRejectsRaggedRows(t *testing.T) {
	conn := newTestConn(t)
	ctx := context.Background()
	mustExec(t, conn, `CREATE TABLE data(id INTEGER PRIMARY KEY AUTOINCREMENT, a TEXT, b TEXT)`)

	err := conn.BulkInsert(ctx, "data", []string{"a", "b"}, [][]any{{"x"}})
	if err == nil {
		t.Fatal("ragged row accepted")
	}
	// the failed batch must not have committed anything
	res, qerr := conn.Query(ctx, "SELECT a FROM data")
	if qerr != nil {
		t.Fatalf("Query: %v", qerr)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("partial batch committed: %#v", res.Rows)
	}
}
