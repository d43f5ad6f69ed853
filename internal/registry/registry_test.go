package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/db/dbtest"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// fieldsTable scripts the fake so lookups see the given registered fields.
func fieldsTable(names ...string) func(query string, args ...any) (*db.Result, error) {
	return func(query string, args ...any) (*db.Result, error) {
		if strings.Contains(query, "WHERE field = ?") {
			want := args[0].(string)
			for _, n := range names {
				if n == want {
					return &db.Result{Rows: [][]any{{n, TypeText, now.Format(time.RFC3339)}}}, nil
				}
			}
			return &db.Result{}, nil
		}
		rows := make([][]any, 0, len(names))
		for _, n := range names {
			rows = append(rows, []any{n, TypeText, now.Format(time.RFC3339)})
		}
		return &db.Result{Rows: rows}, nil
	}
}

func TestRegisterInsertsNewField(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Регион")}
	s := NewStore(fake)

	if err := s.Register(context.Background(), "Канал_продаж", TypeText, now); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(fake.Execs) != 1 || !strings.HasPrefix(fake.Execs[0].Query, "INSERT INTO fields_registry") {
		t.Fatalf("unexpected statements: %#v", fake.Execs)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Регион")}
	s := NewStore(fake)

	err := s.Register(context.Background(), "Регион", TypeText, now)
	if !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("Register duplicate: got %v; want ErrDuplicateField", err)
	}
	if len(fake.Execs) != 0 {
		t.Fatalf("duplicate register still wrote: %#v", fake.Execs)
	}
}

func TestRegisterBadType(t *testing.T) {
	s := NewStore(&dbtest.Fake{})
	if err := s.Register(context.Background(), "x", "BLOB", now); !errors.Is(err, ErrBadType) {
		t.Fatalf("got %v; want ErrBadType", err)
	}
}

/*
TestSeedSkipsExisting verifies that seeding is idempotent: fields already in
the registry are not re-inserted, and only missing ones get an INSERT.
*/
func TestSeedSkipsExisting(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Год", "Месяц")}
	s := NewStore(fake)

	seed := []Field{
		{Name: "Год", Type: TypeInteger, CreatedAt: now},
		{Name: "Месяц", Type: TypeInteger, CreatedAt: now},
		{Name: "Регион", Type: TypeText, CreatedAt: now},
	}
	if err := s.Seed(context.Background(), seed); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(fake.Execs) != 1 {
		t.Fatalf("want 1 insert for the missing field; got %d: %#v", len(fake.Execs), fake.Execs)
	}
	if got := fake.Execs[0].Args[0]; got != "Регион" {
		t.Fatalf("seeded wrong field: %v", got)
	}
}

func TestRenameConflict(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Регион", "Сеть")}
	s := NewStore(fake)

	err := s.Rename(context.Background(), "Регион", "Сеть", TypeText)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v; want ErrConflict", err)
	}
}

func TestRenameMissingSource(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Регион")}
	s := NewStore(fake)

	err := s.Rename(context.Background(), "Нет_такого", "Другое", TypeText)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
}

func TestRenameUpdatesRow(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Регион")}
	s := NewStore(fake)

	if err := s.Rename(context.Background(), "Регион", "Регион_РФ", TypeText); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if len(fake.Execs) != 1 || !strings.HasPrefix(fake.Execs[0].Query, "UPDATE fields_registry") {
		t.Fatalf("unexpected statements: %#v", fake.Execs)
	}
}

func TestRemoveProtected(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Год")}
	s := NewStore(fake)

	for _, name := range []string{"id", "upload_id", "uploaded_by", "uploaded_at", "Год", "Месяц", "Код_клиента"} {
		if err := s.Remove(context.Background(), name); !errors.Is(err, ErrProtected) {
			t.Fatalf("Remove(%q): got %v; want ErrProtected", name, err)
		}
	}
	if len(fake.Execs) != 0 {
		t.Fatalf("protected remove still wrote: %#v", fake.Execs)
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Канал_продаж")}
	s := NewStore(fake)

	if err := s.Remove(context.Background(), "Канал_продаж"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(fake.Execs) != 1 || !strings.HasPrefix(fake.Execs[0].Query, "DELETE FROM fields_registry") {
		t.Fatalf("unexpected statements: %#v", fake.Execs)
	}
}

func TestListPreservesOrder(t *testing.T) {
	fake := &dbtest.Fake{QueryFunc: fieldsTable("Год", "Месяц", "Регион")}
	s := NewStore(fake)

	fields, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Год", "Месяц", "Регион"}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields; want %d", len(fields), len(want))
	}
	for i, w := range want {
		if fields[i].Name != w {
			t.Fatalf("fields[%d] = %q; want %q", i, fields[i].Name, w)
		}
	}
}
