package schema

import (
	"context"
	"testing"
	"time"

	"github.com/pr0100noob/elta-import/internal/db/dbtest"
	"github.com/pr0100noob/elta-import/internal/metrics"
	"github.com/pr0100noob/elta-import/internal/registry"
)

func TestSyncAddsMissingColumns(t *testing.T) {
	fake := &dbtest.Fake{Cols: map[string][]string{
		"data": {"id", "upload_id", "Год"},
	}}
	fields := []registry.Field{
		{Name: "Год", Type: registry.TypeInteger},
		{Name: "Регион", Type: registry.TypeText},
		{Name: "Продажи_сумма", Type: registry.TypeReal},
	}

	if err := Sync(context.Background(), fake, "data", fields); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := []string{"data.Регион TEXT", "data.Продажи_сумма REAL"}
	if len(fake.Added) != len(want) {
		t.Fatalf("added %v; want %v", fake.Added, want)
	}
	for i, w := range want {
		if fake.Added[i] != w {
			t.Fatalf("added[%d] = %q; want %q", i, fake.Added[i], w)
		}
	}
}

func TestSyncIdempotent(t *testing.T) {
	fake := &dbtest.Fake{Cols: map[string][]string{"data": {"id"}}}
	fields := []registry.Field{{Name: "Регион", Type: registry.TypeText}}

	for i := 0; i < 3; i++ {
		if err := Sync(context.Background(), fake, "data", fields); err != nil {
			t.Fatalf("Sync pass %d: %v", i, err)
		}
	}
	if len(fake.Added) != 1 {
		t.Fatalf("repeated sync re-added columns: %v", fake.Added)
	}
}

/*
TestEnsureColumnsDefaultTypes verifies the ad-hoc typing convention: unseen
names matching the numeric list become REAL columns, everything else TEXT.
*/
func TestEnsureColumnsDefaultTypes(t *testing.T) {
	fake := &dbtest.Fake{Cols: map[string][]string{"data": {"id"}}}

	err := EnsureColumns(context.Background(), fake, "data",
		[]string{"Закупки_колво", "Канал_продаж"})
	if err != nil {
		t.Fatalf("EnsureColumns: %v", err)
	}
	want := []string{"data.Закупки_колво REAL", "data.Канал_продаж TEXT"}
	for i, w := range want {
		if fake.Added[i] != w {
			t.Fatalf("added[%d] = %q; want %q", i, fake.Added[i], w)
		}
	}
}

// captureBackend records counter increments for assertions.
type captureBackend struct {
	counters []string
}

func (c *captureBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	c.counters = append(c.counters, name+"/"+labels["op"]+"/"+labels["status"])
}
func (c *captureBackend) ObserveDuration(name string, value float64, labels metrics.Labels) {}
func (c *captureBackend) Flush() error                                                      { return nil }

func TestSyncRecordsMetrics(t *testing.T) {
	capture := &captureBackend{}
	metrics.SetBackend(capture)
	t.Cleanup(func() { metrics.SetBackend(&captureBackend{}) })

	fake := &dbtest.Fake{Cols: map[string][]string{"data": {"id"}}}
	if err := Sync(context.Background(), fake, "data", nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := "elta_op_total/sync/success"
	for _, c := range capture.counters {
		if c == want {
			return
		}
	}
	t.Fatalf("no %q in %v", want, capture.counters)
}

func TestSeedFields(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	fields := SeedFields(now)
	if len(fields) != 31 {
		t.Fatalf("seed has %d fields; want 31", len(fields))
	}
	if fields[0].Name != "Год" || fields[len(fields)-1].Name != "Итого" {
		t.Fatalf("seed order wrong: first %q, last %q", fields[0].Name, fields[len(fields)-1].Name)
	}
	byName := make(map[string]string)
	for _, f := range fields {
		byName[f.Name] = f.Type
	}
	if byName["Продажи_сумма"] != registry.TypeReal {
		t.Fatalf("Продажи_сумма type %q; want REAL", byName["Продажи_сумма"])
	}
	if byName["Регион"] != registry.TypeText {
		t.Fatalf("Регион type %q; want TEXT", byName["Регион"])
	}
	if byName["Год"] != registry.TypeInteger {
		t.Fatalf("Год type %q; want INTEGER", byName["Год"])
	}
}

func TestNumericFieldNames(t *testing.T) {
	fields := []registry.Field{
		{Name: "Регион", Type: registry.TypeText},
		{Name: "Продажи_колво", Type: registry.TypeReal},
		{Name: "Custom_metric", Type: registry.TypeReal},
	}
	got := NumericFieldNames(fields)
	want := []string{"Продажи_колво", "Custom_metric"}
	if len(got) != len(want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v; want %v", got, want)
		}
	}
}
