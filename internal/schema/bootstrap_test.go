package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/pr0100noob/elta-import/internal/db"
	"github.com/pr0100noob/elta-import/internal/db/dbtest"
)

func TestBootstrapCreatesTables(t *testing.T) {
	fake := &dbtest.Fake{Capabilities: db.Capabilities{
		AutoIncrementPK: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}}

	if err := Bootstrap(context.Background(), fake, "data"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(fake.Execs) != 4 {
		t.Fatalf("got %d statements; want 4", len(fake.Execs))
	}
	for _, want := range []string{"fields_registry", "mapping_rules", "uploads", `"data"`} {
		found := false
		for _, c := range fake.Execs {
			if strings.Contains(c.Query, want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("no CREATE TABLE for %s", want)
		}
	}
	for _, c := range fake.Execs {
		if !strings.Contains(c.Query, "INTEGER PRIMARY KEY AUTOINCREMENT") {
			t.Fatalf("statement missing the engine key fragment: %q", c.Query)
		}
	}
}
