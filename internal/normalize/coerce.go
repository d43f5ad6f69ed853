package normalize

import (
	"strconv"
	"strings"

	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/registry"
	"github.com/pr0100noob/elta-import/internal/schema"
)

// coerce applies the two declared-type policies in place:
//
//   - integer identity fields (and INTEGER-declared fields) parse to int64
//     with unparseable values becoming nil, never zero: "missing" must stay
//     distinct from "zero" for identity columns;
//   - REAL-declared business fields parse to float64 with unparseable or
//     blank values becoming 0: a blank quantity cell means "none".
//
// The two policies are intentionally different and must not be unified.
func coerce(rows []record.Record, fields []registry.Field) {
	intFields := make(map[string]bool)
	realFields := make(map[string]bool)
	for _, f := range fields {
		switch {
		case schema.IdentityIntField(f.Name) || f.Type == registry.TypeInteger:
			intFields[f.Name] = true
		case f.Type == registry.TypeReal:
			realFields[f.Name] = true
		}
	}

	for _, rec := range rows {
		for name := range intFields {
			v, ok := rec[name]
			if !ok {
				continue
			}
			rec[name] = toIntOrNil(v)
		}
		for name := range realFields {
			v, ok := rec[name]
			if !ok {
				continue
			}
			rec[name] = toFloatOrZero(v)
		}
	}
}

func toIntOrNil(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		// Excel often renders integers as "2024.0".
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f)
		}
		return nil
	default:
		return nil
	}
}

func toFloatOrZero(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
		return 0
	default:
		return 0
	}
}
