// Package record defines the row representation shared by the normalizer,
// the report helpers, and storage. A Record is one imported observation:
// field name -> value. After normalization values are nil, string, int64
// (identity fields), or float64 (declared numeric fields); rows read back
// from Postgres additionally carry float32 (REAL) and int32 cells.
package record

import (
	"fmt"
	"strconv"
)

// Record is a sparse field-name -> value map.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String renders a cell for display and matching. nil renders as "".
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// Float extracts a numeric cell as float64. Non-numeric cells yield 0 and
// ok=false; nil is treated as absent.
func Float(v any) (f float64, ok bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		if p, err := strconv.ParseFloat(t, 64); err == nil {
			return p, true
		}
		return 0, false
	default:
		return 0, false
	}
}
