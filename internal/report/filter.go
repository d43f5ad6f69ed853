package report

import "github.com/pr0100noob/elta-import/internal/record"

// Filter returns the rows passing every supplied constraint. A row passes a
// field's constraint when its display string is a member of the accepted
// set. Fields with an empty accepted set impose no constraint: absence of a
// filter is not exclude-all.
func Filter(rows []record.Record, filters map[string][]string) []record.Record {
	active := make(map[string]map[string]bool)
	for field, vals := range filters {
		if len(vals) == 0 {
			continue
		}
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[v] = true
		}
		active[field] = set
	}
	if len(active) == 0 {
		return rows
	}

	out := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		pass := true
		for field, set := range active {
			if !set[record.String(row[field])] {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, row)
		}
	}
	return out
}
