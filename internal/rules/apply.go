package rules

import (
	"strings"

	"github.com/pr0100noob/elta-import/internal/record"
)

// Apply rewrites matching cells in place and returns the row slice. Rules
// run in the order given; each rule tests the current state of the cell, so
// a later rule can rewrite an earlier rule's output within the same pass.
// Matching is case-insensitive; nil cells never match. The number of
// rewritten cells is returned for instrumentation.
func Apply(rows []record.Record, rls []Rule) int {
	rewritten := 0
	for _, rule := range rls {
		src := strings.ToLower(rule.SourceText)
		eq := strings.ToLower(strings.TrimSpace(rule.SourceText))
		for _, row := range rows {
			v, ok := row[rule.Field]
			if !ok || v == nil {
				continue
			}
			cell := record.String(v)
			var match bool
			switch rule.MatchType {
			case MatchEquals:
				match = strings.ToLower(strings.TrimSpace(cell)) == eq
			default: // contains
				match = strings.Contains(strings.ToLower(cell), src)
			}
			if match {
				row[rule.Field] = rule.TargetText
				rewritten++
			}
		}
	}
	return rewritten
}
