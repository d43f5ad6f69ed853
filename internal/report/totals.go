// Package report computes the synthetic totals row and the membership
// filter for the reporting path. Nothing here is ever persisted; the totals
// row exists for display and export only.
package report

import (
	"errors"

	"github.com/pr0100noob/elta-import/internal/record"
)

// TotalField is the reserved marker field; TotalLabel is the sentinel the
// synthetic row carries there.
const (
	TotalField = "Итого"
	TotalLabel = "ИТОГО"
)

// ErrAlreadyTotaled reports that the input frame already carries the
// synthetic row. Passing an already-totaled frame back through is a caller
// error, not something to handle silently.
var ErrAlreadyTotaled = errors.New("report: frame already contains a totals row")

// Totals appends one synthetic row summing every listed numeric field
// across all input rows. Non-numeric fields in the synthetic row are blank.
// An empty input is returned unchanged with no synthetic row.
func Totals(rows []record.Record, numericFields []string) ([]record.Record, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	for _, row := range rows {
		if record.String(row[TotalField]) == TotalLabel {
			return nil, ErrAlreadyTotaled
		}
	}

	sums := make(map[string]float64, len(numericFields))
	for _, row := range rows {
		for _, f := range numericFields {
			if v, ok := record.Float(row[f]); ok {
				sums[f] += v
			}
		}
	}

	total := make(record.Record, len(rows[0]))
	for k := range rows[0] {
		total[k] = ""
	}
	for _, f := range numericFields {
		total[f] = sums[f]
	}
	total[TotalField] = TotalLabel

	out := make([]record.Record, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, total), nil
}
