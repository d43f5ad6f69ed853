// Package normalize reshapes arbitrary incoming spreadsheets into the
// registry's current shape. The pipeline order is fixed: header
// reconciliation, registry completion, rule application, type coercion,
// projection. Reordering these steps changes results and must not be done.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pr0100noob/elta-import/internal/record"
	"github.com/pr0100noob/elta-import/internal/registry"
	"github.com/pr0100noob/elta-import/internal/rules"
	"github.com/pr0100noob/elta-import/internal/schema"
)

// Input is a parsed spreadsheet: a header row plus body rows of raw string
// cells. Body rows may be ragged; short rows read as empty cells.
type Input struct {
	Headers []string
	Rows    [][]string
}

// Normalize produces rows that are a total function over the registry:
// every output row contains exactly the registry's fields in registry
// order, regardless of which fields the input carried. Fields not in the
// registry are dropped.
func Normalize(in Input, fields []registry.Field, rls []rules.Rule) []record.Record {
	headers := reconcileHeaders(in.Headers)

	// Build raw records; empty cells become nil so "missing" survives the
	// later coercion steps.
	rows := make([]record.Record, 0, len(in.Rows))
	for _, raw := range in.Rows {
		rec := make(record.Record, len(headers))
		for i, h := range headers {
			var cell string
			if i < len(raw) {
				cell = strings.TrimSpace(raw[i])
			}
			if cell == "" {
				rec[h] = nil
			} else {
				rec[h] = cell
			}
		}
		rows = append(rows, rec)
	}

	// Registry completion: absent fields are created as nil.
	for _, f := range fields {
		for _, rec := range rows {
			if _, ok := rec[f.Name]; !ok {
				rec[f.Name] = nil
			}
		}
	}

	rules.Apply(rows, rls)
	coerce(rows, fields)

	// Projection: exactly the registry's fields, in registry order.
	out := make([]record.Record, len(rows))
	for i, rec := range rows {
		proj := make(record.Record, len(fields))
		for _, f := range fields {
			proj[f.Name] = rec[f.Name]
		}
		out[i] = proj
	}
	return out
}

// reconcileHeaders canonicalizes the incoming header row. Headers are NFC
// normalized (macOS Excel emits decomposed Cyrillic) and trimmed. When no
// year marker is present the sheet is assumed headerless-by-position and
// the canonical 23-column template is applied. Known human-readable
// variants are then mapped to canonical field names.
func reconcileHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(norm.NFC.String(h))
	}

	hasYear := false
	for _, h := range headers {
		switch strings.ToLower(h) {
		case "год", "year":
			hasYear = true
		}
	}
	if !hasYear {
		for i := range headers {
			if i < len(schema.ImportColumns23) {
				headers[i] = schema.ImportColumns23[i]
			}
		}
	}

	for i, h := range headers {
		if canonical, ok := schema.HeaderAliases[h]; ok {
			headers[i] = canonical
		}
	}
	return headers
}
