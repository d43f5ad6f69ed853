// Package xlsx parses partner spreadsheet exports and writes report
// workbooks. Malformed uploads fail fast here, before any registry or
// storage mutation occurs.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pr0100noob/elta-import/internal/normalize"
	"github.com/pr0100noob/elta-import/internal/record"
)

// ErrMalformedInput reports an unreadable or empty spreadsheet.
var ErrMalformedInput = errors.New("xlsx: malformed spreadsheet input")

const exportSheet = "Отчет"

// Parse reads the first sheet of an xlsx workbook into a header row plus
// body rows of raw string cells.
func Parse(data []byte) (normalize.Input, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return normalize.Input{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return normalize.Input{}, fmt.Errorf("%w: workbook has no sheets", ErrMalformedInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return normalize.Input{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return normalize.Input{}, fmt.Errorf("%w: no columns", ErrMalformedInput)
	}
	return normalize.Input{Headers: rows[0], Rows: rows[1:]}, nil
}

// Export writes rows into a single-sheet workbook with the given column
// order and returns the file bytes.
func Export(columns []string, rows []record.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("xlsx: drop default sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}

	for i, row := range rows {
		cells := make([]any, len(columns))
		for j, c := range columns {
			cells[j] = row[c]
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: cell address: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, addr, &cells); err != nil {
			return nil, fmt.Errorf("xlsx: write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
