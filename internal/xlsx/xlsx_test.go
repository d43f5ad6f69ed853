package xlsx

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pr0100noob/elta-import/internal/record"
)

// buildWorkbook assembles an in-memory xlsx file from string rows.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell address: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", addr, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Год", "Регион"},
		{"2024", "ЦФО"},
		{"2025", "СЗФО"},
	})
	in, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(in.Headers) != 2 || in.Headers[0] != "Год" {
		t.Fatalf("headers = %#v", in.Headers)
	}
	if len(in.Rows) != 2 || in.Rows[1][1] != "СЗФО" {
		t.Fatalf("rows = %#v", in.Rows)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("not a zip archive")); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v; want ErrMalformedInput", err)
	}
	if _, err := Parse(nil); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("got %v; want ErrMalformedInput", err)
	}
}

/*
TestExportRoundtrip verifies that an exported workbook reads back with the
same column order and cell values, including the blank cells a totals row
leaves in non-numeric fields.
*/
func TestExportRoundtrip(t *testing.T) {
	cols := []string{"Год", "Регион", "Продажи_сумма"}
	rows := []record.Record{
		{"Год": int64(2024), "Регион": "ЦФО", "Продажи_сумма": float64(10.5)},
		{"Год": nil, "Регион": "", "Продажи_сумма": float64(10.5)},
	}
	data, err := Export(cols, rows)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	in, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse exported file: %v", err)
	}
	if len(in.Headers) != 3 || in.Headers[2] != "Продажи_сумма" {
		t.Fatalf("headers = %#v", in.Headers)
	}
	if len(in.Rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(in.Rows))
	}
	if in.Rows[0][0] != "2024" || in.Rows[0][1] != "ЦФО" {
		t.Fatalf("row 0 = %#v", in.Rows[0])
	}
	if in.Rows[0][2] != "10.5" {
		t.Fatalf("numeric cell = %q; want 10.5", in.Rows[0][2])
	}
}
