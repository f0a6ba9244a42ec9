package excel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"mailmerge/internal/core"
)

func writeWorkbook(t *testing.T, name string, build func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	build(f)
	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture workbook: %v", err)
	}
	return path
}

func TestLoadRowsMissingFile(t *testing.T) {
	_, err := LoadRows(filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, core.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestLoadRowsNotASpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.xlsx")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadRows(path)
	if !errors.Is(err, core.ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestLoadRowsHeadersAndValues(t *testing.T) {
	path := writeWorkbook(t, "rows.xlsx", func(f *excelize.File) {
		f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Count", "", "Note"})
		f.SetSheetRow("Sheet1", "A2", &[]any{"  Widget  ", 3, "dropped", "first"})
		f.SetSheetRow("Sheet1", "A3", &[]any{"Gadget", 2.5, "dropped", ""})
	})

	rows, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0]["Name"]; got != "Widget" {
		t.Errorf("expected trimmed Name %q, got %q", "Widget", got)
	}
	if got := rows[0]["Count"]; got != "3" {
		t.Errorf("expected integral Count %q, got %q", "3", got)
	}
	if got := rows[1]["Count"]; got != "2.5" {
		t.Errorf("expected fractional Count %q, got %q", "2.5", got)
	}
	if _, ok := rows[0][""]; ok {
		t.Error("column with empty header should be dropped")
	}
	if got := rows[1]["Note"]; got != "" {
		t.Errorf("expected empty Note, got %q", got)
	}
}

func TestLoadRowsDateCell(t *testing.T) {
	path := writeWorkbook(t, "dates.xlsx", func(f *excelize.File) {
		f.SetSheetRow("Sheet1", "A1", &[]any{"Appl. Date"})
		f.SetCellValue("Sheet1", "A2", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	})

	rows, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if got := rows[0]["Appl. Date"]; got != "2024-03-15" {
		t.Errorf("expected date %q, got %q", "2024-03-15", got)
	}
}

func TestLoadRowsDiscardsEmptyRows(t *testing.T) {
	path := writeWorkbook(t, "gaps.xlsx", func(f *excelize.File) {
		f.SetSheetRow("Sheet1", "A1", &[]any{"A", "B"})
		f.SetSheetRow("Sheet1", "A2", &[]any{"", ""})
		f.SetSheetRow("Sheet1", "A3", &[]any{"x", "y"})
	})

	rows, err := LoadRows(path)
	if err != nil {
		t.Fatalf("LoadRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after discarding blanks, got %d", len(rows))
	}
	if rows[0]["A"] != "x" || rows[0]["B"] != "y" {
		t.Errorf("unexpected surviving row: %v", rows[0])
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  spaced  ", "spaced"},
		{42, "42"},
		{int64(7), "7"},
		{3.0, "3"},
		{3.25, "3.25"},
		{time.Date(2023, 12, 1, 10, 30, 0, 0, time.UTC), "2023-12-01"},
		{true, "true"},
	}
	for _, c := range cases {
		got := Normalize(c.in)
		if got != c.want {
			t.Errorf("Normalize(%v) = %q, want %q", c.in, got, c.want)
		}
		// renormalizing the output as text changes nothing
		if again := Normalize(got); again != got {
			t.Errorf("Normalize not idempotent: %q -> %q", got, again)
		}
	}
}
