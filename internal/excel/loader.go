package excel

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mailmerge/internal/core"
	"mailmerge/internal/logger"
)

// LoadRows reads the active sheet of the workbook at path. Row 1 defines
// the column headers; columns with an empty header are dropped from every
// row. Each subsequent row becomes a core.Row of normalized values, and
// rows whose kept values are all empty are discarded.
func LoadRows(path string) ([]core.Row, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingFile, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFormat, path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %v", core.ErrFormat, sheet, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, cell := range raw[0] {
		headers[i] = Normalize(cell)
	}

	var rows []core.Row
	for r := 1; r < len(raw); r++ {
		row := core.Row{}
		empty := true
		for c, cell := range raw[r] {
			if c >= len(headers) || headers[c] == "" {
				continue
			}
			text := Normalize(cellValue(f, sheet, r, c, cell))
			if text != "" {
				empty = false
			}
			row[headers[c]] = text
		}
		if !empty {
			rows = append(rows, row)
		}
	}

	logger.Debug("spreadsheet loaded", "path", path, "sheet", sheet, "rows", len(rows))
	return rows, nil
}

// cellValue reconstructs a typed value for the cell at (row, col), both
// zero-based, from its raw stored string. Numbers become float64, date
// styled numbers become time.Time, and strings are read back formatted.
func cellValue(f *excelize.File, sheet string, row, col int, raw string) any {
	if raw == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return raw
	}
	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if isDateStyled(f, sheet, ref) {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return t
			}
		}
		return n
	case excelize.CellTypeDate:
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t
			}
		}
		return raw
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if v, err := f.GetCellValue(sheet, ref); err == nil {
			return v
		}
		return raw
	default:
		return raw
	}
}

// Built-in number format IDs that render a serial number as a date or
// time (ECMA-376 part 1, §18.8.30).
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 27: true, 28: true, 29: true,
	30: true, 31: true, 32: true, 33: true, 34: true, 35: true,
	36: true, 45: true, 46: true, 47: true, 50: true, 51: true,
	52: true, 53: true, 54: true, 55: true, 56: true, 57: true,
	58: true,
}

// isDateStyled reports whether the cell's number format renders its
// numeric value as a date.
func isDateStyled(f *excelize.File, sheet, ref string) bool {
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if builtInDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatIsDate(*style.CustomNumFmt)
	}
	return false
}

// customFormatIsDate scans a custom number format for date/time tokens,
// ignoring quoted literals and bracketed sections.
func customFormatIsDate(format string) bool {
	inQuote := false
	inBracket := false
	for _, r := range format {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case strings.ContainsRune("ymdhs", r) || strings.ContainsRune("YMDHS", r):
			return true
		}
	}
	return false
}
