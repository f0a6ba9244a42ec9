package excel

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"mailmerge/internal/core"
	"mailmerge/internal/logger"
)

// LoadRecipientMapping reads a mailing-list workbook and returns recipient
// info keyed by country code. The first sheet carries a header row with
// the code in column A, country name in C, sender in D, To in E and CC in
// F. The second sheet, when present, has no headers but its first row is
// decorative and skipped; there the columns are packed as code, name,
// sender, To, CC. Entries from the first sheet win on duplicate codes.
func LoadRecipientMapping(path string) (map[string]core.RecipientInfo, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingFile, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrFormat, path, err)
	}
	defer f.Close()

	mapping := make(map[string]core.RecipientInfo)
	sheets := f.GetSheetList()

	if len(sheets) > 1 {
		rows, err := f.GetRows(sheets[1])
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %s: %v", core.ErrFormat, sheets[1], err)
		}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			code := col(row, 0)
			if code == "" {
				continue
			}
			mapping[code] = core.RecipientInfo{
				CountryName: col(row, 1),
				From:        col(row, 2),
				To:          col(row, 3),
				CC:          col(row, 4),
			}
		}
	}

	if len(sheets) > 0 {
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %s: %v", core.ErrFormat, sheets[0], err)
		}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			code := col(row, 0)
			if code == "" {
				continue
			}
			mapping[code] = core.RecipientInfo{
				CountryName: col(row, 2),
				From:        col(row, 3),
				To:          col(row, 4),
				CC:          col(row, 5),
			}
		}
	}

	logger.Debug("recipient mapping loaded", "path", path, "entries", len(mapping))
	return mapping, nil
}

func col(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
