package excel

import "mailmerge/internal/core"

// GroupRows buckets rows by the value of the group-key column, preserving
// the first-seen order of keys and the relative order of rows sharing a
// key. Rows with a missing or empty key are skipped.
func GroupRows(rows []core.Row, keyColumn string) *core.Grouped {
	grouped := core.NewGrouped()
	for _, row := range rows {
		key := row[keyColumn]
		if key == "" {
			continue
		}
		grouped.Add(key, row)
	}
	return grouped
}

// LoadGrouped loads the workbook at path and groups its rows by the given
// column in one step.
func LoadGrouped(path, keyColumn string) (*core.Grouped, error) {
	rows, err := LoadRows(path)
	if err != nil {
		return nil, err
	}
	return GroupRows(rows, keyColumn), nil
}
