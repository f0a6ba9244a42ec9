package core

import "sort"

// Row is a single spreadsheet record: column header mapped to the
// normalized display string of the cell.
type Row map[string]string

// First returns the first non-empty value among the given columns.
// It is used to resolve localized column names with English alternates.
func (r Row) First(columns ...string) string {
	for _, col := range columns {
		if v := r[col]; v != "" {
			return v
		}
	}
	return ""
}

// Grouped buckets rows by a group key while remembering the order in
// which keys were first seen. A key present in the map always carries at
// least one row.
type Grouped struct {
	keys   []string
	groups map[string][]Row
}

// NewGrouped returns an empty Grouped collection.
func NewGrouped() *Grouped {
	return &Grouped{groups: make(map[string][]Row)}
}

// Add appends a row to the bucket for key, creating the bucket on first use.
func (g *Grouped) Add(key string, row Row) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], row)
}

// Get returns the rows bucketed under key, in insertion order.
func (g *Grouped) Get(key string) []Row {
	return g.groups[key]
}

// Keys returns the group keys in first-seen order.
func (g *Grouped) Keys() []string {
	return g.keys
}

// SortedKeys returns the group keys in lexicographic order. Output
// generation iterates in this order so that runs are deterministic.
func (g *Grouped) SortedKeys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	sort.Strings(keys)
	return keys
}

// Len returns the number of distinct group keys.
func (g *Grouped) Len() int {
	return len(g.keys)
}

// Rows returns the total number of rows across all groups.
func (g *Grouped) Rows() int {
	total := 0
	for _, rows := range g.groups {
		total += len(rows)
	}
	return total
}

// RecipientInfo holds the addressing fields resolved for a group.
type RecipientInfo struct {
	CountryName string `json:"country_name"` // Display name for the group (country)
	From        string `json:"from"`         // Sender address, may be empty
	To          string `json:"to"`           // Primary recipients, may be a delimited list
	CC          string `json:"cc"`           // Secondary recipients, may be a delimited list
}

// Result reports the outcome of a generation run.
type Result struct {
	Generated int `json:"generated"` // Number of message files written
	Skipped   int `json:"skipped"`   // Groups/rows skipped due to per-item failures
}
