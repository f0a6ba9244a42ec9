package core

import (
	"reflect"
	"testing"
)

func TestRowFirst(t *testing.T) {
	row := Row{"수신": "a@example.com", "To": "b@example.com", "CC": ""}

	if got := row.First("수신", "To"); got != "a@example.com" {
		t.Errorf("Expected localized column to win, got %q", got)
	}
	if got := row.First("참조", "To"); got != "b@example.com" {
		t.Errorf("Expected fallback to alternate column, got %q", got)
	}
	if got := row.First("CC", "없음"); got != "" {
		t.Errorf("Expected empty result for empty columns, got %q", got)
	}
}

func TestGroupedPreservesInsertionOrder(t *testing.T) {
	g := NewGrouped()
	g.Add("KR", Row{"Mark": "first"})
	g.Add("US", Row{"Mark": "second"})
	g.Add("KR", Row{"Mark": "third"})

	if got := g.Keys(); !reflect.DeepEqual(got, []string{"KR", "US"}) {
		t.Errorf("Keys() = %v, want first-seen order [KR US]", got)
	}

	kr := g.Get("KR")
	if len(kr) != 2 {
		t.Fatalf("Expected 2 rows for KR, got %d", len(kr))
	}
	if kr[0]["Mark"] != "first" || kr[1]["Mark"] != "third" {
		t.Errorf("Rows for KR out of order: %v", kr)
	}
}

func TestGroupedSortedKeys(t *testing.T) {
	g := NewGrouped()
	g.Add("US", Row{})
	g.Add("JP", Row{})
	g.Add("KR", Row{})

	if got := g.SortedKeys(); !reflect.DeepEqual(got, []string{"JP", "KR", "US"}) {
		t.Errorf("SortedKeys() = %v, want lexicographic order", got)
	}
	// SortedKeys must not disturb the first-seen order.
	if got := g.Keys(); !reflect.DeepEqual(got, []string{"US", "JP", "KR"}) {
		t.Errorf("Keys() = %v after SortedKeys, want original order", got)
	}
}

func TestGroupedCounts(t *testing.T) {
	g := NewGrouped()
	g.Add("US", Row{})
	g.Add("US", Row{})
	g.Add("JP", Row{})

	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if g.Rows() != 3 {
		t.Errorf("Rows() = %d, want 3", g.Rows())
	}
}
