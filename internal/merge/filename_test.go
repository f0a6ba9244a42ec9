package merge

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		preferred string
		alternate string
		index     int
		want      string
	}{
		{"A/B:C", "x", 1, "A_B_C"},
		{"", "", 3, "message_03"},
		{"", "한글", 1, "message_01"},
		{"  spaced name  ", "x", 1, "spaced_name"},
		{"..dots..", "x", 1, "dots"},
		{"(TM-1KR) filing", "x", 1, "TM-1KR_filing"},
		{"", "fallback name", 2, "fallback_name"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.preferred, c.alternate, c.index); got != c.want {
			t.Errorf("SanitizeFilename(%q, %q, %d) = %q, want %q",
				c.preferred, c.alternate, c.index, got, c.want)
		}
	}
}
