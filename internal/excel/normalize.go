package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalize converts a typed cell value into its canonical display string:
// absent cells become "", text is trimmed, integers render without
// separators, integral floats drop the fractional part, and dates render
// as YYYY-MM-DD. Any other type falls back to a generic string coercion.
func Normalize(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}
