package merge

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename derives a filesystem-safe base name. The preferred
// name is tried first, then the alternate; when neither survives
// sanitization the 1-based index yields a numbered fallback.
func SanitizeFilename(preferred, alternate string, index int) string {
	candidate := unsafeChars.ReplaceAllString(strings.TrimSpace(preferred), "_")
	candidate = strings.Trim(candidate, "._")
	if candidate == "" {
		candidate = strings.Trim(unsafeChars.ReplaceAllString(alternate, "_"), "._")
	}
	if candidate == "" {
		candidate = fmt.Sprintf("message_%02d", index)
	}
	return candidate
}
