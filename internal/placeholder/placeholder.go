// Package placeholder handles «field» markers in Word templates and the
// {{ field }} tokens they are rewritten to before value substitution.
// The ASCII spelling <<field>> is accepted everywhere guillemets are.
package placeholder

import (
	"regexp"
	"sort"
	"strings"

	"mailmerge/internal/docx"
)

var (
	fieldPattern = regexp.MustCompile(`«([^»]+)»`)
	tokenPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)
)

// NormalizeMarkers maps ASCII << >> markers onto guillemets so both
// spellings behave identically.
func NormalizeMarkers(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "<<", "«"), ">>", "»")
}

// Fields returns the field names referenced in s, in order of
// appearance.
func Fields(s string) []string {
	var names []string
	for _, m := range fieldPattern.FindAllStringSubmatch(NormalizeMarkers(s), -1) {
		names = append(names, m[1])
	}
	return names
}

// Collect returns the sorted distinct field names referenced anywhere in
// the document body, table cells included.
func Collect(doc *docx.Document) []string {
	seen := make(map[string]bool)
	for _, p := range doc.Paragraphs() {
		for _, name := range Fields(p.Text()) {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RewriteDocument converts every «field» marker in the document to a
// {{ field }} token.
func RewriteDocument(doc *docx.Document) {
	for _, p := range doc.Paragraphs() {
		RewriteParagraph(p)
	}
}

// RewriteParagraph converts «field» markers in one paragraph to
// {{ field }} tokens. Word fractures typed text into runs, so a marker
// rarely sits in a single run: when a run holds a lone opening
// guillemet, the following runs are drained into it until the closing
// guillemet appears. Markers split with text on either side are patched
// half by half.
func RewriteParagraph(p *docx.Paragraph) {
	runs := p.Runs()
	i := 0
	for i < len(runs) {
		run := runs[i]
		text := run.Text()
		if text == "" {
			i++
			continue
		}
		if strings.Contains(text, "«") && strings.Contains(text, "»") {
			run.SetText(fieldPattern.ReplaceAllString(text, "{{ $1 }}"))
			i++
			continue
		}
		if text == "«" {
			start := run
			i++
			var name strings.Builder
			for i < len(runs) && runs[i].Text() != "»" {
				name.WriteString(runs[i].Text())
				runs[i].SetText("")
				i++
			}
			start.SetText("{{ " + name.String() + " }}")
			if i < len(runs) && runs[i].Text() == "»" {
				runs[i].SetText("")
				i++
			}
			continue
		}
		if strings.Contains(text, "«") {
			text = strings.ReplaceAll(text, "«", "{{ ")
			run.SetText(text)
		}
		if strings.Contains(text, "»") {
			run.SetText(strings.ReplaceAll(text, "»", " }}"))
		}
		i++
	}
}

// SubstituteString replaces every {{ field }} token in s with its value
// from ctx. Unknown fields become empty strings.
func SubstituteString(s string, ctx map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		return ctx[name]
	})
}

// Substitute renders every token in the document with values from ctx.
func Substitute(doc *docx.Document, ctx map[string]string) {
	for _, p := range doc.Paragraphs() {
		substituteParagraph(p, ctx)
	}
}

// substituteParagraph replaces tokens run by run, then consolidates the
// paragraph into its first run if a token still spans run boundaries.
func substituteParagraph(p *docx.Paragraph, ctx map[string]string) {
	for _, run := range p.Runs() {
		if text := run.Text(); tokenPattern.MatchString(text) {
			run.SetText(SubstituteString(text, ctx))
		}
	}
	text := p.Text()
	if !tokenPattern.MatchString(text) {
		return
	}
	runs := p.Runs()
	if len(runs) == 0 {
		return
	}
	runs[0].SetText(SubstituteString(text, ctx))
	for _, run := range runs[1:] {
		run.SetText("")
	}
}
