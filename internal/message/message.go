// Package message turns rendered Word documents into pre-addressed
// email drafts and writes them out as .eml files.
package message

import (
	"html"
	"strings"

	"mailmerge/internal/docx"
	"mailmerge/internal/placeholder"
)

// Draft is a fully addressed outgoing message ready to be written out.
type Draft struct {
	From        string
	To          []string
	Cc          []string
	Subject     string
	HTMLBody    string
	Attachments []string
}

// Writer persists a draft at the given path.
type Writer interface {
	Write(draft *Draft, path string) error
}

// SplitAddressList splits a spreadsheet address cell on semicolons,
// dropping empty entries. Commas are left alone so quoted display
// names like `"Doe, Jane" <j@example.com>` survive intact.
func SplitAddressList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// bodyStyle keeps generated mail legible in clients that apply no
// default styling of their own.
const bodyStyle = `body { font-family: "Calibri", "Malgun Gothic", sans-serif; font-size: 11pt; }
table { border-collapse: collapse; }
td, th { border: 1px solid #444; padding: 2pt 6pt; }`

// FromDocument builds a draft from a rendered document. The page
// header's front matter supplies the subject; any remaining tokens in
// the front matter are resolved against ctx. The body, tables included,
// becomes the HTML body.
func FromDocument(doc *docx.Document, ctx map[string]string) *Draft {
	meta := parseFrontMatter(doc.HeaderLines(), ctx)
	return &Draft{
		Subject:  meta["subject"],
		HTMLBody: renderBody(doc),
	}
}

// parseFrontMatter reads "Key: value" lines from the page header,
// ignoring the --- fence. Values may be double quoted with embedded
// quotes escaped as \" and may carry {{ field }} tokens.
func parseFrontMatter(lines []string, ctx map[string]string) map[string]string {
	meta := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = strings.ReplaceAll(value[1:len(value)-1], `\"`, `"`)
		}
		value = placeholder.SubstituteString(value, ctx)
		meta[strings.ToLower(strings.TrimSpace(key))] = value
	}
	return meta
}

func renderBody(doc *docx.Document) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"/><style>\n")
	b.WriteString(bodyStyle)
	b.WriteString("\n</style></head><body>\n")
	for _, block := range doc.Blocks() {
		switch v := block.(type) {
		case *docx.Paragraph:
			writeParagraph(&b, v)
		case *docx.Table:
			writeTable(&b, v)
		}
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

func writeParagraph(b *strings.Builder, p *docx.Paragraph) {
	text := p.Text()
	if text == "" {
		b.WriteString("<p>&nbsp;</p>\n")
		return
	}
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</p>\n")
}

func writeTable(b *strings.Builder, t *docx.Table) {
	b.WriteString("<table>\n")
	for _, row := range t.Rows() {
		b.WriteString("<tr>")
		for _, cell := range row.Cells() {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell.Text()))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
}
