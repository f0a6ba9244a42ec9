package docx

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Block is a top-level element inside the document body or a table cell:
// a Paragraph, a Table, or an opaque chunk kept verbatim.
type Block interface {
	writeXML(buf *bytes.Buffer)
}

type rawBlock []byte

func (r rawBlock) writeXML(buf *bytes.Buffer) { buf.Write(r) }

// Paragraph is a w:p element whose runs can be inspected and rewritten.
// Everything that is not a run, run properties included, is carried
// through untouched.
type Paragraph struct {
	openTag     []byte
	selfClosing bool
	items       []paraItem
}

type paraItem interface {
	writeXML(buf *bytes.Buffer)
}

type rawChunk []byte

func (r rawChunk) writeXML(buf *bytes.Buffer) { buf.Write(r) }

func (p *Paragraph) writeXML(buf *bytes.Buffer) {
	buf.Write(p.openTag)
	if p.selfClosing {
		return
	}
	for _, it := range p.items {
		it.writeXML(buf)
	}
	buf.WriteString("</w:p>")
}

// Runs returns the paragraph's runs in document order. Runs nested in
// hyperlinks or other wrappers are included.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, it := range p.items {
		if r, ok := it.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// Text returns the concatenated text of all runs in the paragraph.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs() {
		b.WriteString(r.Text())
	}
	return b.String()
}

// Run is a w:r element holding formatting and text.
type Run struct {
	openTag []byte
	items   []runItem
}

type runItem interface {
	writeXML(buf *bytes.Buffer)
}

type rawRunChunk struct {
	name string // element name, "" for inter-element content
	data []byte
}

func (r rawRunChunk) writeXML(buf *bytes.Buffer) { buf.Write(r.data) }

type textItem struct {
	openTag []byte
	text    string
}

func (t textItem) writeXML(buf *bytes.Buffer) {
	buf.Write(t.openTag)
	buf.WriteString(escapeText(t.text))
	buf.WriteString("</w:t>")
}

const defaultTextTag = `<w:t xml:space="preserve">`

func (r *Run) writeXML(buf *bytes.Buffer) {
	buf.Write(r.openTag)
	for _, it := range r.items {
		it.writeXML(buf)
	}
	buf.WriteString("</w:r>")
}

// Text returns the concatenated text content of the run.
func (r *Run) Text() string {
	var b strings.Builder
	for _, it := range r.items {
		if t, ok := it.(textItem); ok {
			b.WriteString(t.text)
		}
	}
	return b.String()
}

// SetText replaces the run's content with a single text element carrying
// s. Run properties are preserved; breaks, tabs and drawings are dropped.
func (r *Run) SetText(s string) {
	var items []runItem
	for _, it := range r.items {
		if raw, ok := it.(rawRunChunk); ok && raw.name == "w:rPr" {
			items = append(items, raw)
		}
	}
	items = append(items, textItem{openTag: []byte(defaultTextTag), text: s})
	r.items = items
}

// Table is a w:tbl element. Table properties and grid definitions pass
// through as raw chunks.
type Table struct {
	openTag []byte
	items   []tableItem
}

type tableItem interface {
	writeXML(buf *bytes.Buffer)
}

func (t *Table) writeXML(buf *bytes.Buffer) {
	buf.Write(t.openTag)
	for _, it := range t.items {
		it.writeXML(buf)
	}
	buf.WriteString("</w:tbl>")
}

// Rows returns the table's rows in order.
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	for _, it := range t.items {
		if r, ok := it.(*TableRow); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	return len(t.Rows())
}

// TrimRows drops every row after the first keep rows.
func (t *Table) TrimRows(keep int) {
	seen := 0
	items := t.items[:0]
	for _, it := range t.items {
		if _, ok := it.(*TableRow); ok {
			seen++
			if seen > keep {
				continue
			}
		}
		items = append(items, it)
	}
	t.items = items
}

// AppendRow adds a row with one cell per cell of the first row, cloning
// that row's cell properties so the table grid stays intact. Texts
// beyond the template width are dropped; missing ones leave empty cells.
// When fontPt is positive the inserted text is sized at that many points.
func (t *Table) AppendRow(texts []string, fontPt int) error {
	rows := t.Rows()
	if len(rows) == 0 {
		return errors.New("table has no template row")
	}
	template := rows[0].Cells()
	if len(template) == 0 {
		return errors.New("template row has no cells")
	}

	row := &TableRow{openTag: []byte("<w:tr>")}
	for i, src := range template {
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		cell := &Cell{
			openTag: []byte("<w:tc>"),
			props:   copyBytes(src.props),
		}
		var buf bytes.Buffer
		buf.WriteString("<w:p><w:r>")
		if fontPt > 0 {
			sz := fontPt * 2
			fmt.Fprintf(&buf, `<w:rPr><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`, sz, sz)
		}
		buf.WriteString(defaultTextTag)
		buf.WriteString(escapeText(text))
		buf.WriteString("</w:t></w:r></w:p>")
		cell.blocks = []Block{rawBlock(buf.Bytes())}
		row.items = append(row.items, cell)
	}
	t.items = append(t.items, row)
	return nil
}

// TableRow is a w:tr element.
type TableRow struct {
	openTag []byte
	items   []rowItem
}

type rowItem interface {
	writeXML(buf *bytes.Buffer)
}

func (r *TableRow) writeXML(buf *bytes.Buffer) {
	buf.Write(r.openTag)
	for _, it := range r.items {
		it.writeXML(buf)
	}
	buf.WriteString("</w:tr>")
}

// Cells returns the row's cells in order.
func (r *TableRow) Cells() []*Cell {
	var cells []*Cell
	for _, it := range r.items {
		if c, ok := it.(*Cell); ok {
			cells = append(cells, c)
		}
	}
	return cells
}

// Cell is a w:tc element. Its leading w:tcPr is held apart so new rows
// can clone cell formatting.
type Cell struct {
	openTag []byte
	props   []byte
	blocks  []Block
}

func (c *Cell) writeXML(buf *bytes.Buffer) {
	buf.Write(c.openTag)
	buf.Write(c.props)
	for _, b := range c.blocks {
		b.writeXML(buf)
	}
	buf.WriteString("</w:tc>")
}

// Blocks returns the cell's content blocks.
func (c *Cell) Blocks() []Block {
	return c.blocks
}

// Text returns the concatenated text of the cell's paragraphs, one line
// per paragraph.
func (c *Cell) Text() string {
	var lines []string
	for _, p := range collectParagraphs(c.blocks) {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

// parseBlocks splits container XML into paragraph, table and raw blocks.
// Malformed stretches are kept verbatim rather than rejected.
func parseBlocks(data []byte) []Block {
	var blocks []Block
	i, rawStart := 0, 0
	flush := func(end int) {
		if end > rawStart {
			blocks = append(blocks, rawBlock(copyBytes(data[rawStart:end])))
		}
	}
	for i < len(data) {
		lt := bytes.IndexByte(data[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(data, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(data, i)
		if end < 0 {
			break
		}
		tag := data[i:end]
		name := tagName(tag)
		switch {
		case name == "w:p" && !isEndTag(tag):
			if isSelfClosing(tag) {
				flush(i)
				blocks = append(blocks, &Paragraph{openTag: copyBytes(tag), selfClosing: true})
				i, rawStart = end, end
				continue
			}
			closeStart, closeEnd := elementEnd(data, end, "w:p")
			if closeStart < 0 {
				i = end
				continue
			}
			flush(i)
			blocks = append(blocks, parseParagraph(tag, data[end:closeStart]))
			i, rawStart = closeEnd, closeEnd
		case name == "w:tbl" && !isEndTag(tag) && !isSelfClosing(tag):
			closeStart, closeEnd := elementEnd(data, end, "w:tbl")
			if closeStart < 0 {
				i = end
				continue
			}
			flush(i)
			blocks = append(blocks, parseTable(tag, data[end:closeStart]))
			i, rawStart = closeEnd, closeEnd
		default:
			i = end
		}
	}
	flush(len(data))
	return blocks
}

func parseParagraph(openTag, inner []byte) *Paragraph {
	p := &Paragraph{openTag: copyBytes(openTag)}
	i, rawStart := 0, 0
	flush := func(end int) {
		if end > rawStart {
			p.items = append(p.items, rawChunk(copyBytes(inner[rawStart:end])))
		}
	}
	for i < len(inner) {
		lt := bytes.IndexByte(inner[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(inner, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(inner, i)
		if end < 0 {
			break
		}
		tag := inner[i:end]
		if tagName(tag) == "w:r" && !isEndTag(tag) && !isSelfClosing(tag) {
			closeStart, closeEnd := elementEnd(inner, end, "w:r")
			if closeStart >= 0 {
				flush(i)
				p.items = append(p.items, parseRun(tag, inner[end:closeStart]))
				i, rawStart = closeEnd, closeEnd
				continue
			}
		}
		i = end
	}
	flush(len(inner))
	return p
}

func parseRun(openTag, inner []byte) *Run {
	r := &Run{openTag: copyBytes(openTag)}
	i, rawStart := 0, 0
	flush := func(end int) {
		if end > rawStart {
			r.items = append(r.items, rawRunChunk{data: copyBytes(inner[rawStart:end])})
		}
	}
	for i < len(inner) {
		lt := bytes.IndexByte(inner[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(inner, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(inner, i)
		if end < 0 {
			break
		}
		tag := inner[i:end]
		name := tagName(tag)
		if isEndTag(tag) {
			i = end
			continue
		}
		if name == "w:t" {
			flush(i)
			if isSelfClosing(tag) {
				r.items = append(r.items, textItem{openTag: []byte(defaultTextTag)})
				i, rawStart = end, end
				continue
			}
			closeStart, closeEnd := elementEnd(inner, end, "w:t")
			if closeStart < 0 {
				rawStart = i
				break
			}
			r.items = append(r.items, textItem{
				openTag: copyBytes(tag),
				text:    unescapeText(inner[end:closeStart]),
			})
			i, rawStart = closeEnd, closeEnd
			continue
		}
		chunkEnd := end
		if !isSelfClosing(tag) {
			_, closeEnd := elementEnd(inner, end, name)
			if closeEnd < 0 {
				i = end
				continue
			}
			chunkEnd = closeEnd
		}
		flush(i)
		r.items = append(r.items, rawRunChunk{name: name, data: copyBytes(inner[i:chunkEnd])})
		i, rawStart = chunkEnd, chunkEnd
	}
	flush(len(inner))
	return r
}

func parseTable(openTag, inner []byte) *Table {
	t := &Table{openTag: copyBytes(openTag)}
	i, rawStart := 0, 0
	flush := func(end int) {
		if end > rawStart {
			t.items = append(t.items, rawChunk(copyBytes(inner[rawStart:end])))
		}
	}
	for i < len(inner) {
		lt := bytes.IndexByte(inner[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(inner, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(inner, i)
		if end < 0 {
			break
		}
		tag := inner[i:end]
		if tagName(tag) == "w:tr" && !isEndTag(tag) && !isSelfClosing(tag) {
			closeStart, closeEnd := elementEnd(inner, end, "w:tr")
			if closeStart >= 0 {
				flush(i)
				t.items = append(t.items, parseRow(tag, inner[end:closeStart]))
				i, rawStart = closeEnd, closeEnd
				continue
			}
		}
		i = end
	}
	flush(len(inner))
	return t
}

func parseRow(openTag, inner []byte) *TableRow {
	row := &TableRow{openTag: copyBytes(openTag)}
	i, rawStart := 0, 0
	flush := func(end int) {
		if end > rawStart {
			row.items = append(row.items, rawChunk(copyBytes(inner[rawStart:end])))
		}
	}
	for i < len(inner) {
		lt := bytes.IndexByte(inner[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(inner, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(inner, i)
		if end < 0 {
			break
		}
		tag := inner[i:end]
		if tagName(tag) == "w:tc" && !isEndTag(tag) && !isSelfClosing(tag) {
			closeStart, closeEnd := elementEnd(inner, end, "w:tc")
			if closeStart >= 0 {
				flush(i)
				row.items = append(row.items, parseCell(tag, inner[end:closeStart]))
				i, rawStart = closeEnd, closeEnd
				continue
			}
		}
		i = end
	}
	flush(len(inner))
	return row
}

func parseCell(openTag, inner []byte) *Cell {
	c := &Cell{openTag: copyBytes(openTag)}
	rest := inner
	i := 0
	for i < len(inner) {
		lt := bytes.IndexByte(inner[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		end := scanTag(inner, i)
		if end < 0 {
			break
		}
		tag := inner[i:end]
		if tagName(tag) == "w:tcPr" && !isEndTag(tag) {
			if isSelfClosing(tag) {
				c.props = copyBytes(inner[i:end])
				rest = inner[end:]
			} else if _, closeEnd := elementEnd(inner, end, "w:tcPr"); closeEnd >= 0 {
				c.props = copyBytes(inner[i:closeEnd])
				rest = inner[closeEnd:]
			}
		}
		break
	}
	c.blocks = parseBlocks(rest)
	return c
}

func collectParagraphs(blocks []Block) []*Paragraph {
	var out []*Paragraph
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			out = append(out, v)
		case *Table:
			for _, row := range v.Rows() {
				for _, cell := range row.Cells() {
					out = append(out, collectParagraphs(cell.blocks)...)
				}
			}
		}
	}
	return out
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func unescapeText(data []byte) string {
	if bytes.IndexByte(data, '&') < 0 {
		return string(data)
	}
	var b strings.Builder
	for i := 0; i < len(data); {
		c := data[i]
		if c != '&' {
			b.WriteByte(c)
			i++
			continue
		}
		semi := bytes.IndexByte(data[i:], ';')
		if semi <= 1 || semi > 10 {
			b.WriteByte(c)
			i++
			continue
		}
		entity := string(data[i+1 : i+semi])
		switch {
		case entity == "amp":
			b.WriteByte('&')
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X"):
			n, err := strconv.ParseUint(entity[2:], 16, 32)
			if err != nil {
				b.Write(data[i : i+semi+1])
			} else {
				b.WriteRune(rune(n))
			}
		case strings.HasPrefix(entity, "#"):
			n, err := strconv.ParseUint(entity[1:], 10, 32)
			if err != nil {
				b.Write(data[i : i+semi+1])
			} else {
				b.WriteRune(rune(n))
			}
		default:
			b.Write(data[i : i+semi+1])
		}
		i += semi + 1
	}
	return b.String()
}
