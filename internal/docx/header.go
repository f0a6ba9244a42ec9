package docx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

const (
	relsPart          = "word/_rels/document.xml.rels"
	contentTypesPart  = "[Content_Types].xml"
	headerRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	headerContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"

	xmlDecl       = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	emptyRelsPart = xmlDecl + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
	headerOpenTag = `<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`
)

// HeaderLines returns the text of each paragraph in the document's
// default page header, or nil when the document has none.
func (d *Document) HeaderLines() []string {
	name, ok := d.defaultHeaderPart()
	if !ok {
		return nil
	}
	inner, ok := elementContent(d.parts[name], "w:hdr")
	if !ok {
		return nil
	}
	var lines []string
	for _, p := range collectParagraphs(parseBlocks(inner)) {
		lines = append(lines, p.Text())
	}
	return lines
}

// ReplaceHeader replaces the default page header with one paragraph per
// line. A header part, its relationship and its section reference are
// created when the document has none yet.
func (d *Document) ReplaceHeader(lines ...string) {
	var buf bytes.Buffer
	buf.WriteString(xmlDecl)
	buf.WriteString(headerOpenTag)
	for _, line := range lines {
		buf.WriteString("<w:p><w:r>")
		buf.WriteString(defaultTextTag)
		buf.WriteString(escapeText(line))
		buf.WriteString("</w:t></w:r></w:p>")
	}
	buf.WriteString("</w:hdr>")
	content := buf.Bytes()

	if rid := d.defaultHeaderRef(); rid != "" {
		if target := d.relTarget(rid); target != "" {
			d.setPart(resolvePartName(target), content)
			return
		}
	}

	name := d.freeHeaderName()
	rid := d.addRelationship(headerRelType, strings.TrimPrefix(name, "word/"))
	d.setPart(name, content)
	d.addContentTypeOverride("/"+name, headerContentType)
	d.insertHeaderReference(rid)
}

// defaultHeaderPart resolves the part holding the default page header,
// falling back to the first header part present in the archive.
func (d *Document) defaultHeaderPart() (string, bool) {
	if rid := d.defaultHeaderRef(); rid != "" {
		if target := d.relTarget(rid); target != "" {
			name := resolvePartName(target)
			if _, ok := d.parts[name]; ok {
				return name, true
			}
		}
	}
	for _, name := range d.order {
		if strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") {
			return name, true
		}
	}
	return "", false
}

// defaultHeaderRef returns the relationship id of the last default
// header reference in the document part. The body-level section comes
// last, so its reference wins over mid-document section breaks.
func (d *Document) defaultHeaderRef() string {
	data := d.documentXML()
	rid := ""
	i := 0
	for {
		j := bytes.Index(data[i:], []byte("<w:headerReference"))
		if j < 0 {
			return rid
		}
		i += j
		end := scanTag(data, i)
		if end < 0 {
			return rid
		}
		tag := data[i:end]
		if attrValue(tag, "w:type") == "default" {
			if id := attrValue(tag, "r:id"); id != "" {
				rid = id
			}
		}
		i = end
	}
}

// relTarget returns the Target of the document relationship with the
// given Id, or "".
func (d *Document) relTarget(rid string) string {
	rels, ok := d.parts[relsPart]
	if !ok {
		return ""
	}
	i := 0
	for {
		j := bytes.Index(rels[i:], []byte("<Relationship"))
		if j < 0 {
			return ""
		}
		i += j
		end := scanTag(rels, i)
		if end < 0 {
			return ""
		}
		tag := rels[i:end]
		if attrValue(tag, "Id") == rid {
			return attrValue(tag, "Target")
		}
		i = end
	}
}

func resolvePartName(target string) string {
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	return "word/" + target
}

func (d *Document) freeHeaderName() string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("word/header%d.xml", n)
		if _, ok := d.parts[name]; !ok {
			return name
		}
	}
}

// addRelationship appends a relationship to the document rels part and
// returns its freshly allocated id.
func (d *Document) addRelationship(relType, target string) string {
	rels, ok := d.parts[relsPart]
	if !ok {
		rels = []byte(emptyRelsPart)
	}
	max := 0
	i := 0
	for {
		j := bytes.Index(rels[i:], []byte("<Relationship"))
		if j < 0 {
			break
		}
		i += j
		end := scanTag(rels, i)
		if end < 0 {
			break
		}
		if id := attrValue(rels[i:end], "Id"); strings.HasPrefix(id, "rId") {
			if n, err := strconv.Atoi(id[3:]); err == nil && n > max {
				max = n
			}
		}
		i = end
	}
	rid := fmt.Sprintf("rId%d", max+1)

	close := bytes.LastIndex(rels, []byte("</Relationships>"))
	if close < 0 {
		return rid
	}
	var buf bytes.Buffer
	buf.Write(rels[:close])
	fmt.Fprintf(&buf, `<Relationship Id=%q Type=%q Target=%q/>`, rid, relType, target)
	buf.Write(rels[close:])
	d.setPart(relsPart, buf.Bytes())
	return rid
}

func (d *Document) addContentTypeOverride(partName, contentType string) {
	ct, ok := d.parts[contentTypesPart]
	if !ok {
		return
	}
	if bytes.Contains(ct, []byte(`PartName="`+partName+`"`)) {
		return
	}
	close := bytes.LastIndex(ct, []byte("</Types>"))
	if close < 0 {
		return
	}
	var buf bytes.Buffer
	buf.Write(ct[:close])
	fmt.Fprintf(&buf, `<Override PartName=%q ContentType=%q/>`, partName, contentType)
	buf.Write(ct[close:])
	d.parts[contentTypesPart] = buf.Bytes()
}

// insertHeaderReference adds a default header reference to the body
// section properties, creating them when absent.
func (d *Document) insertHeaderReference(rid string) {
	ref := fmt.Sprintf(`<w:headerReference w:type="default" r:id=%q/>`, rid)
	for i, b := range d.blocks {
		raw, ok := b.(rawBlock)
		if !ok {
			continue
		}
		j := bytes.Index(raw, []byte("<w:sectPr"))
		if j < 0 {
			continue
		}
		end := scanTag(raw, j)
		if end < 0 || isSelfClosing(raw[j:end]) {
			continue
		}
		var buf bytes.Buffer
		buf.Write(raw[:end])
		buf.WriteString(ref)
		buf.Write(raw[end:])
		d.blocks[i] = rawBlock(buf.Bytes())
		return
	}
	d.blocks = append(d.blocks, rawBlock("<w:sectPr>"+ref+"</w:sectPr>"))
}
