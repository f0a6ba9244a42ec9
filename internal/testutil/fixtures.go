// Package testutil builds throwaway .docx and .xlsx fixtures for tests.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const (
	xmlDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	baseContentTypes = xmlDecl + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`%s</Types>`

	headerOverride = `<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`

	rootRels = xmlDecl + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`

	docRels = xmlDecl + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`%s</Relationships>`

	headerRel = `<Relationship Id="rId100" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`
)

// DocumentXML wraps body content in a complete word/document.xml part.
func DocumentXML(body string) string {
	return xmlDecl +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		`<w:body>` + body + `</w:body></w:document>`
}

// HeaderXML wraps content in a complete header part.
func HeaderXML(content string) string {
	return xmlDecl +
		`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
		content + `</w:hdr>`
}

// Para builds a paragraph with one run per text fragment. Splitting text
// across fragments mimics how Word fractures typed text into runs.
func Para(fragments ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, f := range fragments {
		b.WriteString(`<w:r><w:t xml:space="preserve">`)
		b.WriteString(escapeXML(f))
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func escapeXML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// WriteDocx writes a minimal Word document whose body holds bodyXML and
// returns its path.
func WriteDocx(tb testing.TB, dir, name, bodyXML string) string {
	tb.Helper()
	parts := [][2]string{
		{"[Content_Types].xml", strings.ReplaceAll(baseContentTypes, "%s", "")},
		{"_rels/.rels", rootRels},
		{"word/_rels/document.xml.rels", strings.ReplaceAll(docRels, "%s", "")},
		{"word/document.xml", DocumentXML(bodyXML)},
	}
	return writeZip(tb, dir, name, parts)
}

// WriteDocxWithHeader writes a Word document that carries a default page
// header holding headerXML in addition to the body.
func WriteDocxWithHeader(tb testing.TB, dir, name, bodyXML, headerXML string) string {
	tb.Helper()
	body := bodyXML + `<w:sectPr><w:headerReference w:type="default" r:id="rId100"/></w:sectPr>`
	parts := [][2]string{
		{"[Content_Types].xml", strings.ReplaceAll(baseContentTypes, "%s", headerOverride)},
		{"_rels/.rels", rootRels},
		{"word/_rels/document.xml.rels", strings.ReplaceAll(docRels, "%s", headerRel)},
		{"word/document.xml", DocumentXML(body)},
		{"word/header1.xml", HeaderXML(headerXML)},
	}
	return writeZip(tb, dir, name, parts)
}

func writeZip(tb testing.TB, dir, name string, parts [][2]string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		tb.Fatalf("creating fixture %s: %v", name, err)
	}
	w := zip.NewWriter(out)
	for _, part := range parts {
		f, err := w.Create(part[0])
		if err != nil {
			tb.Fatalf("writing fixture part %s: %v", part[0], err)
		}
		if _, err := f.Write([]byte(part[1])); err != nil {
			tb.Fatalf("writing fixture part %s: %v", part[0], err)
		}
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("finalizing fixture %s: %v", name, err)
	}
	if err := out.Close(); err != nil {
		tb.Fatalf("closing fixture %s: %v", name, err)
	}
	return path
}

// WriteWorkbook writes an .xlsx built by the given callback and returns
// its path.
func WriteWorkbook(tb testing.TB, dir, name string, build func(f *excelize.File)) string {
	tb.Helper()
	f := excelize.NewFile()
	build(f)
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("saving fixture workbook %s: %v", name, err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("closing fixture workbook %s: %v", name, err)
	}
	return path
}
