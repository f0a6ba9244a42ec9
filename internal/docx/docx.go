// Package docx reads and writes Word documents just deeply enough for
// template work: paragraph and run text, table rows, and the default
// page header. Every part of the archive that is not touched survives a
// load/save cycle byte-for-byte.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const documentPart = "word/document.xml"

// Document is a .docx file opened for editing.
type Document struct {
	parts  map[string][]byte
	order  []string
	prefix []byte // document part up to and including the body open tag
	suffix []byte // document part from the body end tag onward
	blocks []Block
}

// Open reads the .docx file at path.
func Open(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	d := &Document{parts: make(map[string][]byte)}
	for _, zf := range r.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", zf.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", zf.Name, path, err)
		}
		d.parts[zf.Name] = data
		d.order = append(d.order, zf.Name)
	}

	data, ok := d.parts[documentPart]
	if !ok {
		return nil, fmt.Errorf("%s: missing %s part", path, documentPart)
	}
	if err := d.parseDocument(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Document) parseDocument(data []byte) error {
	i := 0
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
		if tagName(tag) == "w:body" && !isEndTag(tag) && !isSelfClosing(tag) {
			closeStart, _ := elementEnd(data, end, "w:body")
			if closeStart < 0 {
				return errors.New("document body not terminated")
			}
			d.prefix = copyBytes(data[:end])
			d.suffix = copyBytes(data[closeStart:])
			d.blocks = parseBlocks(data[end:closeStart])
			return nil
		}
		i = end
	}
	return errors.New("document body not found")
}

// Save writes the document to path, preserving the original part order.
func (d *Document) Save(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := zip.NewWriter(out)
	for _, name := range d.order {
		data := d.parts[name]
		if name == documentPart {
			data = d.documentXML()
		}
		f, err := w.Create(name)
		if err != nil {
			out.Close()
			return fmt.Errorf("writing %s to %s: %w", name, path, err)
		}
		if _, err := f.Write(data); err != nil {
			out.Close()
			return fmt.Errorf("writing %s to %s: %w", name, path, err)
		}
	}
	if err := w.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return out.Close()
}

func (d *Document) documentXML() []byte {
	var buf bytes.Buffer
	buf.Write(d.prefix)
	for _, b := range d.blocks {
		b.writeXML(&buf)
	}
	buf.Write(d.suffix)
	return buf.Bytes()
}

// Blocks returns the body's top-level blocks.
func (d *Document) Blocks() []Block {
	return d.blocks
}

// Paragraphs returns every paragraph in the body, including those nested
// inside table cells, in document order.
func (d *Document) Paragraphs() []*Paragraph {
	return collectParagraphs(d.blocks)
}

// Tables returns the body's top-level tables.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, b := range d.blocks {
		if t, ok := b.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

func (d *Document) setPart(name string, data []byte) {
	if _, ok := d.parts[name]; !ok {
		d.order = append(d.order, name)
	}
	d.parts[name] = data
}
