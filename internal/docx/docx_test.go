package docx

import (
	"path/filepath"
	"strings"
	"testing"

	"mailmerge/internal/testutil"
)

func TestOpenMissingBody(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocx(t, dir, "ok.docx", testutil.Para("hello"))
	if _, err := Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := Open(filepath.Join(dir, "absent.docx")); err == nil {
		t.Error("expected error opening a missing file")
	}
}

func TestParagraphText(t *testing.T) {
	body := testutil.Para("Dear ", "«수신»", ",") + testutil.Para("Regards & thanks <team>")
	path := testutil.WriteDocx(t, t.TempDir(), "text.docx", body)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	paras := doc.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(paras))
	}
	if got := paras[0].Text(); got != "Dear «수신»," {
		t.Errorf("unexpected paragraph text %q", got)
	}
	if got := paras[1].Text(); got != "Regards & thanks <team>" {
		t.Errorf("entities should be decoded, got %q", got)
	}
	if runs := paras[0].Runs(); len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
}

func TestSetTextSurvivesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>old</w:t><w:br/><w:t>tail</w:t></w:r></w:p>`
	path := testutil.WriteDocx(t, dir, "set.docx", body)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := doc.Paragraphs()[0].Runs()[0]
	if got := run.Text(); got != "oldtail" {
		t.Fatalf("unexpected initial run text %q", got)
	}
	run.SetText("new <value> & more")

	saved := filepath.Join(dir, "saved.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	p := reopened.Paragraphs()[0]
	if got := p.Text(); got != "new <value> & more" {
		t.Errorf("unexpected text after round trip: %q", got)
	}
	// bold run properties survive SetText
	if xml := string(reopened.documentXML()); !strings.Contains(xml, "<w:b/>") {
		t.Errorf("run properties lost: %s", xml)
	}
}

func TestUntouchedPartsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	body := testutil.Para("unchanged") + `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`
	path := testutil.WriteDocx(t, dir, "orig.docx", body)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	saved := filepath.Join(dir, "copy.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if got := reopened.Paragraphs()[0].Text(); got != "unchanged" {
		t.Errorf("text changed across round trip: %q", got)
	}
	if !strings.Contains(string(reopened.documentXML()), `<w:pgSz w:w="11906" w:h="16838"/>`) {
		t.Error("section properties lost across round trip")
	}
}

const tableBody = `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>` +
	`<w:tr><w:tc><w:tcPr><w:tcW w:w="2000" w:type="dxa"/></w:tcPr><w:p><w:r><w:t>Mark</w:t></w:r></w:p></w:tc>` +
	`<w:tc><w:tcPr><w:tcW w:w="1000" w:type="dxa"/></w:tcPr><w:p><w:r><w:t>Class</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:tcPr/><w:p><w:r><w:t>stale</w:t></w:r></w:p></w:tc>` +
	`<w:tc><w:tcPr/><w:p><w:r><w:t>stale</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

func TestTableAppendAndTrim(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocx(t, dir, "table.docx", tableBody)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tables := doc.Tables()
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	tbl := tables[0]
	if tbl.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.RowCount())
	}

	tbl.TrimRows(1)
	if tbl.RowCount() != 1 {
		t.Fatalf("expected 1 row after trim, got %d", tbl.RowCount())
	}
	if err := tbl.AppendRow([]string{"BRAND", "35"}, 10); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow([]string{"OTHER", "9"}, 10); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	saved := filepath.Join(dir, "filled.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	rows := reopened.Tables()[0].Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows after append, got %d", len(rows))
	}
	if header := rows[0].Cells(); header[0].Text() != "Mark" || header[1].Text() != "Class" {
		t.Errorf("header row changed: %q %q", header[0].Text(), header[1].Text())
	}
	cells := rows[1].Cells()
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if got := cells[0].Text(); got != "BRAND" {
		t.Errorf("unexpected cell text %q", got)
	}
	// inserted cells clone template cell widths and carry the font size
	xml := string(reopened.documentXML())
	if !strings.Contains(xml, `<w:sz w:val="20"/>`) {
		t.Error("inserted cells missing 10pt font size")
	}
	if strings.Count(xml, `<w:tcW w:w="2000" w:type="dxa"/>`) != 3 {
		t.Error("template cell properties not cloned into inserted rows")
	}
}

func TestAppendRowKeepsGridWidth(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocx(t, dir, "grid.docx", tableBody)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tbl := doc.Tables()[0]
	tbl.TrimRows(1)
	if err := tbl.AppendRow([]string{"short"}, 0); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := tbl.AppendRow([]string{"a", "b", "overflow"}, 0); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	saved := filepath.Join(dir, "grid-out.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	rows := reopened.Tables()[0].Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// every inserted row matches the template row's cell count
	for i, row := range rows[1:] {
		if got := len(row.Cells()); got != 2 {
			t.Errorf("row %d has %d cells, want 2", i+1, got)
		}
	}
	if cells := rows[1].Cells(); cells[0].Text() != "short" || cells[1].Text() != "" {
		t.Errorf("unexpected padded row: %q %q", cells[0].Text(), cells[1].Text())
	}
	if cells := rows[2].Cells(); cells[0].Text() != "a" || cells[1].Text() != "b" {
		t.Errorf("unexpected truncated row: %q %q", cells[0].Text(), cells[1].Text())
	}
	if strings.Contains(string(reopened.documentXML()), "overflow") {
		t.Error("value beyond the grid width should be dropped")
	}
}

func TestHeaderLines(t *testing.T) {
	path := testutil.WriteDocxWithHeader(t, t.TempDir(), "hdr.docx",
		testutil.Para("body"),
		testutil.Para("---")+testutil.Para("Subject: hello"))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	lines := doc.HeaderLines()
	if len(lines) != 2 || lines[0] != "---" || lines[1] != "Subject: hello" {
		t.Errorf("unexpected header lines: %v", lines)
	}
}

func TestReplaceHeaderExisting(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocxWithHeader(t, dir, "hdr.docx",
		testutil.Para("body"), testutil.Para("old header"))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	doc.ReplaceHeader("---", `Subject: "Changed"`)

	saved := filepath.Join(dir, "out.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	lines := reopened.HeaderLines()
	if len(lines) != 2 || lines[0] != "---" || lines[1] != `Subject: "Changed"` {
		t.Errorf("unexpected header lines after replace: %v", lines)
	}
}

func TestReplaceHeaderCreatesPart(t *testing.T) {
	dir := t.TempDir()
	body := testutil.Para("body") + `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`
	path := testutil.WriteDocx(t, dir, "plain.docx", body)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if lines := doc.HeaderLines(); lines != nil {
		t.Fatalf("expected no header, got %v", lines)
	}
	doc.ReplaceHeader("---", "Subject: fresh")

	saved := filepath.Join(dir, "out.docx")
	if err := doc.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reopened, err := Open(saved)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	lines := reopened.HeaderLines()
	if len(lines) != 2 || lines[1] != "Subject: fresh" {
		t.Errorf("unexpected header lines: %v", lines)
	}
	xml := string(reopened.documentXML())
	if !strings.Contains(xml, `w:type="default"`) {
		t.Error("section properties missing the default header reference")
	}
}
