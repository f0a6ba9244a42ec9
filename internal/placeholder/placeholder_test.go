package placeholder

import (
	"reflect"
	"testing"

	"mailmerge/internal/docx"
	"mailmerge/internal/testutil"
)

func openDoc(t *testing.T, body string) *docx.Document {
	t.Helper()
	path := testutil.WriteDocx(t, t.TempDir(), "tpl.docx", body)
	doc, err := docx.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return doc
}

func TestNormalizeMarkers(t *testing.T) {
	got := NormalizeMarkers("(<<관리번호>><<국가코드>>) in «국가명칭»")
	want := "(«관리번호»«국가코드») in «국가명칭»"
	if got != want {
		t.Errorf("NormalizeMarkers = %q, want %q", got, want)
	}
}

func TestFields(t *testing.T) {
	got := Fields("(«관리번호»<<국가코드>>) New trademark application(s) in «국가명칭»")
	want := []string{"관리번호", "국가코드", "국가명칭"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
	if Fields("no markers here") != nil {
		t.Error("expected nil for text without markers")
	}
}

func TestCollect(t *testing.T) {
	body := testutil.Para("Dear «수신»,") +
		`<w:tbl><w:tr><w:tc><w:tcPr/>` + testutil.Para("Mark: «Mark»") + `</w:tc>` +
		`<w:tc><w:tcPr/>` + testutil.Para("Ref: «관리번호»") + `</w:tc></w:tr></w:tbl>` +
		testutil.Para("Again «수신»")
	doc := openDoc(t, body)

	got := Collect(doc)
	want := []string{"Mark", "관리번호", "수신"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect = %v, want %v", got, want)
	}
}

func TestRewriteSingleRun(t *testing.T) {
	doc := openDoc(t, testutil.Para("Hello «이름», ref «관리번호»."))
	RewriteDocument(doc)
	if got := doc.Paragraphs()[0].Text(); got != "Hello {{ 이름 }}, ref {{ 관리번호 }}." {
		t.Errorf("unexpected rewrite: %q", got)
	}
}

func TestRewriteFracturedMarker(t *testing.T) {
	// a lone « run, the name split over two runs, then the closing run
	doc := openDoc(t, testutil.Para("Hello ", "«", "이", "름", "»", "!"))
	RewriteDocument(doc)
	p := doc.Paragraphs()[0]
	if got := p.Text(); got != "Hello {{ 이름 }}!" {
		t.Errorf("unexpected rewrite: %q", got)
	}
	runs := p.Runs()
	if got := runs[1].Text(); got != "{{ 이름 }}" {
		t.Errorf("token should land in the opening run, got %q", got)
	}
	for _, idx := range []int{2, 3, 4} {
		if runs[idx].Text() != "" {
			t.Errorf("run %d should be drained, got %q", idx, runs[idx].Text())
		}
	}
}

func TestRewriteHalfMarkers(t *testing.T) {
	doc := openDoc(t, testutil.Para("abc«이름", "끝»def"))
	RewriteDocument(doc)
	p := doc.Paragraphs()[0]
	if got := p.Text(); got != "abc{{ 이름끝 }}def" {
		t.Errorf("unexpected rewrite: %q", got)
	}
}

func TestSubstituteString(t *testing.T) {
	ctx := map[string]string{"이름": "홍길동", "subject": "greetings"}
	if got := SubstituteString("Hi {{ 이름 }}: {{ subject }} {{ 없음 }}", ctx); got != "Hi 홍길동: greetings " {
		t.Errorf("SubstituteString = %q", got)
	}
}

func TestRewriteThenSubstitute(t *testing.T) {
	body := testutil.Para("Dear ", "«", "수신", "»", ",") +
		testutil.Para("Case «관리번호» filed in «국가명칭».")
	doc := openDoc(t, body)

	RewriteDocument(doc)
	Substitute(doc, map[string]string{
		"수신":   "agent@example.com",
		"관리번호": "TM-1024",
		"국가명칭": "Japan",
	})

	paras := doc.Paragraphs()
	if got := paras[0].Text(); got != "Dear agent@example.com," {
		t.Errorf("unexpected paragraph: %q", got)
	}
	if got := paras[1].Text(); got != "Case TM-1024 filed in Japan." {
		t.Errorf("unexpected paragraph: %q", got)
	}
}

func TestSubstituteTokenSpanningRuns(t *testing.T) {
	doc := openDoc(t, testutil.Para("abc«이름", "»def"))
	RewriteDocument(doc)
	Substitute(doc, map[string]string{"이름": "값"})
	if got := doc.Paragraphs()[0].Text(); got != "abc값def" {
		t.Errorf("unexpected result: %q", got)
	}
}
