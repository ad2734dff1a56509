package wml

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/antchfx/xmlquery"
)

func samplePackage(t *testing.T) *Package {
	t.Helper()
	pkg := NewPackage()
	pkg.Title = "Sample"
	pkg.Creator = "mdocx"
	pkg.Modified = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := Paragraph(pkg.Body())
	SetParagraphStyle(p, "Heading1")
	Text(Run(p), "Hello")

	rid, err := pkg.HyperlinkRelationship(PartDocument, "https://example.com")
	if err != nil {
		t.Fatalf("HyperlinkRelationship() error = %v", err)
	}
	Text(Run(RelHyperlink(p, rid)), "link")

	fns, err := pkg.Footnotes()
	if err != nil {
		t.Fatalf("Footnotes() error = %v", err)
	}
	fn, err := fns.Add(1)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	Text(Run(Paragraph(fn)), "note")
	FootnoteReference(Run(p), 1)
	return pkg
}

func readZip(t *testing.T, data []byte) (map[string]*xmlquery.Node, []string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("not a zip: %v", err)
	}
	parts := make(map[string]*xmlquery.Node)
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		n, err := xmlquery.Parse(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("%s is not valid XML: %v", f.Name, err)
		}
		parts[f.Name] = n
		names = append(names, f.Name)
	}
	return parts, names
}

func TestPackage_WriteTo(t *testing.T) {
	pkg := samplePackage(t)

	var buf bytes.Buffer
	n, err := pkg.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo() reported %d bytes, wrote %d", n, buf.Len())
	}

	parts, names := readZip(t, buf.Bytes())
	if names[0] != string(PartTypes) {
		t.Errorf("first entry = %q, want content types", names[0])
	}
	for _, want := range []PartName{PartDocument, PartStyles, PartFootnotes, PartCore, PartApp, PartRootRels, RelsFor(PartDocument)} {
		if _, ok := parts[string(want)]; !ok {
			t.Errorf("missing part %s", want)
		}
	}

	doc := parts[string(PartDocument)]
	mustQuery(t, doc, "//w:body/w:sectPr")
	if v := mustQuery(t, doc, "//w:pStyle/@w:val").InnerText(); v != "Heading1" {
		t.Errorf("paragraph style = %q", v)
	}

	rels := parts[string(RelsFor(PartDocument))]
	link := mustQuery(t, rels, "//Relationship[@TargetMode='External']")
	if link.SelectAttr("Target") != "https://example.com" {
		t.Errorf("hyperlink target = %q", link.SelectAttr("Target"))
	}
	mustQuery(t, rels, "//Relationship[@Target='footnotes.xml']")

	types := parts[string(PartTypes)]
	mustQuery(t, types, "//Override[@PartName='/word/footnotes.xml']")

	fns := parts[string(PartFootnotes)]
	if got := len(xmlquery.Find(fns, "//w:footnote")); got != 3 {
		t.Errorf("footnotes = %d, want 3 (two separators and one note)", got)
	}
	if v := mustQuery(t, fns, "//w:footnote[@w:id='1']//w:t").InnerText(); v != "note" {
		t.Errorf("footnote text = %q", v)
	}

	core := parts[string(PartCore)]
	if v := mustQuery(t, core, "//dc:title").InnerText(); v != "Sample" {
		t.Errorf("title = %q", v)
	}
	if v := mustQuery(t, core, "//dcterms:modified").InnerText(); v != "2024-05-01T12:00:00Z" {
		t.Errorf("modified = %q", v)
	}
}

func TestPackage_NoFootnotesPart(t *testing.T) {
	pkg := NewPackage()
	Paragraph(pkg.Body())

	parts, err := pkg.Parts()
	if err != nil {
		t.Fatalf("Parts() error = %v", err)
	}
	for _, p := range parts {
		if p.Name == PartFootnotes {
			t.Error("footnotes part must not be created implicitly")
		}
	}
	if pkg.HasFootnotes() {
		t.Error("HasFootnotes() = true")
	}
}

func TestPackage_Sealed(t *testing.T) {
	pkg := NewPackage()
	if _, err := pkg.WriteTo(io.Discard); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if _, err := pkg.Footnotes(); !errors.Is(err, ErrSealed) {
		t.Errorf("Footnotes() after write error = %v, want ErrSealed", err)
	}
	if _, err := pkg.HyperlinkRelationship(PartDocument, "https://x"); !errors.Is(err, ErrSealed) {
		t.Errorf("HyperlinkRelationship() after write error = %v, want ErrSealed", err)
	}
}

func TestPackage_FootnotesGetOrCreate(t *testing.T) {
	pkg := NewPackage()
	a, err := pkg.Footnotes()
	if err != nil {
		t.Fatal(err)
	}
	b, err := pkg.Footnotes()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Footnotes() must return the same part")
	}
	r, _ := pkg.Relationships(PartDocument)
	if r.Len() != 2 {
		t.Errorf("document relationships = %d, want styles and footnotes", r.Len())
	}
}

func TestPackage_Relationships(t *testing.T) {
	pkg := NewPackage()
	if _, err := pkg.Relationships(PartFootnotes); !errors.Is(err, ErrUnknownPart) {
		t.Errorf("footnotes relationships before part exists: %v", err)
	}
	if _, err := pkg.Footnotes(); err != nil {
		t.Fatal(err)
	}

	a, _ := pkg.HyperlinkRelationship(PartFootnotes, "https://a")
	b, _ := pkg.HyperlinkRelationship(PartFootnotes, "https://b")
	again, _ := pkg.HyperlinkRelationship(PartFootnotes, "https://a")
	if a == b || a != again {
		t.Errorf("relationship ids a=%s b=%s again=%s", a, b, again)
	}
	if _, err := pkg.HyperlinkRelationship(PartStyles, "https://a"); !errors.Is(err, ErrUnknownPart) {
		t.Errorf("styles part accepted hyperlink: %v", err)
	}

	rels, err := pkg.Relationships(PartFootnotes)
	if err != nil {
		t.Fatal(err)
	}
	for _, rel := range rels.list {
		if rel.Type != RelTypeHyperlink || !rel.External {
			t.Errorf("relationship %s = %+v, want external hyperlink", rel.ID, rel)
		}
	}
}

func TestPackage_DigestDeterministic(t *testing.T) {
	d1, err := samplePackage(t).Digest()
	if err != nil {
		t.Fatal(err)
	}
	d2, err := samplePackage(t).Digest()
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("digests differ: %s != %s", d1, d2)
	}

	other := samplePackage(t)
	Text(Run(Paragraph(other.Body())), "more")
	d3, _ := other.Digest()
	if d3 == d1 {
		t.Error("different content produced identical digest")
	}
}

func TestPackage_WriteFile(t *testing.T) {
	for _, fix := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "out", "doc.docx")
		if err := samplePackage(t).WriteFile(path, fix); err != nil {
			t.Fatalf("WriteFile(fixZip=%v) error = %v", fix, err)
		}
		zr, err := zip.OpenReader(path)
		if err != nil {
			t.Fatalf("WriteFile(fixZip=%v) result unreadable: %v", fix, err)
		}
		if fix {
			for _, f := range zr.File {
				if f.Flags&0x8 != 0 {
					t.Errorf("%s still has data descriptor", f.Name)
				}
			}
		}
		zr.Close()
	}
}

func TestFootnotes_Add(t *testing.T) {
	f := newFootnotes()
	if _, err := f.Add(0); !errors.Is(err, ErrFootnoteID) {
		t.Errorf("Add(0) error = %v", err)
	}
	if _, err := f.Add(-1); !errors.Is(err, ErrFootnoteID) {
		t.Errorf("Add(-1) error = %v", err)
	}
	fn, err := f.Add(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Add(1); !errors.Is(err, ErrDuplicateFootnote) {
		t.Errorf("duplicate Add error = %v", err)
	}
	got, ok := f.Get(1)
	if !ok || got != fn {
		t.Error("Get(1) did not return added footnote")
	}
	if _, ok := f.Get(2); ok {
		t.Error("Get(2) found missing footnote")
	}
	if f.Len() != 1 {
		t.Errorf("Len() = %d", f.Len())
	}
	// empty footnote gets paragraph on serialization
	f.document()
	if fn.SelectElement("w:p") == nil {
		t.Error("empty footnote has no paragraph")
	}
}

func TestStyles_Lookup(t *testing.T) {
	s := newStyles()
	tests := []struct {
		name string
		id   string
	}{
		{"Heading2", "Heading2"},
		{"heading 2", "Heading2"},
		{"Footnote Text", "FootnoteText"},
		{"SourceCode", "SourceCode"},
	}
	for _, tt := range tests {
		st, err := s.Lookup(tt.name)
		if err != nil {
			t.Errorf("Lookup(%q) error = %v", tt.name, err)
			continue
		}
		if st.ID != tt.id {
			t.Errorf("Lookup(%q) = %s, want %s", tt.name, st.ID, tt.id)
		}
	}
	if _, err := s.Lookup("Fancy"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Lookup(Fancy) error = %v", err)
	}

	n := s.Len()
	s.Add(Style{ID: "Fancy", Name: "Fancy Para", Type: StyleParagraph, Bold: true})
	s.Add(Style{ID: "Fancy", Name: "Fancy", Type: StyleParagraph})
	if s.Len() != n+1 {
		t.Errorf("replacing style changed count to %d", s.Len())
	}
	if _, err := s.Lookup("fancy para"); err == nil {
		t.Error("old name still resolves after replacement")
	}
	if _, err := s.Lookup("fancy"); err != nil {
		t.Errorf("Lookup(fancy) error = %v", err)
	}
}
