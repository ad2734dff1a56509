package wml

import (
	"archive/zip"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	fixzip "github.com/hidez8891/zip"
	"github.com/zeebo/blake3"
)

var (
	ErrSealed      = errors.New("package was already written")
	ErrUnknownPart = errors.New("part does not support relationships")
)

const (
	pageWidth  = 12240 // twips, US Letter
	pageHeight = 15840
	pageMargin = 1440
	textWidth  = pageWidth - 2*pageMargin
)

// zip entries get fixed time so identical input produces identical output
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Part is serialized package part.
type Part struct {
	Name        PartName
	ContentType string
	Data        []byte
}

// Package is a WordprocessingML document under construction.
type Package struct {
	document  *etree.Document
	body      *etree.Element
	styles    *Styles
	footnotes *Footnotes
	rels      map[PartName]*Relationships

	Title    string
	Creator  string
	Modified time.Time

	sealed bool
}

func NewPackage() *Package {
	p := &Package{
		document: newXMLDocument(),
		styles:   newStyles(),
		rels: map[PartName]*Relationships{
			PartDocument: newRelationships(),
		},
	}
	root := p.document.CreateElement("w:document")
	root.CreateAttr("xmlns:w", NSMain)
	root.CreateAttr("xmlns:r", NSRel)
	p.body = root.CreateElement("w:body")
	p.rels[PartDocument].Add(RelStyles, "styles.xml", false)
	return p
}

// Body returns w:body of the main document part.
func (p *Package) Body() *etree.Element {
	return p.body
}

func (p *Package) Styles() *Styles {
	return p.styles
}

// Footnotes returns footnotes part creating it on first use.
func (p *Package) Footnotes() (*Footnotes, error) {
	if p.footnotes != nil {
		return p.footnotes, nil
	}
	if p.sealed {
		return nil, fmt.Errorf("unable to create footnotes part: %w", ErrSealed)
	}
	p.footnotes = newFootnotes()
	p.rels[PartDocument].Add(RelFootnotes, "footnotes.xml", false)
	p.rels[PartFootnotes] = newRelationships()
	return p.footnotes, nil
}

func (p *Package) HasFootnotes() bool {
	return p.footnotes != nil
}

// Relationships returns relationships of a part which may have hyperlinks.
func (p *Package) Relationships(part PartName) (*Relationships, error) {
	if r, ok := p.rels[part]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPart, part)
}

// HyperlinkRelationship returns relationship id for external URL used from
// given part.
func (p *Package) HyperlinkRelationship(part PartName, url string) (string, error) {
	if p.sealed {
		return "", fmt.Errorf("unable to add hyperlink: %w", ErrSealed)
	}
	r, err := p.Relationships(part)
	if err != nil {
		return "", err
	}
	return r.Hyperlink(url), nil
}

func (p *Package) sectionProperties() {
	if last := p.body.ChildElements(); len(last) > 0 && last[len(last)-1].FullTag() == "w:sectPr" {
		return
	}
	sect := p.body.CreateElement("w:sectPr")
	sz := sect.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", fmt.Sprint(pageWidth))
	sz.CreateAttr("w:h", fmt.Sprint(pageHeight))
	mar := sect.CreateElement("w:pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		mar.CreateAttr("w:"+side, fmt.Sprint(pageMargin))
	}
	for _, side := range []string{"header", "footer"} {
		mar.CreateAttr("w:"+side, "720")
	}
	mar.CreateAttr("w:gutter", "0")
}

func toBytes(doc *etree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Package) coreProperties(id uuid.UUID) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", NSCore)
	root.CreateAttr("xmlns:dc", NSDC)
	root.CreateAttr("xmlns:dcterms", NSDCTerms)
	root.CreateAttr("xmlns:xsi", NSXSI)
	if p.Title != "" {
		root.CreateElement("dc:title").SetText(p.Title)
	}
	if p.Creator != "" {
		root.CreateElement("dc:creator").SetText(p.Creator)
	}
	root.CreateElement("dc:identifier").SetText("urn:uuid:" + id.String())
	if !p.Modified.IsZero() {
		stamp := p.Modified.UTC().Format(time.RFC3339)
		for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
			el := root.CreateElement(tag)
			el.CreateAttr("xsi:type", "dcterms:W3CDTF")
			el.SetText(stamp)
		}
	}
	return doc
}

func appProperties(creator string) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Properties")
	root.CreateAttr("xmlns", NSApp)
	if creator != "" {
		root.CreateElement("Application").SetText(creator)
	}
	return doc
}

func contentTypes(parts []Part) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", NSTypes)
	for _, def := range [][2]string{{"rels", ctRels}, {"xml", ctXML}} {
		d := root.CreateElement("Default")
		d.CreateAttr("Extension", def[0])
		d.CreateAttr("ContentType", def[1])
	}
	for _, part := range parts {
		if part.ContentType == ctRels {
			continue
		}
		o := root.CreateElement("Override")
		o.CreateAttr("PartName", "/"+string(part.Name))
		o.CreateAttr("ContentType", part.ContentType)
	}
	return doc
}

// Parts serializes the package. Order of parts is fixed.
func (p *Package) Parts() ([]Part, error) {
	p.sectionProperties()

	var parts []Part
	add := func(name PartName, ct string, doc *etree.Document) error {
		data, err := toBytes(doc)
		if err != nil {
			return fmt.Errorf("unable to serialize %s: %w", name, err)
		}
		parts = append(parts, Part{Name: name, ContentType: ct, Data: data})
		return nil
	}

	if err := add(PartDocument, ctDocument, p.document); err != nil {
		return nil, err
	}
	// identifier is derived from content, so it is stable between runs
	id := uuid.NewSHA1(uuid.NameSpaceURL, parts[0].Data)

	if err := add(PartStyles, ctStyles, p.styles.document()); err != nil {
		return nil, err
	}
	if p.footnotes != nil {
		if err := add(PartFootnotes, ctFootnotes, p.footnotes.document()); err != nil {
			return nil, err
		}
	}
	if err := add(PartCore, ctCore, p.coreProperties(id)); err != nil {
		return nil, err
	}
	if err := add(PartApp, ctApp, appProperties(p.Creator)); err != nil {
		return nil, err
	}

	for _, part := range []PartName{PartDocument, PartFootnotes} {
		if r, ok := p.rels[part]; ok && r.Len() > 0 {
			if err := add(RelsFor(part), ctRels, r.document()); err != nil {
				return nil, err
			}
		}
	}

	root := newRelationships()
	root.Add(RelOfficeDocument, string(PartDocument), false)
	root.Add(RelCore, string(PartCore), false)
	root.Add(RelApp, string(PartApp), false)
	if err := add(PartRootRels, ctRels, root.document()); err != nil {
		return nil, err
	}

	types := contentTypes(parts)
	if err := add(PartTypes, ctXML, types); err != nil {
		return nil, err
	}
	// content types go first in the container
	parts = append(parts[len(parts)-1:], parts[:len(parts)-1]...)
	return parts, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// WriteTo writes zip container. Package is sealed afterwards: parts can no
// longer be added.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	parts, err := p.Parts()
	if err != nil {
		return 0, err
	}
	p.sealed = true

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, part := range parts {
		f, err := zw.CreateHeader(&zip.FileHeader{Name: string(part.Name), Method: zip.Deflate, Modified: entryTime})
		if err != nil {
			return cw.n, fmt.Errorf("unable to add %s: %w", part.Name, err)
		}
		if _, err := f.Write(part.Data); err != nil {
			return cw.n, fmt.Errorf("unable to write %s: %w", part.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("unable to finalize package: %w", err)
	}
	return cw.n, nil
}

// WriteFile writes package to path. When fixZip is set zip entries are
// rewritten without data descriptors, some readers cannot handle them.
func (p *Package) WriteFile(path string, fixZip bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if fixZip {
		return copyZipWithoutDataDescriptors(tmp.Name(), path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to move result into place (%s): %w", path, err)
	}
	return nil
}

func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return nil
}

// Digest returns blake3 hash over part names and content. Equal digests mean
// byte-identical documents regardless of zip compression details.
func (p *Package) Digest() (string, error) {
	parts, err := p.Parts()
	if err != nil {
		return "", err
	}
	h := blake3.New()
	for _, part := range parts {
		h.Write([]byte(part.Name))
		h.Write([]byte{0})
		h.Write(part.Data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
