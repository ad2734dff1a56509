package wml

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

var (
	ErrDuplicateFootnote = errors.New("footnote already exists")
	ErrFootnoteID        = errors.New("footnote id is reserved")
)

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

// Relationship is a single entry of relationships part.
type Relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

// Relationships of a single part. Ids are assigned sequentially, external
// hyperlinks to the same URL share one relationship.
type Relationships struct {
	list     []Relationship
	external map[string]string
}

func newRelationships() *Relationships {
	return &Relationships{external: make(map[string]string)}
}

func (r *Relationships) Add(typ, target string, external bool) string {
	id := "rId" + strconv.Itoa(len(r.list)+1)
	r.list = append(r.list, Relationship{ID: id, Type: typ, Target: target, External: external})
	return id
}

// Hyperlink returns relationship id for external URL, reusing existing one.
func (r *Relationships) Hyperlink(url string) string {
	if id, ok := r.external[url]; ok {
		return id
	}
	id := r.Add(RelTypeHyperlink, url, true)
	r.external[url] = id
	return id
}

func (r *Relationships) Len() int {
	return len(r.list)
}

// Get returns relationship by id.
func (r *Relationships) Get(id string) (Relationship, bool) {
	for _, rel := range r.list {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

func (r *Relationships) document() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", NSPkgRels)
	for _, rel := range r.list {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", rel.ID)
		el.CreateAttr("Type", rel.Type)
		el.CreateAttr("Target", rel.Target)
		if rel.External {
			el.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}

// Footnotes is the footnotes part. Ids -1 and 0 are taken by separators Word
// requires, user footnotes start at 1.
type Footnotes struct {
	doc  *etree.Document
	root *etree.Element
	byID map[int64]*etree.Element
}

func newFootnotes() *Footnotes {
	f := &Footnotes{doc: newXMLDocument(), byID: make(map[int64]*etree.Element)}
	f.root = f.doc.CreateElement("w:footnotes")
	f.root.CreateAttr("xmlns:w", NSMain)
	f.root.CreateAttr("xmlns:r", NSRel)

	f.separator(-1, "separator")
	f.separator(0, "continuationSeparator")
	return f
}

func (f *Footnotes) separator(id int64, typ string) {
	fn := f.root.CreateElement("w:footnote")
	fn.CreateAttr("w:type", typ)
	fn.CreateAttr("w:id", strconv.FormatInt(id, 10))
	p := Paragraph(fn)
	sp := Spacing(ParagraphProperties(p), -1, 0)
	sp.CreateAttr("w:line", "240")
	sp.CreateAttr("w:lineRule", "auto")
	Run(p).CreateElement("w:" + typ)
}

// Add creates empty footnote with requested id.
func (f *Footnotes) Add(id int64) (*etree.Element, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", ErrFootnoteID, id)
	}
	if _, ok := f.byID[id]; ok {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateFootnote, id)
	}
	fn := f.root.CreateElement("w:footnote")
	fn.CreateAttr("w:id", strconv.FormatInt(id, 10))
	f.byID[id] = fn
	return fn, nil
}

func (f *Footnotes) Get(id int64) (*etree.Element, bool) {
	fn, ok := f.byID[id]
	return fn, ok
}

// Len returns number of user footnotes.
func (f *Footnotes) Len() int {
	return len(f.byID)
}

func (f *Footnotes) document() *etree.Document {
	// every footnote must have at least one paragraph
	for _, fn := range f.byID {
		EnsureParagraph(fn)
	}
	return f.doc
}
