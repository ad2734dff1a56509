package wml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var ErrStyleNotFound = errors.New("style not found")

type StyleType string

const (
	StyleParagraph StyleType = "paragraph"
	StyleCharacter StyleType = "character"
	StyleTable     StyleType = "table"
)

// Style is a simplified style definition, only properties the converter uses.
type Style struct {
	ID      string
	Name    string
	Type    StyleType
	BasedOn string
	Next    string

	// paragraph level
	KeepNext     bool
	OutlineLevel int // 0 means none, 1..9 map to w:outlineLvl 0..8
	SpaceBefore  int // twips
	SpaceAfter   int // twips
	IndentLeft   int // twips
	BottomBorder bool
	Compact      bool // no spacing between paragraphs of the same style

	// run level
	Bold      bool
	Italic    bool
	Size      int // half points
	Color     string
	Font      string
	Shading   string
	VertAlign string
}

func (s *Style) element() *etree.Element {
	el := etree.NewElement("w:style")
	el.CreateAttr("w:type", string(s.Type))
	el.CreateAttr("w:styleId", s.ID)
	if s.ID == "Normal" || s.ID == "DefaultParagraphFont" {
		el.CreateAttr("w:default", "1")
	}
	el.CreateElement("w:name").CreateAttr("w:val", s.Name)
	if s.BasedOn != "" {
		el.CreateElement("w:basedOn").CreateAttr("w:val", s.BasedOn)
	}
	if s.Next != "" {
		el.CreateElement("w:next").CreateAttr("w:val", s.Next)
	}
	el.CreateElement("w:qFormat")

	if s.Type == StyleTable {
		bdrs := el.CreateElement("w:tblPr").CreateElement("w:tblBorders")
		for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
			b := bdrs.CreateElement("w:" + side)
			b.CreateAttr("w:val", "single")
			b.CreateAttr("w:sz", "4")
			b.CreateAttr("w:space", "0")
			b.CreateAttr("w:color", "auto")
		}
		return el
	}

	if s.Type == StyleParagraph {
		pPr := el.CreateElement("w:pPr")
		if s.KeepNext {
			Prop(pPr, "w:keepNext")
		}
		if s.BottomBorder {
			Border(pPr, "bottom", 6)
		}
		if s.SpaceBefore > 0 || s.SpaceAfter > 0 {
			Spacing(pPr, s.SpaceBefore, s.SpaceAfter)
		}
		if s.IndentLeft > 0 {
			Indent(pPr, s.IndentLeft, 0)
		}
		if s.Compact {
			Prop(pPr, "w:contextualSpacing")
		}
		if s.OutlineLevel > 0 {
			HpsMeasure(pPr, "w:outlineLvl", s.OutlineLevel-1)
		}
		if len(pPr.ChildElements()) == 0 {
			el.RemoveChild(pPr)
		}
	}

	rPr := el.CreateElement("w:rPr")
	if s.Font != "" {
		Font(rPr, s.Font)
	}
	if s.Bold {
		Bold(rPr)
	}
	if s.Italic {
		Italic(rPr)
	}
	if s.Color != "" {
		Color(rPr, s.Color)
	}
	if s.Size > 0 {
		FontSize(rPr, s.Size)
	}
	if s.Shading != "" {
		shd := Prop(rPr, "w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", s.Shading)
	}
	if s.VertAlign != "" {
		SetVal(rPr, "w:vertAlign", s.VertAlign)
	}
	if len(rPr.ChildElements()) == 0 {
		el.RemoveChild(rPr)
	}
	return el
}

// Styles is the styles part. Lookup works by id and by display name.
type Styles struct {
	list   []*Style
	byID   map[string]*Style
	byName map[string]*Style
}

func defaultStyles() []Style {
	const mono = "Consolas"
	list := []Style{
		{ID: "Normal", Name: "Normal", Type: StyleParagraph, SpaceAfter: 120},
		{ID: "DefaultParagraphFont", Name: "Default Paragraph Font", Type: StyleCharacter},
		{ID: "Title", Name: "Title", Type: StyleParagraph, BasedOn: "Normal", Next: "Normal", Size: 56, SpaceAfter: 240, KeepNext: true},
		{ID: "Quote", Name: "Quote", Type: StyleParagraph, BasedOn: "Normal", Next: "Normal", Italic: true, IndentLeft: 720, Color: "404040"},
		{ID: "SourceCode", Name: "Source Code", Type: StyleParagraph, BasedOn: "Normal", Font: mono, Size: 20, Compact: true, Shading: "F2F2F2"},
		{ID: "ListParagraph", Name: "List Paragraph", Type: StyleParagraph, BasedOn: "Normal", IndentLeft: 720, Compact: true},
		{ID: "FootnoteText", Name: "footnote text", Type: StyleParagraph, BasedOn: "Normal", Size: 20},
		{ID: "HorizontalLine", Name: "Horizontal Line", Type: StyleParagraph, BasedOn: "Normal", Next: "Normal", BottomBorder: true},
		{ID: "FootnoteReference", Name: "footnote reference", Type: StyleCharacter, BasedOn: "DefaultParagraphFont", VertAlign: "superscript"},
		{ID: "Hyperlink", Name: "Hyperlink", Type: StyleCharacter, BasedOn: "DefaultParagraphFont", Color: "0563C1"},
		{ID: "CodeChar", Name: "Code Char", Type: StyleCharacter, BasedOn: "DefaultParagraphFont", Font: mono, Shading: "F2F2F2"},
		{ID: "TableGrid", Name: "Table Grid", Type: StyleTable},
	}
	sizes := []int{32, 28, 26, 24, 22, 22}
	for i, sz := range sizes {
		list = append(list, Style{
			ID:           fmt.Sprintf("Heading%d", i+1),
			Name:         fmt.Sprintf("heading %d", i+1),
			Type:         StyleParagraph,
			BasedOn:      "Normal",
			Next:         "Normal",
			Bold:         true,
			Size:         sz,
			KeepNext:     true,
			SpaceBefore:  240,
			OutlineLevel: i + 1,
		})
	}
	return list
}

func newStyles() *Styles {
	s := &Styles{byID: make(map[string]*Style), byName: make(map[string]*Style)}
	for _, st := range defaultStyles() {
		s.Add(st)
	}
	return s
}

// Add registers style replacing any previous style with the same id.
func (s *Styles) Add(st Style) {
	if old, ok := s.byID[st.ID]; ok {
		delete(s.byName, strings.ToLower(old.Name))
		*old = st
		s.byName[strings.ToLower(st.Name)] = old
		return
	}
	p := &st
	s.list = append(s.list, p)
	s.byID[st.ID] = p
	s.byName[strings.ToLower(st.Name)] = p
}

// Lookup finds style by id or case-insensitive display name.
func (s *Styles) Lookup(name string) (*Style, error) {
	if st, ok := s.byID[name]; ok {
		return st, nil
	}
	if st, ok := s.byName[strings.ToLower(name)]; ok {
		return st, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, name)
}

func (s *Styles) Len() int {
	return len(s.list)
}

func (s *Styles) document() *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:styles")
	root.CreateAttr("xmlns:w", NSMain)

	defaults := root.CreateElement("w:docDefaults")
	rPr := defaults.CreateElement("w:rPrDefault").CreateElement("w:rPr")
	Font(rPr, "Calibri")
	FontSize(rPr, 22)
	lang := Prop(rPr, "w:lang")
	lang.CreateAttr("w:val", "en-US")

	for _, st := range s.list {
		root.AddChild(st.element())
	}
	return doc
}
