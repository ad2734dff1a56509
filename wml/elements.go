package wml

import (
	"slices"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Schema order of paragraph and run property children. Word refuses
// documents where properties are out of sequence.
var (
	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr", "widowControl",
		"numPr", "suppressLineNumbers", "pBdr", "shd", "tabs", "suppressAutoHyphens",
		"kinsoku", "wordWrap", "overflowPunct", "topLinePunct", "autoSpaceDE", "autoSpaceDN",
		"bidi", "adjustRightInd", "snapToGrid", "spacing", "ind", "contextualSpacing",
		"mirrorIndents", "suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr", "pPrChange",
	}
	rPrOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike", "dstrike",
		"outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid", "vanish", "webHidden",
		"color", "spacing", "w", "kern", "position", "sz", "szCs", "highlight", "u", "effect",
		"bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang", "eastAsianLayout",
		"specVanish", "oMath",
	}
)

// BreakType selects kind of w:br.
type BreakType int

const (
	BreakLine BreakType = iota
	BreakPage
	BreakColumn
)

func child(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return etree.NewElement(tag)
	}
	return parent.CreateElement(tag)
}

// firstChild returns existing child element with tag or inserts a new one as
// the very first child.
func firstChild(parent *etree.Element, tag string) *etree.Element {
	if el := parent.SelectElement(tag); el != nil {
		return el
	}
	el := etree.NewElement(tag)
	parent.InsertChildAt(0, el)
	return el
}

// Prop returns property element (e.g. "w:b" inside w:rPr), creating it in
// schema position when absent.
func Prop(props *etree.Element, tag string) *etree.Element {
	if el := props.SelectElement(tag); el != nil {
		return el
	}
	order := rPrOrder
	if props.Tag == "pPr" {
		order = pPrOrder
	}
	_, local, _ := strings.Cut(tag, ":")
	rank := slices.Index(order, local)

	el := etree.NewElement(tag)
	if rank < 0 {
		props.AddChild(el)
		return el
	}
	for _, ch := range props.ChildElements() {
		if slices.Index(order, ch.Tag) > rank {
			props.InsertChildAt(ch.Index(), el)
			return el
		}
	}
	props.AddChild(el)
	return el
}

// SetVal sets w:val on property element, creating it if necessary.
func SetVal(props *etree.Element, tag, val string) *etree.Element {
	el := Prop(props, tag)
	el.CreateAttr("w:val", val)
	return el
}

func Paragraph(parent *etree.Element) *etree.Element {
	return child(parent, "w:p")
}

// ParagraphProperties returns w:pPr of the paragraph, creating it as the
// first child.
func ParagraphProperties(p *etree.Element) *etree.Element {
	return firstChild(p, "w:pPr")
}

func Run(parent *etree.Element) *etree.Element {
	return child(parent, "w:r")
}

// RunProperties returns w:rPr of the run, creating it as the first child.
func RunProperties(r *etree.Element) *etree.Element {
	return firstChild(r, "w:rPr")
}

func SetParagraphStyle(p *etree.Element, styleID string) {
	SetVal(ParagraphProperties(p), "w:pStyle", styleID)
}

func SetRunStyle(r *etree.Element, styleID string) {
	SetVal(RunProperties(r), "w:rStyle", styleID)
}

// ParagraphStyle returns style id of the paragraph or empty string.
func ParagraphStyle(p *etree.Element) string {
	if el := p.FindElement("w:pPr/w:pStyle"); el != nil {
		return el.SelectAttrValue("w:val", "")
	}
	return ""
}

// Text appends w:t, preserving spaces when the text has them at the edges.
func Text(r *etree.Element, s string) *etree.Element {
	t := r.CreateElement("w:t")
	if strings.TrimSpace(s) != s {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(s)
	return t
}

func Tab(r *etree.Element) *etree.Element {
	return r.CreateElement("w:tab")
}

func Break(r *etree.Element, kind BreakType) *etree.Element {
	br := r.CreateElement("w:br")
	switch kind {
	case BreakPage:
		br.CreateAttr("w:type", "page")
	case BreakColumn:
		br.CreateAttr("w:type", "column")
	}
	return br
}

func BookmarkStart(parent *etree.Element, id int, name string) *etree.Element {
	el := child(parent, "w:bookmarkStart")
	el.CreateAttr("w:id", strconv.Itoa(id))
	el.CreateAttr("w:name", name)
	return el
}

func BookmarkEnd(parent *etree.Element, id int) *etree.Element {
	el := child(parent, "w:bookmarkEnd")
	el.CreateAttr("w:id", strconv.Itoa(id))
	return el
}

// AnchorHyperlink creates link to a bookmark in the same document.
func AnchorHyperlink(parent *etree.Element, anchor string) *etree.Element {
	h := child(parent, "w:hyperlink")
	h.CreateAttr("w:anchor", anchor)
	h.CreateAttr("w:history", "1")
	return h
}

// RelHyperlink creates link to external target through relationship id.
func RelHyperlink(parent *etree.Element, rid string) *etree.Element {
	h := child(parent, "w:hyperlink")
	h.CreateAttr("r:id", rid)
	h.CreateAttr("w:history", "1")
	return h
}

func FootnoteReference(r *etree.Element, id int64) *etree.Element {
	el := r.CreateElement("w:footnoteReference")
	el.CreateAttr("w:id", strconv.FormatInt(id, 10))
	return el
}

// FootnoteRef is the auto-numbered mark at the start of footnote text.
func FootnoteRef(r *etree.Element) *etree.Element {
	return r.CreateElement("w:footnoteRef")
}

// Color sets run color, hex without leading '#'.
func Color(rPr *etree.Element, hex string) *etree.Element {
	return SetVal(rPr, "w:color", strings.TrimPrefix(strings.ToUpper(hex), "#"))
}

// HpsMeasure sets half-point measure (w:sz, w:szCs, w:kern...).
func HpsMeasure(props *etree.Element, tag string, halfPoints int) *etree.Element {
	return SetVal(props, tag, strconv.Itoa(halfPoints))
}

// FontSize sets both w:sz and w:szCs in half points.
func FontSize(rPr *etree.Element, halfPoints int) {
	HpsMeasure(rPr, "w:sz", halfPoints)
	HpsMeasure(rPr, "w:szCs", halfPoints)
}

func Bold(rPr *etree.Element) *etree.Element {
	return Prop(rPr, "w:b")
}

func Italic(rPr *etree.Element) *etree.Element {
	return Prop(rPr, "w:i")
}

func Strike(rPr *etree.Element) *etree.Element {
	return Prop(rPr, "w:strike")
}

func Font(rPr *etree.Element, name string) *etree.Element {
	f := Prop(rPr, "w:rFonts")
	f.CreateAttr("w:ascii", name)
	f.CreateAttr("w:hAnsi", name)
	f.CreateAttr("w:cs", name)
	return f
}

// Border adds single line border on given side ("top", "bottom", "left", "right").
func Border(pPr *etree.Element, side string, eighths int) *etree.Element {
	bdr := Prop(pPr, "w:pBdr").CreateElement("w:" + side)
	bdr.CreateAttr("w:val", "single")
	bdr.CreateAttr("w:sz", strconv.Itoa(eighths))
	bdr.CreateAttr("w:space", "1")
	bdr.CreateAttr("w:color", "auto")
	return bdr
}

// Indent sets left indentation and hanging first line in twips.
func Indent(pPr *etree.Element, left, hanging int) *etree.Element {
	ind := Prop(pPr, "w:ind")
	ind.CreateAttr("w:left", strconv.Itoa(left))
	if hanging > 0 {
		ind.CreateAttr("w:hanging", strconv.Itoa(hanging))
	}
	return ind
}

// Spacing sets paragraph spacing before and after in twips, negative values
// are left unset.
func Spacing(pPr *etree.Element, before, after int) *etree.Element {
	sp := Prop(pPr, "w:spacing")
	if before >= 0 {
		sp.CreateAttr("w:before", strconv.Itoa(before))
	}
	if after >= 0 {
		sp.CreateAttr("w:after", strconv.Itoa(after))
	}
	return sp
}

func Justify(pPr *etree.Element, val string) *etree.Element {
	return SetVal(pPr, "w:jc", val)
}

// Table creates w:tbl with grid of equal columns spanning full text width.
func Table(parent *etree.Element, styleID string, cols int) *etree.Element {
	tbl := child(parent, "w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	tblPr.CreateElement("w:tblStyle").CreateAttr("w:val", styleID)
	w := tblPr.CreateElement("w:tblW")
	w.CreateAttr("w:w", "5000")
	w.CreateAttr("w:type", "pct")
	grid := tbl.CreateElement("w:tblGrid")
	if cols > 0 {
		width := strconv.Itoa(textWidth / cols)
		for range cols {
			grid.CreateElement("w:gridCol").CreateAttr("w:w", width)
		}
	}
	return tbl
}

// TableRow appends w:tr, header rows repeat on every page.
func TableRow(tbl *etree.Element, header bool) *etree.Element {
	tr := tbl.CreateElement("w:tr")
	if header {
		tr.CreateElement("w:trPr").CreateElement("w:tblHeader")
	}
	return tr
}

func TableCell(tr *etree.Element) *etree.Element {
	tc := tr.CreateElement("w:tc")
	w := tc.CreateElement("w:tcPr").CreateElement("w:tcW")
	w.CreateAttr("w:w", "0")
	w.CreateAttr("w:type", "auto")
	return tc
}

// EnsureParagraph adds an empty paragraph to container which must end with
// one (table cells, footnotes) but has none.
func EnsureParagraph(container *etree.Element) {
	if container.SelectElement("w:p") == nil {
		Paragraph(container)
	}
}
