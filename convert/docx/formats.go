package docx

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/russross/blackfriday/v2"

	"mdocx/config"
	"mdocx/render"
	"mdocx/wml"
)

// Indentation steps in twips.
const (
	indentStep  = 720
	hangingStep = 360
)

type headingFormat int

func (h headingFormat) StyleID() string                  { return fmt.Sprintf("Heading%d", int(h)) }
func (h headingFormat) ParagraphProperties(*etree.Element) {}

// quoteFormat indents nested quotes further.
type quoteFormat int

func (q quoteFormat) StyleID() string { return "Quote" }
func (q quoteFormat) ParagraphProperties(pPr *etree.Element) {
	if q > 1 {
		wml.Indent(pPr, indentStep*int(q), 0)
	}
}

// listFormat makes room for item marker with hanging indent.
type listFormat struct {
	level   int
	hanging bool
}

func (l listFormat) StyleID() string { return "ListParagraph" }
func (l listFormat) ParagraphProperties(pPr *etree.Element) {
	hanging := 0
	if l.hanging {
		hanging = hangingStep
	}
	wml.Indent(pPr, indentStep*l.level+hanging, hanging)
}

type cellFormat blackfriday.CellAlignFlags

func (c cellFormat) StyleID() string { return "" }
func (c cellFormat) ParagraphProperties(pPr *etree.Element) {
	switch blackfriday.CellAlignFlags(c) {
	case blackfriday.TableAlignmentLeft:
		wml.Justify(pPr, "left")
	case blackfriday.TableAlignmentRight:
		wml.Justify(pPr, "right")
	case blackfriday.TableAlignmentCenter:
		wml.Justify(pPr, "center")
	}
}

// runFormat accumulates inline formatting of enclosing nodes.
type runFormat struct {
	style  string
	bold   bool
	italic bool
	strike bool
}

func (f runFormat) RunProperties(rPr *etree.Element) {
	if f.style != "" {
		wml.SetVal(rPr, "w:rStyle", f.style)
	}
	if f.bold {
		wml.Bold(rPr)
	}
	if f.italic {
		wml.Italic(rPr)
	}
	if f.strike {
		wml.Strike(rPr)
	}
}

// chain combines run format of enclosing scope with run format of a node.
func chain(outer render.RunFormatProvider, f runFormat) runFormat {
	if o, ok := outer.(runFormat); ok {
		if f.style == "" {
			f.style = o.style
		}
		f.bold = f.bold || o.bold
		f.italic = f.italic || o.italic
		f.strike = f.strike || o.strike
	}
	return f
}

// scope is what formats depend on besides the node itself.
type scope struct {
	quoteDepth int
	listLevel  int
}

// formats is the single mapping from node kind to formatting. Nil provider
// means node keeps formatting of enclosing scope.
func formats(n *blackfriday.Node, sc scope, outer render.RunFormatProvider, cfg *config.DocumentConfig) (render.BlockFormatProvider, render.RunFormatProvider) {
	switch n.Type {
	case blackfriday.Heading:
		return headingFormat(min(max(n.Level, 1), 6)), nil
	case blackfriday.BlockQuote:
		return quoteFormat(sc.quoteDepth + 1), nil
	case blackfriday.Item:
		if n.ListFlags&blackfriday.ListTypeTerm != 0 {
			return listFormat{level: sc.listLevel - 1}, chain(outer, runFormat{bold: true})
		}
		return listFormat{level: sc.listLevel, hanging: n.ListFlags&blackfriday.ListTypeDefinition == 0}, nil
	case blackfriday.CodeBlock:
		return render.BlockStyle(cfg.Code.Style), nil
	case blackfriday.HorizontalRule:
		return render.BlockStyle("HorizontalLine"), nil
	case blackfriday.TableCell:
		if n.IsHeader {
			return cellFormat(n.Align), chain(outer, runFormat{bold: true})
		}
		return cellFormat(n.Align), nil
	case blackfriday.Emph:
		return nil, chain(outer, runFormat{italic: true})
	case blackfriday.Strong:
		return nil, chain(outer, runFormat{bold: true})
	case blackfriday.Del:
		return nil, chain(outer, runFormat{strike: true})
	case blackfriday.Code:
		return nil, chain(outer, runFormat{style: cfg.Code.CharStyle})
	case blackfriday.Link:
		if n.NoteID == 0 {
			return nil, chain(outer, runFormat{style: "Hyperlink"})
		}
	case blackfriday.Image:
		return nil, chain(outer, runFormat{italic: true})
	}
	return nil, nil
}
