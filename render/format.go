package render

import (
	"github.com/beevik/etree"

	"mdocx/wml"
)

// BlockFormatProvider decides how paragraphs created for a node look.
type BlockFormatProvider interface {
	StyleID() string
	ParagraphProperties(pPr *etree.Element)
}

// RunFormatProvider decides how runs created for a node look.
type RunFormatProvider interface {
	RunProperties(rPr *etree.Element)
}

// BlockStyle is a block provider applying paragraph style only.
type BlockStyle string

func (s BlockStyle) StyleID() string { return string(s) }
func (s BlockStyle) ParagraphProperties(*etree.Element) {}

// RunStyle is a run provider applying character style only.
type RunStyle string

func (s RunStyle) RunProperties(rPr *etree.Element) {
	if s != "" {
		wml.SetVal(rPr, "w:rStyle", string(s))
	}
}
