package render

import (
	"github.com/beevik/etree"

	"mdocx/wml"
)

// CreateTable adds table with cols equal columns to the active content
// container. Open paragraph is closed, following text needs new paragraph.
func (c *Context[N]) CreateTable(styleID string, cols int) (*etree.Element, error) {
	if c.cur.content == nil {
		return nil, c.failf(ErrInvalidState, PartTable, "no content container")
	}
	if cols <= 0 {
		return nil, c.failf(ErrInvalidState, PartTable, "table without columns")
	}

	tbl := wml.Table(nil, styleID, cols)
	tblPr := tbl.SelectElement("w:tblPr")
	attrs := c.extend(PartTable, tbl, Attribute{Name: AttrStyle, Value: styleID})
	if v, ok := attrs.Get(AttrStyle); ok {
		styleID = v
	}
	if styleID == "" {
		tblPr.RemoveChild(tblPr.SelectElement("w:tblStyle"))
	} else {
		c.checkStyle(styleID)
		wml.SetVal(tblPr, "w:tblStyle", styleID)
	}

	c.cur.content.Add(tbl)
	c.cur.para, c.cur.host, c.cur.r = nil, nil, nil
	return tbl, nil
}

// RenderCell adds cell to table row tr and runs fill in nested scope with the
// cell as content container. Cell gets empty paragraph when fill adds none.
func (c *Context[N]) RenderCell(tr *etree.Element, fill func() error) error {
	if tr == nil || tr.FullTag() != "w:tr" {
		return c.failf(ErrInvalidState, PartCell, "not a table row")
	}
	tc := wml.TableCell(tr)
	c.extend(PartCell, tc)

	part := c.part()
	err := c.Framed(func() error {
		c.SetContentContainer(ElementContainer(tc, part))
		return fill()
	})
	wml.EnsureParagraph(tc)
	return err
}
