package render

import (
	"github.com/beevik/etree"

	"mdocx/wml"
)

// ContentContainer receives block level elements: paragraphs, tables and
// bookmarks placed between paragraphs.
type ContentContainer interface {
	Add(el *etree.Element)
	Part() wml.PartName
}

type elementContainer struct {
	el   *etree.Element
	part wml.PartName
}

// ElementContainer appends to el, which belongs to the given package part.
func ElementContainer(el *etree.Element, part wml.PartName) ContentContainer {
	return &elementContainer{el: el, part: part}
}

func (c *elementContainer) Add(el *etree.Element) { c.el.AddChild(el) }
func (c *elementContainer) Part() wml.PartName { return c.part }

// footnoteContainer puts footnote reference mark at the start of the first
// paragraph added.
type footnoteContainer struct {
	el       *etree.Element
	refStyle string
	marked   bool
}

func (c *footnoteContainer) Part() wml.PartName { return wml.PartFootnotes }

func (c *footnoteContainer) Add(el *etree.Element) {
	c.el.AddChild(el)
	if c.marked || el.FullTag() != "w:p" {
		return
	}
	c.marked = true

	pos := 0
	if pPr := el.SelectElement("w:pPr"); pPr != nil {
		pos = pPr.Index() + 1
	}
	mark := wml.Run(nil)
	wml.SetRunStyle(mark, c.refStyle)
	wml.FootnoteRef(mark)
	space := wml.Run(nil)
	wml.Text(space, " ")
	el.InsertChildAt(pos, mark)
	el.InsertChildAt(pos+1, space)
}
