package render

import (
	"github.com/beevik/etree"

	"mdocx/wml"
)

// NewFootnote passed to AddFootnote allocates new footnote.
const NewFootnote int64 = 0

// Footnote is an allocated footnote entry.
type Footnote struct {
	ID       int64
	el       *etree.Element
	rendered bool
	refs     int
}

// Element returns w:footnote element holding footnote content.
func (f *Footnote) Element() *etree.Element {
	return f.el
}

// Rendered reports whether footnote content was rendered.
func (f *Footnote) Rendered() bool {
	return f.rendered
}

// References returns number of places footnote is cited from.
func (f *Footnote) References() int {
	return f.refs
}

type footnotes struct {
	part   *wml.Footnotes
	lastID int64
	byID   map[int64]*Footnote
	order  []*Footnote
}

// FootnotesPart returns footnotes storage creating it on first use.
func (c *Context[N]) FootnotesPart() (*wml.Footnotes, error) {
	if c.notes.part != nil {
		return c.notes.part, nil
	}
	part, err := c.pkg.Footnotes()
	if err != nil {
		return nil, c.fail(ErrPackageAssembly, PartFootnote, err)
	}
	c.notes.part = part
	return part, nil
}

// AddFootnote allocates new footnote for NewFootnote id, otherwise returns
// existing footnote with requested id. Ids are allocated independently from
// bookmark ids.
func (c *Context[N]) AddFootnote(id int64) (*Footnote, error) {
	if id != NewFootnote {
		if fn, ok := c.notes.byID[id]; ok {
			return fn, nil
		}
		return nil, c.failf(ErrNotFound, PartFootnote, "footnote %d", id)
	}

	part, err := c.FootnotesPart()
	if err != nil {
		return nil, err
	}
	next := c.notes.lastID + 1
	el, err := part.Add(next)
	if err != nil {
		return nil, c.fail(ErrPackageAssembly, PartFootnote, err)
	}
	c.notes.lastID = next
	c.extend(PartFootnote, el)

	fn := &Footnote{ID: next, el: el}
	c.notes.byID[next] = fn
	c.notes.order = append(c.notes.order, fn)
	return fn, nil
}

// AddFootnoteReference cites footnote from the open paragraph.
func (c *Context[N]) AddFootnoteReference(fn *Footnote) error {
	if fn == nil {
		return c.failf(ErrNotFound, PartFootnote, "nil footnote")
	}
	if c.cur.para == nil {
		return c.failf(ErrInvalidState, PartFootnote, "no open paragraph for footnote %d reference", fn.ID)
	}
	err := c.Framed(func() error {
		c.SetRunFormat(RunStyle(c.cfg.Footnotes.ReferenceStyle))
		r, err := c.CreateR()
		if err != nil {
			return err
		}
		wml.FootnoteReference(r, fn.ID)
		return nil
	})
	if err != nil {
		return err
	}
	// reference run is complete, following text goes into new run
	c.cur.r = nil
	fn.refs++
	return nil
}

// RenderFootnote renders footnote content in a nested scope: fill sees
// footnote as content container and footnote text as block format. Content
// may be rendered only once.
func (c *Context[N]) RenderFootnote(fn *Footnote, fill func() error) error {
	if fn == nil {
		return c.failf(ErrNotFound, PartFootnote, "nil footnote")
	}
	if fn.rendered {
		return c.failf(ErrInvalidState, PartFootnote, "footnote %d content already rendered", fn.ID)
	}
	fn.rendered = true
	return c.Framed(func() error {
		c.SetContentContainer(&footnoteContainer{el: fn.el, refStyle: c.cfg.Footnotes.ReferenceStyle})
		c.SetBlockFormat(BlockStyle(c.cfg.Footnotes.TextStyle))
		c.SetRunFormat(nil)
		return fill()
	})
}

// Footnotes returns allocated footnotes in allocation order.
func (c *Context[N]) Footnotes() []*Footnote {
	return c.notes.order
}
