package render

import (
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mdocx/config"
)

// Finalize checks that every bookmark was closed and resolves links to
// bookmarks. Dangling links are degraded to plain text or reported according
// to configured policy. All problems are reported together.
func (c *Context[N]) Finalize() error {
	if c.finalized {
		return c.failf(ErrInvalidState, "", "rendering already finalized")
	}
	c.finalized = true

	var errs error

	open := make([]*Bookmark, 0, len(c.ids.open))
	for _, bm := range c.ids.open {
		open = append(open, bm)
	}
	slices.SortFunc(open, func(a, b *Bookmark) int { return a.ID - b.ID })
	for _, bm := range open {
		errs = multierr.Append(errs, &Error{
			Kind:   ErrUnmatchedBookmark,
			NodeID: bm.SourceID,
			Part:   PartBookmark,
			Depth:  len(c.frames),
			Err:    fmt.Errorf("bookmark %q (%d) was never closed", bm.Name, bm.ID),
		})
	}

	for _, ref := range c.refs {
		if _, ok := c.ids.bookmarks[ref.name]; ok {
			continue
		}
		fields := []zap.Field{zap.String("bookmark", ref.name), zap.String("node", ref.nodeID), zap.String("part", string(ref.part))}
		if c.cfg.Links.Suggest {
			if s := c.suggest(ref.name); s != "" {
				fields = append(fields, zap.String("suggestion", s))
			}
		}

		switch c.cfg.Links.Dangling {
		case config.DanglingLinkPolicyFail:
			c.log.Error("Link to missing bookmark", fields...)
			errs = multierr.Append(errs, &Error{
				Kind:   ErrNotFound,
				NodeID: ref.nodeID,
				Part:   PartHyperlink,
				Depth:  len(c.frames),
				Err:    fmt.Errorf("bookmark %q", ref.name),
			})
		default:
			c.log.Warn("Link to missing bookmark replaced with text", fields...)
			unwrapLink(ref.link)
		}
	}

	for _, fn := range c.notes.order {
		if fn.refs == 0 {
			c.log.Debug("Footnote is never referenced", zap.Int64("id", fn.ID))
		}
	}
	return errs
}

// suggest finds known bookmark closest to name.
func (c *Context[N]) suggest(name string) string {
	best, bestDist := "", len(name)/3+2
	for known := range c.ids.bookmarks {
		if d := levenshtein.ComputeDistance(name, known); d < bestDist || d == bestDist && known < best {
			best, bestDist = known, d
		}
	}
	return best
}

// unwrapLink replaces hyperlink with its runs, hyperlink character style is
// dropped.
func unwrapLink(h *etree.Element) {
	parent := h.Parent()
	if parent == nil {
		return
	}
	pos := h.Index()
	for _, r := range h.ChildElements() {
		if st := r.FindElement("w:rPr/w:rStyle"); st != nil && st.SelectAttrValue("w:val", "") == hyperlinkStyle {
			rPr := st.Parent()
			rPr.RemoveChild(st)
			if len(rPr.ChildElements()) == 0 {
				r.RemoveChild(rPr)
			}
		}
		parent.InsertChildAt(pos, r)
		pos++
	}
	parent.RemoveChild(h)
}
