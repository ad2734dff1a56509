package render

import (
	"strings"

	"mdocx/utils/debug"
	"mdocx/wml"
)

// String returns readable dump of context registries. It exists solely for
// debug reports.
func (c *Context[N]) String() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "Render context: depth=%d finalized=%v", len(c.frames), c.finalized)
	if c.cur.para != nil {
		tw.Line(1, "Open paragraph style=%q", wml.ParagraphStyle(c.cur.para))
	}

	debug.Section(tw, 0, "Source ids", c.ids.names, func(depth int, id, name string) {
		tw.Line(depth, "%q -> %s", id, name)
	})

	debug.Section(tw, 0, "Bookmarks", c.ids.bookmarks, func(depth int, _ string, bm *Bookmark) {
		tw.Line(depth, "%s", bm)
	})

	if len(c.refs) > 0 {
		tw.Line(0, "References (%d)", len(c.refs))
		for _, ref := range c.refs {
			_, ok := c.ids.bookmarks[ref.name]
			tw.Line(1, "-> %s resolved=%v node=%q part=%s", ref.name, ok, ref.nodeID, ref.part)
		}
	}

	if len(c.notes.order) > 0 {
		tw.Line(0, "Footnotes (%d)", len(c.notes.order))
		for _, fn := range c.notes.order {
			tw.Line(1, "#%d refs=%d rendered=%v", fn.ID, fn.refs, fn.rendered)
			var text strings.Builder
			for _, t := range fn.el.FindElements(".//w:t") {
				text.WriteString(t.Text())
			}
			tw.TextBlock(2, "text", text.String())
		}
	}
	return tw.String()
}
