package content

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"

	"mdocx/utils/debug"
)

// String returns a readable tree of parsed document and its indexes. It
// exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Source %q title %q (%d bytes)", c.SrcName, c.Title, len(c.Source))

	depth := 0
	c.Doc.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering {
			if !isLeaf(n) {
				depth--
			}
			return blackfriday.GoToNext
		}
		tw.Line(depth, "%s", describe(n))
		if len(n.Literal) > 0 {
			tw.TextBlock(depth+1, "literal", string(n.Literal))
		}
		if !isLeaf(n) {
			depth++
		}
		return blackfriday.GoToNext
	})

	debug.Section(tw, 0, "IDIndex", c.IDsIndex, func(depth int, id string, ref IDRef) {
		tw.Line(depth, "ID=%q generated=%v heading level=%d", id, ref.Generated, ref.Node.Level)
	})
	debug.Section(tw, 0, "Footnotes index", c.FootnotesIndex, func(depth int, label string, ref *FootnoteRef) {
		tw.Line(depth, "Reference[%q] citations[%d]", label, ref.Citations)
		if ref.Item != nil {
			tw.TextBlock(depth+1, "text", strings.TrimSpace(PlainText(ref.Item)))
		}
	})
	debug.Section(tw, 0, "ReverseLinkIndex", c.LinksRevIndex, func(depth int, target string, links []*blackfriday.Node) {
		_, known := c.IDsIndex[target]
		tw.Line(depth, "Target=%q (%d links) known=%v", target, len(links), known)
	})
	return tw.String()
}

// isLeaf mirrors blackfriday walker which does not report exit from
// container-less nodes.
func isLeaf(n *blackfriday.Node) bool {
	return !n.IsContainer()
}

func describe(n *blackfriday.Node) string {
	switch n.Type {
	case blackfriday.Heading:
		return fmt.Sprintf("%s level=%d id=%q", n.Type, n.Level, n.HeadingID)
	case blackfriday.List:
		return fmt.Sprintf("%s ordered=%v tight=%v footnotes=%v", n.Type, n.ListFlags&blackfriday.ListTypeOrdered != 0, n.Tight, n.IsFootnotesList)
	case blackfriday.Item:
		if len(n.RefLink) > 0 {
			return fmt.Sprintf("%s footnote=%q", n.Type, n.RefLink)
		}
	case blackfriday.Link:
		if n.NoteID != 0 {
			return fmt.Sprintf("%s footnote=%q note=%d", n.Type, n.Destination, n.NoteID)
		}
		return fmt.Sprintf("%s destination=%q", n.Type, n.Destination)
	case blackfriday.Image:
		return fmt.Sprintf("%s destination=%q", n.Type, n.Destination)
	case blackfriday.CodeBlock:
		return fmt.Sprintf("%s fenced=%v info=%q", n.Type, n.IsFenced, n.Info)
	case blackfriday.TableCell:
		return fmt.Sprintf("%s header=%v", n.Type, n.IsHeader)
	}
	return n.Type.String()
}
