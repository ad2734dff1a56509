package docx

import (
	"context"
	"strconv"
	"strings"

	"github.com/russross/blackfriday/v2"
	"go.uber.org/zap"

	"mdocx/config"
	"mdocx/content"
	"mdocx/render"
	"mdocx/wml"
)

var bullets = []string{"•", "◦", "▪"}

// list is state of a list being rendered.
type list struct {
	ordered    bool
	definition bool
	delimiter  byte
	next       int
}

type generator struct {
	ctx context.Context
	c   *content.Content
	cfg *config.DocumentConfig
	log *zap.Logger
	rc  *render.Context[*blackfriday.Node]

	sc     scope
	lists  []*list
	marker string // list item marker waiting for the first paragraph of item
	notes  map[string]*render.Footnote
}

func nodeID(n *blackfriday.Node) string {
	if n.Type == blackfriday.Heading {
		return n.HeadingID
	}
	return ""
}

// node renders n in its own scope, formats are resolved once on entry.
func (g *generator) node(n *blackfriday.Node) error {
	if isLeaf(n) {
		return g.leaf(n)
	}
	saved := g.sc
	defer func() { g.sc = saved }()

	return g.rc.Framed(func() error {
		g.rc.SetNode(n)
		block, run := formats(n, g.sc, g.rc.RunFormat(), g.cfg)
		if block != nil {
			g.rc.SetBlockFormat(block)
		}
		if run != nil {
			g.rc.SetRunFormat(run)
		}

		switch n.Type {
		case blackfriday.Document:
			return g.blocks(n)
		case blackfriday.Heading:
			return g.heading(n)
		case blackfriday.Paragraph:
			if err := g.paragraph(); err != nil {
				return err
			}
			return g.inlines(n)
		case blackfriday.BlockQuote:
			g.sc.quoteDepth++
			return g.blocks(n)
		case blackfriday.List:
			return g.list(n)
		case blackfriday.Item:
			return g.item(n)
		case blackfriday.Table:
			return g.table(n)
		case blackfriday.TableCell:
			if err := g.paragraph(); err != nil {
				return err
			}
			return g.inlines(n)
		case blackfriday.Emph, blackfriday.Strong, blackfriday.Del:
			return g.inlines(n)
		case blackfriday.Link:
			return g.link(n)
		case blackfriday.Image:
			return g.image(n)
		}
		g.log.Debug("Unsupported node skipped", zap.Stringer("type", n.Type))
		return nil
	})
}

// leaf renders nodes without children, they do not need own scope.
func (g *generator) leaf(n *blackfriday.Node) error {
	switch n.Type {
	case blackfriday.Text:
		if len(n.Literal) == 0 {
			return nil
		}
		_, err := g.rc.Text(string(n.Literal))
		return err
	case blackfriday.Softbreak:
		_, err := g.rc.Text(" ")
		return err
	case blackfriday.Hardbreak:
		return g.rc.AddLineBreak()
	case blackfriday.Code:
		return g.rc.Framed(func() error {
			g.rc.SetNode(n)
			_, run := formats(n, g.sc, g.rc.RunFormat(), g.cfg)
			g.rc.SetRunFormat(run)
			_, err := g.rc.Text(string(n.Literal))
			return err
		})
	case blackfriday.CodeBlock:
		return g.codeBlock(n)
	case blackfriday.HorizontalRule:
		return g.horizontalRule(n)
	case blackfriday.HTMLBlock, blackfriday.HTMLSpan:
		g.log.Debug("Raw HTML skipped", zap.ByteString("html", n.Literal))
		return nil
	}
	g.log.Debug("Unsupported node skipped", zap.Stringer("type", n.Type))
	return nil
}

// blocks renders block children of n. Inline children found where blocks
// are expected (footnote and list items) are put into paragraphs.
func (g *generator) blocks(n *blackfriday.Node) error {
	for ch := n.FirstChild; ch != nil; {
		if err := g.ctx.Err(); err != nil {
			return err
		}
		if !isInline(ch) {
			if err := g.node(ch); err != nil {
				return err
			}
			ch = ch.Next
			continue
		}
		if err := g.paragraph(); err != nil {
			return err
		}
		for ; ch != nil && isInline(ch); ch = ch.Next {
			if err := g.node(ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) inlines(n *blackfriday.Node) error {
	for ch := n.FirstChild; ch != nil; ch = ch.Next {
		if err := g.node(ch); err != nil {
			return err
		}
	}
	return nil
}

// paragraph opens paragraph putting pending list marker first.
func (g *generator) paragraph() error {
	if _, err := g.rc.CreateP(); err != nil {
		return err
	}
	if g.marker == "" {
		return nil
	}
	marker := g.marker
	g.marker = ""
	return g.rc.Framed(func() error {
		g.rc.SetRunFormat(nil)
		_, err := g.rc.Text(marker + "\t")
		return err
	})
}

func (g *generator) heading(n *blackfriday.Node) error {
	name := g.rc.ValidBookmarkName(n.HeadingID)
	if g.rc.HasBookmark(name) {
		// first heading keeps the id and links pointing to it
		g.log.Warn("Duplicate heading id, using anonymous bookmark", zap.String("id", n.HeadingID))
		name = ""
	} else {
		g.rc.RegisterNode(n)
	}
	bm, err := g.rc.CreateBookmarkStart(name, true)
	if err != nil {
		return err
	}
	if err := g.paragraph(); err != nil {
		return err
	}
	if err := g.inlines(n); err != nil {
		return err
	}
	return g.rc.CreateBookmarkEnd(bm, true)
}

func (g *generator) list(n *blackfriday.Node) error {
	if n.IsFootnotesList {
		// rendered where cited
		return nil
	}
	l := &list{
		ordered:    n.ListFlags&blackfriday.ListTypeOrdered != 0,
		definition: n.ListFlags&blackfriday.ListTypeDefinition != 0,
		delimiter:  '.',
		next:       1,
	}
	g.lists = append(g.lists, l)
	defer func() { g.lists = g.lists[:len(g.lists)-1] }()

	g.sc.listLevel++
	return g.blocks(n)
}

func (g *generator) item(n *blackfriday.Node) error {
	if len(g.lists) == 0 {
		return g.blocks(n)
	}
	l := g.lists[len(g.lists)-1]
	switch {
	case l.definition:
		g.marker = ""
	case l.ordered:
		if n.Delimiter != 0 {
			l.delimiter = n.Delimiter
		}
		g.marker = strconv.Itoa(l.next) + string(l.delimiter)
		l.next++
	default:
		g.marker = bullets[(len(g.lists)-1)%len(bullets)]
	}

	if err := g.blocks(n); err != nil {
		return err
	}
	if g.marker != "" {
		// empty item still shows its marker
		return g.paragraph()
	}
	return nil
}

func (g *generator) codeBlock(n *blackfriday.Node) error {
	return g.rc.Framed(func() error {
		g.rc.SetNode(n)
		block, _ := formats(n, g.sc, nil, g.cfg)
		g.rc.SetBlockFormat(block)
		g.rc.SetRunFormat(nil)
		if err := g.paragraph(); err != nil {
			return err
		}
		text := strings.TrimSuffix(strings.ReplaceAll(string(n.Literal), "\r\n", "\n"), "\n")
		return g.rc.RenderFencedCodeLines(strings.Split(text, "\n")...)
	})
}

func (g *generator) horizontalRule(n *blackfriday.Node) error {
	return g.rc.Framed(func() error {
		g.rc.SetNode(n)
		if g.cfg.HorizontalRule == config.HorizontalRuleModePageBreak {
			g.rc.SetBlockFormat(nil)
			if _, err := g.rc.CreateP(); err != nil {
				return err
			}
			return g.rc.AddPageBreak()
		}
		block, _ := formats(n, g.sc, nil, g.cfg)
		g.rc.SetBlockFormat(block)
		_, err := g.rc.CreateP()
		return err
	})
}

func (g *generator) table(n *blackfriday.Node) error {
	var rows []*blackfriday.Node
	for part := n.FirstChild; part != nil; part = part.Next {
		for row := part.FirstChild; row != nil; row = row.Next {
			if row.Type == blackfriday.TableRow {
				rows = append(rows, row)
			}
		}
	}
	cols := 0
	for _, row := range rows {
		count := 0
		for cell := row.FirstChild; cell != nil; cell = cell.Next {
			count++
		}
		cols = max(cols, count)
	}
	if cols == 0 {
		return nil
	}

	tbl, err := g.rc.CreateTable("TableGrid", cols)
	if err != nil {
		return err
	}
	for _, row := range rows {
		tr := wml.TableRow(tbl, row.Parent.Type == blackfriday.TableHead)
		for cell := row.FirstChild; cell != nil; cell = cell.Next {
			err := g.rc.RenderCell(tr, func() error {
				return g.node(cell)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generator) link(n *blackfriday.Node) error {
	if n.NoteID != 0 {
		return g.footnote(n)
	}

	dest := string(n.Destination)
	if dest == "" {
		return g.inlines(n)
	}
	if g.rc.GetP() == nil {
		if err := g.paragraph(); err != nil {
			return err
		}
	}

	var (
		h   = g.rc.GetP()
		err error
	)
	if target, ok := content.InternalTarget(n); ok {
		h, err = g.rc.CreateBookmarkHyperlink(g.rc.ValidBookmarkName(target), "")
	} else {
		h, err = g.rc.CreateHyperlink(dest, "")
	}
	if err != nil {
		return err
	}
	return g.rc.WithinHyperlink(h, func() error {
		return g.inlines(n)
	})
}

// footnote renders footnote citation. First citation of a label allocates
// footnote and renders its content, later ones only refer to it.
func (g *generator) footnote(n *blackfriday.Node) error {
	label := string(n.Destination)
	if fn, ok := g.notes[label]; ok {
		return g.rc.AddFootnoteReference(fn)
	}

	ref, ok := g.c.FootnotesIndex[label]
	if !ok || ref.Item == nil {
		g.log.Warn("Footnote without definition", zap.String("label", label))
		_, err := g.rc.Text("[^" + label + "]")
		return err
	}

	fn, err := g.rc.AddFootnote(render.NewFootnote)
	if err != nil {
		return err
	}
	g.notes[label] = fn
	if err := g.rc.AddFootnoteReference(fn); err != nil {
		return err
	}

	// footnote content is not part of enclosing list or quote
	saved, lists, marker := g.sc, g.lists, g.marker
	g.sc, g.lists, g.marker = scope{}, nil, ""
	defer func() { g.sc, g.lists, g.marker = saved, lists, marker }()

	return g.rc.RenderFootnote(fn, func() error {
		g.rc.SetNode(ref.Item)
		return g.blocks(ref.Item)
	})
}

func (g *generator) image(n *blackfriday.Node) error {
	alt := strings.TrimSpace(content.PlainText(n))
	if alt == "" {
		alt = string(n.Destination)
	}
	g.log.Debug("Image replaced with its description", zap.ByteString("src", n.Destination))
	if g.rc.GetP() == nil {
		if err := g.paragraph(); err != nil {
			return err
		}
	}
	_, err := g.rc.Text("[" + alt + "]")
	return err
}

func isLeaf(n *blackfriday.Node) bool {
	return !n.IsContainer()
}

func isInline(n *blackfriday.Node) bool {
	switch n.Type {
	case blackfriday.Text, blackfriday.Softbreak, blackfriday.Hardbreak, blackfriday.Code,
		blackfriday.HTMLSpan, blackfriday.Emph, blackfriday.Strong, blackfriday.Del,
		blackfriday.Link, blackfriday.Image:
		return true
	}
	return false
}
