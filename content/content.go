// Package content reads markdown source and prepares it for conversion:
// decoding, parsing and indexing of identifiers, links and footnotes.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/shurcooL/sanitized_anchor_name"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"mdocx/state"
)

// Extensions are markdown extensions source is parsed with.
const Extensions = blackfriday.CommonExtensions | blackfriday.Footnotes

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IDRef is an indexed identifier target.
type IDRef struct {
	Node      *blackfriday.Node
	Generated bool
}

type IDIndex map[string]IDRef

// FootnoteRef describes footnote cited in the text. Item is the footnotes
// list entry holding footnote content.
type FootnoteRef struct {
	Label     string
	Item      *blackfriday.Node
	Citations int
}

type FootnoteIndex map[string]*FootnoteRef

// ReverseLinkIndex maps internal link target to links pointing to it.
type ReverseLinkIndex map[string][]*blackfriday.Node

// Content is parsed markdown document with indexes renderer relies on.
type Content struct {
	SrcName string
	Source  []byte
	Doc     *blackfriday.Node
	Title   string

	IDsIndex       IDIndex
	FootnotesIndex FootnoteIndex
	LinksRevIndex  ReverseLinkIndex
}

// Prepare reads, decodes and parses markdown source.
func Prepare(ctx context.Context, r io.Reader, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	data, err := readSource(env, r, log)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	c := &Content{
		SrcName:        srcName,
		Source:         data,
		IDsIndex:       make(IDIndex),
		FootnotesIndex: make(FootnoteIndex),
		LinksRevIndex:  make(ReverseLinkIndex),
	}

	// normalize line endings, blackfriday only handles \n reliably
	src := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	c.Doc = blackfriday.New(blackfriday.WithExtensions(Extensions)).Parse(src)

	c.indexHeadings(log)
	c.indexFootnotes(c.indexLinks(log), log)
	c.Title = c.findTitle()

	log.Debug("Markdown prepared",
		zap.String("title", c.Title),
		zap.Int("ids", len(c.IDsIndex)),
		zap.Int("footnotes", len(c.FootnotesIndex)),
		zap.Int("link targets", len(c.LinksRevIndex)))

	if env.Rpt != nil {
		base := filepath.Base(srcName)
		env.Rpt.StoreData(base, data)
		env.Rpt.StoreData(base+"_prepared", []byte(c.String()))
	}
	return c, nil
}

// readSource reads source converting it to UTF-8. Without configured charset
// encoding is guessed from BOM, valid UTF-8 is taken as is.
func readSource(env *state.LocalEnv, r io.Reader, log *zap.Logger) ([]byte, error) {
	var in io.Reader
	switch {
	case env.CodePage != nil:
		in = env.CodePage.NewDecoder().Reader(r)
	case env.Cfg != nil && env.Cfg.Document.InputCharset != "":
		var err error
		if in, err = charset.NewReaderLabel(env.Cfg.Document.InputCharset, r); err != nil {
			return nil, fmt.Errorf("unable to decode markdown: %w", err)
		}
	}
	if in != nil {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("unable to read markdown: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read markdown: %w", err)
	}
	enc, name, certain := charset.DetermineEncoding(data, "text/markdown")
	if enc == encoding.Nop || !certain && !hasHighBit(data) {
		return data, nil
	}
	log.Debug("Source encoding detected", zap.String("charset", name), zap.Bool("certain", certain))
	if data, err = enc.NewDecoder().Bytes(data); err != nil {
		return nil, fmt.Errorf("unable to decode markdown as %s: %w", name, err)
	}
	return data, nil
}

func hasHighBit(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return true
		}
	}
	return false
}

// indexHeadings collects explicit heading ids and generates missing ones
// from heading text. Generated ids never clash with explicit ones.
func (c *Content) indexHeadings(log *zap.Logger) {
	var generate []*blackfriday.Node
	c.Doc.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering || n.Type != blackfriday.Heading {
			return blackfriday.GoToNext
		}
		if n.HeadingID == "" {
			generate = append(generate, n)
			return blackfriday.SkipChildren
		}
		if _, exists := c.IDsIndex[n.HeadingID]; exists {
			log.Warn("Duplicate heading id, first one wins", zap.String("id", n.HeadingID))
			return blackfriday.SkipChildren
		}
		c.IDsIndex[n.HeadingID] = IDRef{Node: n}
		return blackfriday.SkipChildren
	})

	for _, n := range generate {
		base := sanitized_anchor_name.Create(PlainText(n))
		if base == "" {
			base = "section"
		}
		id := base
		for i := 1; ; i++ {
			if _, exists := c.IDsIndex[id]; !exists {
				break
			}
			id = base + "-" + strconv.Itoa(i)
		}
		n.HeadingID = id
		c.IDsIndex[id] = IDRef{Node: n, Generated: true}
	}
}

// indexLinks builds internal link index and counts footnote citations by
// label.
func (c *Content) indexLinks(log *zap.Logger) map[string]int {
	citations := make(map[string]int)
	c.Doc.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering || n.Type != blackfriday.Link {
			return blackfriday.GoToNext
		}
		if n.NoteID != 0 {
			citations[string(n.Destination)]++
			return blackfriday.GoToNext
		}
		if target, ok := InternalTarget(n); ok {
			c.LinksRevIndex[target] = append(c.LinksRevIndex[target], n)
		}
		return blackfriday.GoToNext
	})

	for target, links := range c.LinksRevIndex {
		if _, ok := c.IDsIndex[target]; !ok {
			log.Warn("Link to unknown id", zap.String("id", target), zap.Int("links", len(links)))
		}
	}
	return citations
}

// indexFootnotes builds footnote index from footnotes list. Blackfriday parses
// definition of a footnote cited k times k times into the same list item and
// leaves items of earlier citations detached, so links must not be followed
// to their items and extra copies of content are dropped.
func (c *Content) indexFootnotes(citations map[string]int, log *zap.Logger) {
	list := FootnotesList(c.Doc)
	if list == nil {
		return
	}
	for item := list.FirstChild; item != nil; item = item.Next {
		label := string(item.RefLink)
		if _, dup := c.FootnotesIndex[label]; dup {
			log.Warn("Duplicate footnote definition ignored", zap.String("label", label))
			continue
		}
		ref := &FootnoteRef{Label: label, Item: item, Citations: citations[label]}
		if ref.Citations > 1 {
			dropCopies(item, ref.Citations, log)
		}
		c.FootnotesIndex[label] = ref
	}
}

func dropCopies(item *blackfriday.Node, copies int, log *zap.Logger) {
	var children []*blackfriday.Node
	for ch := item.FirstChild; ch != nil; ch = ch.Next {
		children = append(children, ch)
	}
	if len(children)%copies != 0 {
		log.Warn("Unexpected footnote content, leaving as is",
			zap.ByteString("label", item.RefLink), zap.Int("nodes", len(children)), zap.Int("citations", copies))
		return
	}
	for _, ch := range children[len(children)/copies:] {
		ch.Unlink()
	}
}

// FootnotesList returns list holding footnote definitions or nil.
func FootnotesList(doc *blackfriday.Node) *blackfriday.Node {
	for n := doc.LastChild; n != nil; n = n.Prev {
		if n.Type == blackfriday.List && n.IsFootnotesList {
			return n
		}
	}
	return nil
}

// findTitle returns text of the first level 1 heading or source file name.
func (c *Content) findTitle() string {
	var title string
	c.Doc.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if entering && n.Type == blackfriday.Heading && n.Level == 1 {
			title = strings.TrimSpace(PlainText(n))
			return blackfriday.Terminate
		}
		return blackfriday.GoToNext
	})
	if title == "" {
		base := filepath.Base(c.SrcName)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return title
}

// InternalTarget returns id link points to when it is a link inside the
// document.
func InternalTarget(n *blackfriday.Node) (string, bool) {
	if n.Type != blackfriday.Link || n.NoteID != 0 {
		return "", false
	}
	dest := string(n.Destination)
	if !strings.HasPrefix(dest, "#") || len(dest) == 1 {
		return "", false
	}
	return dest[1:], true
}

// PlainText returns concatenated text of inline content under n.
func PlainText(n *blackfriday.Node) string {
	var b strings.Builder
	n.Walk(func(n *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		if !entering {
			return blackfriday.GoToNext
		}
		switch n.Type {
		case blackfriday.Text, blackfriday.Code:
			b.Write(n.Literal)
		case blackfriday.Softbreak, blackfriday.Hardbreak:
			b.WriteByte(' ')
		}
		return blackfriday.GoToNext
	})
	return b.String()
}
