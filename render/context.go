// Package render keeps track of where rendering currently is in the output
// document: open paragraph and run, active formatting and content
// destination, nested scopes, bookmarks, cross references and footnotes.
//
// Context is driven synchronously by a depth-first walk of the source tree
// and is not safe for concurrent use. One context renders one document.
package render

import (
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"mdocx/config"
	"mdocx/wml"
)

// frame is the part of the context saved and restored by Framed.
type frame[N comparable] struct {
	node    N
	block   BlockFormatProvider
	run     RunFormatProvider
	content ContentContainer
	para    *etree.Element
	host    *etree.Element // receives runs: open paragraph or hyperlink inside it
	r       *etree.Element
}

// Context is the rendering context for source nodes of type N.
type Context[N comparable] struct {
	pkg    *wml.Package
	cfg    *config.DocumentConfig
	log    *zap.Logger
	nodeID func(N) string

	cur    frame[N]
	frames []frame[N]

	extender AttributeExtender[N]
	attrs    Attributes

	ids   registry[N]
	refs  []*reference
	notes footnotes

	unknownStyles map[string]struct{}
	finalized     bool
}

// New creates context rendering into pkg body. nodeID returns optional string
// identifier of a source node and may be nil.
func New[N comparable](pkg *wml.Package, cfg *config.DocumentConfig, nodeID func(N) string, log *zap.Logger) *Context[N] {
	c := &Context[N]{
		pkg:           pkg,
		cfg:           cfg,
		log:           log.Named("render"),
		nodeID:        nodeID,
		ids:           newRegistry[N](cfg.Bookmarks),
		notes:         footnotes{byID: make(map[int64]*Footnote)},
		unknownStyles: make(map[string]struct{}),
	}
	c.cur.content = ElementContainer(pkg.Body(), wml.PartDocument)
	return c
}

// Framed runs action in a nested scope. Node, format providers, content
// container, open paragraph and open run are restored when action returns,
// fails or panics.
func (c *Context[N]) Framed(action func() error) error {
	c.frames = append(c.frames, c.cur)
	defer func() {
		top := len(c.frames) - 1
		c.cur = c.frames[top]
		c.frames[top] = frame[N]{}
		c.frames = c.frames[:top]
	}()
	return action()
}

// Depth returns number of active nested scopes.
func (c *Context[N]) Depth() int {
	return len(c.frames)
}

func (c *Context[N]) Package() *wml.Package {
	return c.pkg
}

func (c *Context[N]) Config() *config.DocumentConfig {
	return c.cfg
}

func (c *Context[N]) Node() N {
	return c.cur.node
}

// SetNode makes node current, it is reported to attribute extender and in
// errors.
func (c *Context[N]) SetNode(node N) {
	c.cur.node = node
}

func (c *Context[N]) BlockFormat() BlockFormatProvider {
	return c.cur.block
}

func (c *Context[N]) SetBlockFormat(p BlockFormatProvider) {
	c.cur.block = p
}

func (c *Context[N]) RunFormat() RunFormatProvider {
	return c.cur.run
}

func (c *Context[N]) SetRunFormat(p RunFormatProvider) {
	c.cur.run = p
}

func (c *Context[N]) ContentContainer() ContentContainer {
	return c.cur.content
}

// part returns package part of active content container.
func (c *Context[N]) part() wml.PartName {
	if c.cur.content == nil {
		return wml.PartDocument
	}
	return c.cur.content.Part()
}

// SetContentContainer switches block destination. Open paragraph and run
// belong to the previous destination and are dropped.
func (c *Context[N]) SetContentContainer(cc ContentContainer) {
	c.cur.content = cc
	c.cur.para, c.cur.host, c.cur.r = nil, nil, nil
}

// SetParaContainer makes p the open paragraph.
func (c *Context[N]) SetParaContainer(p *etree.Element) {
	c.cur.para, c.cur.host, c.cur.r = p, p, nil
}

// SetRunContainer redirects new runs into el (hyperlink, field) inside the
// open paragraph.
func (c *Context[N]) SetRunContainer(el *etree.Element) {
	c.cur.host, c.cur.r = el, nil
}

func (c *Context[N]) RunContainer() *etree.Element {
	return c.cur.host
}

// GetP returns open paragraph or nil.
func (c *Context[N]) GetP() *etree.Element {
	return c.cur.para
}

// GetR returns open run or nil.
func (c *Context[N]) GetR() *etree.Element {
	return c.cur.r
}

// CreateP opens new paragraph in the active content container styled by the
// active block format provider.
func (c *Context[N]) CreateP() (*etree.Element, error) {
	if c.cur.content == nil {
		return nil, c.failf(ErrInvalidState, PartParagraph, "no content container")
	}

	p := c.newParagraph(c.cur.block)
	c.cur.content.Add(p)
	c.cur.para, c.cur.host, c.cur.r = p, p, nil

	if id, ok := c.attrs.Get(AttrID); ok && id != "" {
		c.anchorParagraph(p, id)
	}
	return p, nil
}

// newParagraph builds detached paragraph. Attribute extender results stay in
// c.attrs until next extension call.
func (c *Context[N]) newParagraph(block BlockFormatProvider) *etree.Element {
	p := wml.Paragraph(nil)
	pPr := wml.ParagraphProperties(p)

	style := ""
	if block != nil {
		style = block.StyleID()
		block.ParagraphProperties(pPr)
	}
	attrs := c.extend(PartParagraph, p, Attribute{Name: AttrStyle, Value: style})
	if v, ok := attrs.Get(AttrStyle); ok {
		style = v
	}
	if style != "" {
		c.checkStyle(style)
		wml.SetParagraphStyle(p, style)
	}
	if len(pPr.ChildElements()) == 0 && len(pPr.Attr) == 0 {
		p.RemoveChild(pPr)
	}
	return p
}

// CreateR opens new run in the open paragraph (or active run container)
// formatted by the active run format provider.
func (c *Context[N]) CreateR() (*etree.Element, error) {
	if c.cur.para == nil {
		return nil, c.failf(ErrInvalidState, PartRun, "no open paragraph")
	}
	host := c.cur.host
	if host == nil {
		host = c.cur.para
	}

	r := wml.Run(host)
	rPr := wml.RunProperties(r)
	if c.cur.run != nil {
		c.cur.run.RunProperties(rPr)
	}
	style := ""
	if el := rPr.SelectElement("w:rStyle"); el != nil {
		style = el.SelectAttrValue("w:val", "")
	}
	attrs := c.extend(PartRun, r, Attribute{Name: AttrStyle, Value: style})
	if v, ok := attrs.Get(AttrStyle); ok && v != style {
		if v == "" {
			rPr.RemoveChild(rPr.SelectElement("w:rStyle"))
		} else {
			c.checkStyle(v)
			wml.SetVal(rPr, "w:rStyle", v)
		}
	}
	if len(rPr.ChildElements()) == 0 {
		r.RemoveChild(rPr)
	}
	c.cur.r = r
	return r, nil
}

// RPr returns properties of the open run.
func (c *Context[N]) RPr() (*etree.Element, error) {
	if c.cur.r == nil {
		return nil, c.failf(ErrInvalidState, PartRun, "no open run")
	}
	return wml.RunProperties(c.cur.r), nil
}

// AddBold makes open run bold.
func (c *Context[N]) AddBold() error {
	rPr, err := c.RPr()
	if err != nil {
		return err
	}
	wml.Bold(rPr)
	return nil
}

// SetColor sets color of the open run.
func (c *Context[N]) SetColor(hex string) error {
	rPr, err := c.RPr()
	if err != nil {
		return err
	}
	wml.Color(rPr, hex)
	return nil
}

// SetMeasure sets half point measure of the open run ("w:sz", "w:kern"...).
func (c *Context[N]) SetMeasure(tag string, halfPoints int) error {
	rPr, err := c.RPr()
	if err != nil {
		return err
	}
	wml.HpsMeasure(rPr, tag, halfPoints)
	return nil
}

// Text adds text in a new run. Text is normalized to NFC.
func (c *Context[N]) Text(s string) (*etree.Element, error) {
	r, err := c.CreateR()
	if err != nil {
		return nil, err
	}
	addWrappedText(r, norm.NFC.String(s))
	return r, nil
}

// addWrappedText turns tabs into w:tab, Word ignores them inside w:t.
func addWrappedText(r *etree.Element, s string) {
	for i, chunk := range strings.Split(s, "\t") {
		if i > 0 {
			wml.Tab(r)
		}
		if chunk != "" {
			wml.Text(r, chunk)
		}
	}
}

func (c *Context[N]) addBreak(kind wml.BreakType) error {
	r := c.cur.r
	if r == nil {
		var err error
		if r, err = c.CreateR(); err != nil {
			return err
		}
	}
	wml.Break(r, kind)
	return nil
}

// AddLineBreak adds line break to the open run, opening one if needed.
func (c *Context[N]) AddLineBreak() error {
	return c.addBreak(wml.BreakLine)
}

// AddPageBreak adds page break to the open run, opening one if needed.
func (c *Context[N]) AddPageBreak() error {
	return c.addBreak(wml.BreakPage)
}

// AddBlankLine adds empty paragraph of given style with size twips of space
// after it. Open paragraph stays open.
func (c *Context[N]) AddBlankLine(size int, styleID string) error {
	if c.cur.content == nil {
		return c.failf(ErrInvalidState, PartParagraph, "no content container")
	}
	p := c.newParagraph(BlockStyle(styleID))
	if size > 0 {
		wml.Spacing(wml.ParagraphProperties(p), 0, size)
	}
	c.cur.content.Add(p)
	return nil
}

// AddBlankLines adds count blank lines, see AddBlankLine.
func (c *Context[N]) AddBlankLines(count, size int, styleID string) error {
	for range count {
		if err := c.AddBlankLine(size, styleID); err != nil {
			return err
		}
	}
	return nil
}

// RenderFencedCodeLines adds lines to the open paragraph separated by line
// breaks, each line in its own run.
func (c *Context[N]) RenderFencedCodeLines(lines ...string) error {
	if c.cur.para == nil {
		return c.failf(ErrInvalidState, PartRun, "no open paragraph for code")
	}
	for i, line := range lines {
		r, err := c.CreateR()
		if err != nil {
			return err
		}
		if i > 0 {
			wml.Break(r, wml.BreakLine)
		}
		addWrappedText(r, line)
	}
	return nil
}

// Style looks style up by id or name.
func (c *Context[N]) Style(name string) (*wml.Style, error) {
	st, err := c.pkg.Styles().Lookup(name)
	if err != nil {
		return nil, c.fail(ErrNotFound, "", err)
	}
	return st, nil
}

func (c *Context[N]) checkStyle(id string) {
	if _, err := c.pkg.Styles().Lookup(id); err == nil {
		return
	}
	if _, seen := c.unknownStyles[id]; !seen {
		c.unknownStyles[id] = struct{}{}
		c.log.Warn("Unknown style referenced, Word will use default", zap.String("style", id))
	}
}
