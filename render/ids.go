package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"mdocx/config"
	"mdocx/wml"
)

const (
	// Word does not accept longer bookmark names
	maxBookmarkLength = 40
	defaultPrefix     = "BM_"
	// room left after prefix for distinguishing suffixes
	minBookmarkTail = 8
)

// Bookmark is a named anchor in the document.
type Bookmark struct {
	ID       int
	Name     string
	SourceID string
	Block    bool
	closed   bool
}

// registry owns bookmark ids and mapping between source ids and bookmark
// names.
type registry[N comparable] struct {
	maxLen int
	prefix string

	lastID    int
	names     map[string]string // source id -> bookmark name
	taken     map[string]string // bookmark name -> source id
	nodes     map[string]N
	bookmarks map[string]*Bookmark // created bookmarks by name
	open      map[int]*Bookmark
	order     []*Bookmark
}

func newRegistry[N comparable](cfg config.BookmarksConfig) registry[N] {
	r := registry[N]{
		maxLen:    cfg.MaxLength,
		prefix:    cfg.Prefix,
		names:     make(map[string]string),
		taken:     make(map[string]string),
		nodes:     make(map[string]N),
		bookmarks: make(map[string]*Bookmark),
		open:      make(map[int]*Bookmark),
	}
	if r.maxLen <= 0 || r.maxLen > maxBookmarkLength {
		r.maxLen = maxBookmarkLength
	}
	if p := strings.ReplaceAll(r.prefix, "-", "_"); p == "" || !isASCIILetter(rune(p[0])) || !validName(p) {
		r.prefix = defaultPrefix
	} else {
		r.prefix = truncate(p, maxBookmarkLength-minBookmarkTail)
	}
	r.maxLen = max(r.maxLen, len(r.prefix)+minBookmarkTail)
	return r
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

func validName(s string) bool {
	for _, r := range s {
		if r >= unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

func (r *registry[N]) normalize(sourceID string) string {
	name := strings.ReplaceAll(slug.Make(sourceID), "-", "_")
	if name == "" || !isASCIILetter(rune(name[0])) {
		name = r.prefix + name
	}
	return truncate(name, r.maxLen)
}

func truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// NextBookmarkID returns next bookmark id, ids are strictly increasing within
// a document.
func (c *Context[N]) NextBookmarkID() int {
	c.ids.lastID++
	return c.ids.lastID
}

// ValidBookmarkName derives legal bookmark name from source identifier. Same
// identifier always gets the same name, different identifiers always get
// different names.
func (c *Context[N]) ValidBookmarkName(sourceID string) string {
	r := &c.ids
	if name, ok := r.names[sourceID]; ok {
		return name
	}
	name := r.unique(r.normalize(sourceID))
	r.names[sourceID] = name
	r.taken[name] = sourceID
	return name
}

// unique returns base or, when it is already handed out, base with numeric
// suffix that is not.
func (r *registry[N]) unique(base string) string {
	name := base
	for n := 1; ; n++ {
		if _, busy := r.taken[name]; !busy {
			return name
		}
		suffix := "_" + strconv.Itoa(n)
		name = truncate(base, r.maxLen-len(suffix)) + suffix
	}
}

// HasBookmark reports whether bookmark with name was already created.
func (c *Context[N]) HasBookmark(name string) bool {
	_, ok := c.ids.bookmarks[name]
	return ok
}

// NodeID returns string identifier of the node or empty string.
func (c *Context[N]) NodeID(node N) string {
	var zero N
	if c.nodeID == nil || node == zero {
		return ""
	}
	return c.nodeID(node)
}

// RegisterNode makes node reachable by its identifier.
func (c *Context[N]) RegisterNode(node N) {
	if id := c.NodeID(node); id != "" {
		c.ids.nodes[id] = node
	}
}

func (c *Context[N]) NodeFromID(id string) (N, error) {
	if node, ok := c.ids.nodes[id]; ok {
		return node, nil
	}
	var zero N
	return zero, c.failf(ErrNotFound, "", "node %q", id)
}

// CreateBookmarkStart opens bookmark. Block bookmarks are placed into content
// container between paragraphs, others into the open paragraph. Empty name
// produces anonymous bookmark with a name nobody else uses. Names are unique
// within the document, second bookmark with the same name is rejected.
func (c *Context[N]) CreateBookmarkStart(name string, block bool) (*Bookmark, error) {
	var parent *etree.Element
	if !block {
		if c.cur.para == nil {
			return nil, c.failf(ErrInvalidState, PartBookmark, "no open paragraph for bookmark %q", name)
		}
		parent = c.cur.para
	} else if c.cur.content == nil {
		return nil, c.failf(ErrInvalidState, PartBookmark, "no content container for bookmark %q", name)
	}

	if name != "" && c.HasBookmark(name) {
		return nil, c.failf(ErrInvalidState, PartBookmark, "duplicate bookmark name %q", name)
	}

	id := c.NextBookmarkID()
	if name == "" {
		name = c.ids.unique(c.ids.prefix + strconv.Itoa(id))
	}
	if _, known := c.ids.taken[name]; !known {
		// keep derived names away from explicitly named bookmarks
		c.ids.taken[name] = ""
	}

	el := wml.BookmarkStart(parent, id, name)
	c.extend(PartBookmark, el, Attribute{Name: AttrName, Value: name})
	if block {
		c.cur.content.Add(el)
	}

	bm := &Bookmark{ID: id, Name: name, SourceID: c.ids.taken[name], Block: block}
	c.ids.bookmarks[name] = bm
	c.ids.open[id] = bm
	c.ids.order = append(c.ids.order, bm)
	return bm, nil
}

// CreateBookmarkEnd closes bookmark opened by CreateBookmarkStart.
func (c *Context[N]) CreateBookmarkEnd(bm *Bookmark, block bool) error {
	if bm == nil {
		return c.failf(ErrUnmatchedBookmark, PartBookmark, "end of nil bookmark")
	}
	if _, ok := c.ids.open[bm.ID]; !ok {
		return c.failf(ErrUnmatchedBookmark, PartBookmark, "bookmark %q (%d) is not open", bm.Name, bm.ID)
	}
	if block {
		if c.cur.content == nil {
			return c.failf(ErrInvalidState, PartBookmark, "no content container for bookmark %q", bm.Name)
		}
		c.cur.content.Add(wml.BookmarkEnd(nil, bm.ID))
	} else {
		if c.cur.para == nil {
			return c.failf(ErrInvalidState, PartBookmark, "no open paragraph for bookmark %q", bm.Name)
		}
		wml.BookmarkEnd(c.cur.para, bm.ID)
	}
	bm.closed = true
	delete(c.ids.open, bm.ID)
	return nil
}

// anchorParagraph puts collapsed bookmark at the start of p.
func (c *Context[N]) anchorParagraph(p *etree.Element, sourceID string) {
	name := c.ValidBookmarkName(sourceID)
	if c.HasBookmark(name) {
		c.log.Warn("Paragraph anchor already used, skipping", zap.String("id", sourceID), zap.String("name", name))
		return
	}
	id := c.NextBookmarkID()

	pos := 0
	if pPr := p.SelectElement("w:pPr"); pPr != nil {
		pos = pPr.Index() + 1
	}
	p.InsertChildAt(pos, wml.BookmarkStart(nil, id, name))
	p.InsertChildAt(pos+1, wml.BookmarkEnd(nil, id))

	bm := &Bookmark{ID: id, Name: name, SourceID: sourceID, closed: true}
	c.ids.bookmarks[name] = bm
	c.ids.order = append(c.ids.order, bm)
}

// Bookmarks returns bookmarks in creation order.
func (c *Context[N]) Bookmarks() []*Bookmark {
	return c.ids.order
}

// reference is a link to a bookmark which must exist when rendering is
// finished.
type reference struct {
	name   string
	link   *etree.Element
	nodeID string
	part   wml.PartName
}

// CreateBookmarkHyperlink adds link to bookmark name into the open
// paragraph. Bookmark may be created later, existence is checked by
// Finalize. When text is not empty it is added as hyperlink content,
// otherwise use WithinHyperlink to render content.
func (c *Context[N]) CreateBookmarkHyperlink(name, text string) (*etree.Element, error) {
	if c.cur.para == nil {
		return nil, c.failf(ErrInvalidState, PartHyperlink, "no open paragraph for link to %q", name)
	}
	h := wml.AnchorHyperlink(c.cur.para, name)
	c.extend(PartHyperlink, h, Attribute{Name: AttrTarget, Value: "#" + name})

	c.refs = append(c.refs, &reference{
		name:   name,
		link:   h,
		nodeID: c.NodeID(c.cur.node),
		part:   c.part(),
	})
	if text != "" {
		if err := c.hyperlinkText(h, text); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// HyperlinkRelationship returns relationship id for external URL in the part
// of active content container.
func (c *Context[N]) HyperlinkRelationship(url string) (string, error) {
	rid, err := c.pkg.HyperlinkRelationship(c.part(), url)
	if err != nil {
		return "", c.fail(ErrPackageAssembly, PartHyperlink, err)
	}
	return rid, nil
}

// CreateHyperlink adds link to external URL into the open paragraph.
func (c *Context[N]) CreateHyperlink(url, text string) (*etree.Element, error) {
	if c.cur.para == nil {
		return nil, c.failf(ErrInvalidState, PartHyperlink, "no open paragraph for link to %q", url)
	}
	rid, err := c.HyperlinkRelationship(url)
	if err != nil {
		return nil, err
	}
	h := wml.RelHyperlink(c.cur.para, rid)
	c.extend(PartHyperlink, h, Attribute{Name: AttrTarget, Value: url})
	if text != "" {
		if err := c.hyperlinkText(h, text); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (c *Context[N]) hyperlinkText(h *etree.Element, text string) error {
	return c.WithinHyperlink(h, func() error {
		c.SetRunFormat(RunStyle(hyperlinkStyle))
		_, err := c.Text(text)
		return err
	})
}

const hyperlinkStyle = "Hyperlink"

// WithinHyperlink runs fn in nested scope where new runs go into h.
func (c *Context[N]) WithinHyperlink(h *etree.Element, fn func() error) error {
	if h == nil || h.FullTag() != "w:hyperlink" {
		return c.failf(ErrInvalidState, PartHyperlink, "not a hyperlink element")
	}
	return c.Framed(func() error {
		c.SetRunContainer(h)
		return fn()
	})
}

func (b *Bookmark) String() string {
	state := "open"
	if b.closed {
		state = "closed"
	}
	return fmt.Sprintf("#%d %q source=%q block=%v %s", b.ID, b.Name, b.SourceID, b.Block, state)
}
