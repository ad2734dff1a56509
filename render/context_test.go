package render

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mdocx/config"
	"mdocx/wml"
)

type node struct {
	id string
}

func nodeID(n *node) string { return n.id }

func testConfig() config.DocumentConfig {
	return config.DocumentConfig{
		Bookmarks: config.BookmarksConfig{MaxLength: 40, Prefix: "BM_"},
		Links:     config.LinksConfig{Dangling: config.DanglingLinkPolicyDegrade, Suggest: true},
		Footnotes: config.FootnotesConfig{TextStyle: "FootnoteText", ReferenceStyle: "FootnoteReference"},
		Code:      config.CodeConfig{Style: "SourceCode", CharStyle: "CodeChar"},
	}
}

func newTestContext(t *testing.T, mods ...func(*config.DocumentConfig)) *Context[*node] {
	t.Helper()
	cfg := testConfig()
	for _, mod := range mods {
		mod(&cfg)
	}
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	return New(wml.NewPackage(), &cfg, nodeID, log)
}

func mustP(t *testing.T, c *Context[*node]) *etree.Element {
	t.Helper()
	p, err := c.CreateP()
	if err != nil {
		t.Fatalf("CreateP() error = %v", err)
	}
	return p
}

func texts(el *etree.Element) string {
	out := ""
	for _, t := range el.FindElements(".//w:t") {
		out += t.Text()
	}
	return out
}

type snapshot struct {
	node    *node
	block   BlockFormatProvider
	run     RunFormatProvider
	content ContentContainer
	para    *etree.Element
	host    *etree.Element
	r       *etree.Element
}

func snap(c *Context[*node]) snapshot {
	return snapshot{c.Node(), c.BlockFormat(), c.RunFormat(), c.ContentContainer(), c.GetP(), c.RunContainer(), c.GetR()}
}

var errBoom = errors.New("boom")

func TestFramed_RestoresState(t *testing.T) {
	c := newTestContext(t)
	c.SetNode(&node{id: "outer"})
	c.SetBlockFormat(BlockStyle("Quote"))
	c.SetRunFormat(RunStyle("CodeChar"))
	mustP(t, c)
	if _, err := c.CreateR(); err != nil {
		t.Fatal(err)
	}
	before := snap(c)

	for _, fail := range []bool{false, true} {
		err := c.Framed(func() error {
			c.SetNode(&node{id: "level1"})
			c.SetBlockFormat(BlockStyle("Heading1"))
			mustP(t, c)
			return c.Framed(func() error {
				c.SetRunFormat(nil)
				c.SetContentContainer(ElementContainer(etree.NewElement("w:tc"), wml.PartDocument))
				mustP(t, c)
				return c.Framed(func() error {
					if c.Depth() != 3 {
						t.Errorf("Depth() = %d, want 3", c.Depth())
					}
					mustP(t, c)
					if _, err := c.CreateR(); err != nil {
						return err
					}
					if fail {
						return errBoom
					}
					return nil
				})
			})
		})
		if fail != errors.Is(err, errBoom) {
			t.Errorf("fail=%v: Framed() error = %v", fail, err)
		}
		if after := snap(c); after != before {
			t.Errorf("fail=%v: state not restored:\nbefore %+v\nafter  %+v", fail, before, after)
		}
		if c.Depth() != 0 {
			t.Errorf("Depth() = %d after return", c.Depth())
		}
	}
}

func TestFramed_RestoresOnPanic(t *testing.T) {
	c := newTestContext(t)
	p := mustP(t, c)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = c.Framed(func() error {
			c.SetContentContainer(ElementContainer(etree.NewElement("w:tc"), wml.PartDocument))
			mustP(t, c)
			panic("inner failure")
		})
	}()

	if c.GetP() != p {
		t.Error("open paragraph not restored after panic")
	}
	if c.Depth() != 0 {
		t.Errorf("Depth() = %d after panic", c.Depth())
	}
}

func TestFramed_InnerSeesOuterChanges(t *testing.T) {
	c := newTestContext(t)
	_ = c.Framed(func() error {
		c.SetBlockFormat(BlockStyle("Quote"))
		return c.Framed(func() error {
			if c.BlockFormat() != BlockStyle("Quote") {
				t.Errorf("inner frame sees %v", c.BlockFormat())
			}
			return nil
		})
	})
	if c.BlockFormat() != nil {
		t.Error("outer block format leaked")
	}
}

func TestCursor(t *testing.T) {
	c := newTestContext(t)
	if c.GetP() != nil || c.GetR() != nil {
		t.Fatal("fresh context has open elements")
	}

	_, err := c.CreateR()
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("CreateR() without paragraph error = %v", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Part != PartRun {
		t.Errorf("error lacks diagnostics: %#v", err)
	}

	p := mustP(t, c)
	if c.GetP() != p {
		t.Error("GetP() does not return created paragraph")
	}
	r, err := c.CreateR()
	if err != nil {
		t.Fatal(err)
	}
	if c.GetR() != r || r.Parent() != p {
		t.Error("run is not open or not inside paragraph")
	}

	p2 := mustP(t, c)
	if c.GetR() != nil {
		t.Error("new paragraph must not have open run")
	}
	if p2.Parent() != c.Package().Body() {
		t.Error("paragraph not added to body")
	}
}

func TestInvalidStateCarriesContext(t *testing.T) {
	c := newTestContext(t)
	c.SetNode(&node{id: "para-7"})
	err := c.Framed(func() error {
		return c.Framed(func() error {
			_, err := c.Text("x")
			return err
		})
	})
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if rerr.NodeID != "para-7" || rerr.Depth != 2 || rerr.Part != PartRun {
		t.Errorf("diagnostics = %+v", rerr)
	}
}

type shaded struct{}

func (shaded) StyleID() string { return "Quote" }
func (shaded) ParagraphProperties(pPr *etree.Element) {
	wml.Justify(pPr, "center")
}

func TestCreateP_FormatProvider(t *testing.T) {
	c := newTestContext(t)
	c.SetBlockFormat(shaded{})
	p := mustP(t, c)
	if wml.ParagraphStyle(p) != "Quote" {
		t.Errorf("style = %q", wml.ParagraphStyle(p))
	}
	if p.FindElement("w:pPr/w:jc") == nil {
		t.Error("provider properties not applied")
	}

	c.SetBlockFormat(nil)
	plain := mustP(t, c)
	if plain.SelectElement("w:pPr") != nil {
		t.Error("empty pPr must be dropped")
	}
}

func TestText(t *testing.T) {
	c := newTestContext(t)
	mustP(t, c)
	c.SetRunFormat(RunStyle("CodeChar"))

	r, err := c.Text("e\u0301\tx")
	if err != nil {
		t.Fatal(err)
	}
	if got := texts(r); got != "\u00e9x" {
		t.Errorf("text = %q, want NFC form", got)
	}
	if r.SelectElement("w:tab") == nil {
		t.Error("tab not converted")
	}
	if st := r.FindElement("w:rPr/w:rStyle"); st == nil || st.SelectAttrValue("w:val", "") != "CodeChar" {
		t.Error("run format not applied")
	}
}

func TestBreaks(t *testing.T) {
	c := newTestContext(t)
	if err := c.AddLineBreak(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddLineBreak() without paragraph error = %v", err)
	}
	p := mustP(t, c)
	if err := c.AddLineBreak(); err != nil {
		t.Fatal(err)
	}
	if err := c.AddPageBreak(); err != nil {
		t.Fatal(err)
	}
	brs := p.FindElements(".//w:br")
	if len(brs) != 2 || brs[1].SelectAttrValue("w:type", "") != "page" {
		t.Errorf("breaks = %d", len(brs))
	}
	// both breaks go into the same run
	if len(p.SelectElements("w:r")) != 1 {
		t.Errorf("runs = %d, want 1", len(p.SelectElements("w:r")))
	}
}

func TestAddBlankLine_KeepsOpenParagraph(t *testing.T) {
	c := newTestContext(t)
	p := mustP(t, c)
	if err := c.AddBlankLines(2, 120, "Normal"); err != nil {
		t.Fatal(err)
	}
	if c.GetP() != p {
		t.Error("blank line moved the open paragraph")
	}
	body := c.Package().Body().SelectElements("w:p")
	if len(body) != 3 {
		t.Fatalf("paragraphs = %d, want 3", len(body))
	}
	sp := body[2].FindElement("w:pPr/w:spacing")
	if sp == nil || sp.SelectAttrValue("w:after", "") != "120" {
		t.Error("blank line spacing missing")
	}
}

func TestRenderFencedCodeLines(t *testing.T) {
	c := newTestContext(t)
	if err := c.RenderFencedCodeLines("a"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("without paragraph error = %v", err)
	}
	c.SetBlockFormat(BlockStyle("SourceCode"))
	p := mustP(t, c)
	if err := c.RenderFencedCodeLines("func main() {", "\treturn", "}"); err != nil {
		t.Fatal(err)
	}
	if got := len(p.SelectElements("w:r")); got != 3 {
		t.Errorf("runs = %d, want 3", got)
	}
	if got := len(p.FindElements(".//w:br")); got != 2 {
		t.Errorf("breaks = %d, want 2", got)
	}
	if got := texts(p); got != "func main() {return}" {
		t.Errorf("text = %q", got)
	}
}

func TestRunHelpers(t *testing.T) {
	c := newTestContext(t)
	mustP(t, c)
	if err := c.AddBold(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddBold() without run error = %v", err)
	}
	r, _ := c.CreateR()
	if err := c.AddBold(); err != nil {
		t.Fatal(err)
	}
	if err := c.SetColor("#00ff00"); err != nil {
		t.Fatal(err)
	}
	if err := c.SetMeasure("w:sz", 28); err != nil {
		t.Fatal(err)
	}
	rPr := r.SelectElement("w:rPr")
	if rPr.SelectElement("w:b") == nil || rPr.SelectElement("w:color").SelectAttrValue("w:val", "") != "00FF00" {
		t.Error("run properties missing")
	}
	if rPr.SelectElement("w:sz").SelectAttrValue("w:val", "") != "28" {
		t.Error("measure missing")
	}
}

func TestStyle(t *testing.T) {
	c := newTestContext(t)
	if st, err := c.Style("heading 3"); err != nil || st.ID != "Heading3" {
		t.Errorf("Style(heading 3) = %v, %v", st, err)
	}
	_, err := c.Style("Nope")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, wml.ErrStyleNotFound) {
		t.Errorf("Style(Nope) error = %v", err)
	}
}

func TestAbandonedFootnoteParagraph(t *testing.T) {
	c := newTestContext(t)
	outer := mustP(t, c)
	if _, err := c.Text("before "); err != nil {
		t.Fatal(err)
	}

	fn, err := c.AddFootnote(NewFootnote)
	if err != nil {
		t.Fatal(err)
	}
	err = c.RenderFootnote(fn, func() error {
		mustP(t, c)
		if _, err := c.Text("partial"); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("RenderFootnote() error = %v", err)
	}
	if c.GetP() != outer {
		t.Error("outer paragraph was not restored")
	}
	if c.ContentContainer().Part() != wml.PartDocument {
		t.Error("content container was not restored")
	}
	if _, err := c.Text("after"); err != nil {
		t.Fatal(err)
	}
	if got := texts(outer); got != "before after" {
		t.Errorf("outer text = %q", got)
	}
}
