package render

import (
	"slices"
	"testing"
)

func TestAttributes(t *testing.T) {
	var a Attributes
	a.Set(AttrStyle, "Normal")
	a.Set(AttrID, "x")
	a.Set(AttrStyle, "Quote")

	if v, ok := a.Get(AttrStyle); !ok || v != "Quote" {
		t.Errorf("Get(style) = %q, %v", v, ok)
	}
	if len(a) != 2 {
		t.Errorf("len = %d, Set must replace", len(a))
	}
	a.Delete(AttrStyle)
	if _, ok := a.Get(AttrStyle); ok {
		t.Error("Delete did not remove attribute")
	}
	if v, _ := a.Get(AttrID); v != "x" {
		t.Error("Delete removed wrong attribute")
	}
}

func TestExtender_Invocations(t *testing.T) {
	c := newTestContext(t)
	var parts []Part
	var nodes []string
	c.SetAttributeExtender(func(n *node, part Part, _ *Attributes) {
		parts = append(parts, part)
		id := ""
		if n != nil {
			id = n.id
		}
		nodes = append(nodes, id)
	})

	mustP(t, c)
	c.SetNode(&node{id: "link"})
	if _, err := c.CreateBookmarkHyperlink("target", "text"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateBookmarkStart("target", false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddFootnote(NewFootnote); err != nil {
		t.Fatal(err)
	}

	want := []Part{PartParagraph, PartHyperlink, PartRun, PartBookmark, PartFootnote}
	if !slices.Equal(parts, want) {
		t.Errorf("parts = %v, want %v", parts, want)
	}
	if !slices.Equal(nodes, []string{"", "link", "link", "link", "link"}) {
		t.Errorf("nodes = %v", nodes)
	}
}

func TestExtender_Style(t *testing.T) {
	c := newTestContext(t)
	c.SetAttributeExtender(func(_ *node, part Part, attrs *Attributes) {
		switch part {
		case PartParagraph:
			if v, _ := attrs.Get(AttrStyle); v == "Normal" {
				attrs.Set(AttrStyle, "Title")
			}
		case PartRun:
			attrs.Set(AttrStyle, "")
		}
	})

	c.SetBlockFormat(BlockStyle("Normal"))
	p := mustP(t, c)
	if got := p.FindElement("w:pPr/w:pStyle").SelectAttrValue("w:val", ""); got != "Title" {
		t.Errorf("paragraph style = %q", got)
	}

	c.SetRunFormat(RunStyle("CodeChar"))
	r, err := c.CreateR()
	if err != nil {
		t.Fatal(err)
	}
	if r.SelectElement("w:rPr") != nil {
		t.Error("run style not removed")
	}

	// no extender, no changes
	c.SetAttributeExtender(nil)
	p = mustP(t, c)
	if got := p.FindElement("w:pPr/w:pStyle").SelectAttrValue("w:val", ""); got != "Normal" {
		t.Errorf("paragraph style without extender = %q", got)
	}
}

func TestExtender_QualifiedAttributes(t *testing.T) {
	c := newTestContext(t)
	c.SetAttributeExtender(func(_ *node, part Part, attrs *Attributes) {
		if part == PartParagraph {
			attrs.Set("w:rsidR", "00AB12CD")
			attrs.Set("custom", "ignored")
		}
	})
	p := mustP(t, c)
	if got := p.SelectAttrValue("w:rsidR", ""); got != "00AB12CD" {
		t.Errorf("w:rsidR = %q", got)
	}
	if p.SelectAttr("custom") != nil {
		t.Error("unqualified attribute copied to element")
	}
}

func TestExtender_ParagraphAnchor(t *testing.T) {
	c := newTestContext(t)
	c.SetAttributeExtender(func(_ *node, part Part, attrs *Attributes) {
		if part == PartParagraph {
			attrs.Set(AttrID, "sec-1")
		}
	})
	c.SetBlockFormat(BlockStyle("Heading2"))
	p := mustP(t, c)

	children := p.ChildElements()
	if len(children) < 3 || children[0].Tag != "pPr" || children[1].Tag != "bookmarkStart" || children[2].Tag != "bookmarkEnd" {
		t.Fatalf("anchor not placed after properties: %v", children)
	}
	name := children[1].SelectAttrValue("w:name", "")
	if name != c.ValidBookmarkName("sec-1") {
		t.Errorf("anchor name = %q", name)
	}

	c.SetAttributeExtender(nil)
	mustP(t, c)
	if _, err := c.CreateBookmarkHyperlink(name, "back"); err != nil {
		t.Fatal(err)
	}
	if err := c.Finalize(); err != nil {
		t.Errorf("Finalize() error = %v", err)
	}
}
