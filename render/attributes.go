package render

import (
	"strings"

	"github.com/beevik/etree"
)

// Part names kind of output element attributes are computed for.
type Part string

const (
	PartParagraph Part = "paragraph"
	PartRun       Part = "run"
	PartHyperlink Part = "hyperlink"
	PartBookmark  Part = "bookmark"
	PartFootnote  Part = "footnote"
	PartTable     Part = "table"
	PartCell      Part = "cell"
)

// Attribute keys understood by the context. Keys with namespace prefix
// ("w:rsidR") are copied onto the element as is, other keys are ignored.
const (
	AttrStyle  = "style"  // style id, empty removes style
	AttrID     = "id"     // paragraph anchor, paragraph gets bookmark
	AttrName   = "name"   // bookmark name, informational
	AttrTarget = "target" // hyperlink anchor or URL, informational
)

type Attribute struct {
	Name  string
	Value string
}

type Attributes []Attribute

func (a Attributes) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces value of existing attribute or appends new one.
func (a *Attributes) Set(name, value string) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Name: name, Value: value})
}

func (a *Attributes) Delete(name string) {
	out := (*a)[:0]
	for _, attr := range *a {
		if attr.Name != name {
			out = append(out, attr)
		}
	}
	*a = out
}

// AttributeExtender may modify attributes computed for an element before
// they are applied. node is the zero value when element is not produced for
// a particular node. attrs is only valid during the call.
type AttributeExtender[N comparable] func(node N, part Part, attrs *Attributes)

// SetAttributeExtender installs extension hook, nil restores default
// behavior.
func (c *Context[N]) SetAttributeExtender(ext AttributeExtender[N]) {
	c.extender = ext
}

// extend runs attribute extender for el and applies qualified attributes.
// Returned slice is reused by the next call.
func (c *Context[N]) extend(part Part, el *etree.Element, base ...Attribute) Attributes {
	c.attrs = append(c.attrs[:0], base...)
	if c.extender == nil {
		return c.attrs
	}
	c.extender(c.cur.node, part, &c.attrs)
	for _, attr := range c.attrs {
		if strings.Contains(attr.Name, ":") {
			el.CreateAttr(attr.Name, attr.Value)
		}
	}
	return c.attrs
}
