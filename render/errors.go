package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned for run level operations without open
	// paragraph and similar cursor misuse.
	ErrInvalidState = errors.New("invalid rendering state")
	// ErrUnmatchedBookmark is returned when bookmark start and end do not pair.
	ErrUnmatchedBookmark = errors.New("unmatched bookmark")
	// ErrNotFound is returned for references to unknown footnotes, styles,
	// nodes and bookmarks.
	ErrNotFound = errors.New("not found")
	// ErrPackageAssembly wraps failures of the document construction layer.
	ErrPackageAssembly = errors.New("package assembly failed")
)

// Error carries diagnostic context of a rendering failure. errors.Is matches
// both its Kind and the underlying cause.
type Error struct {
	Kind   error
	NodeID string
	Part   Part
	Depth  int
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	var loc []string
	if e.NodeID != "" {
		loc = append(loc, fmt.Sprintf("node=%q", e.NodeID))
	}
	if e.Part != "" {
		loc = append(loc, "part="+string(e.Part))
	}
	loc = append(loc, fmt.Sprintf("depth=%d", e.Depth))
	b.WriteString(" (")
	b.WriteString(strings.Join(loc, " "))
	b.WriteString(")")
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// fail builds Error for the current position of the context.
func (c *Context[N]) fail(kind error, part Part, cause error) *Error {
	return &Error{
		Kind:   kind,
		NodeID: c.NodeID(c.cur.node),
		Part:   part,
		Depth:  len(c.frames),
		Err:    cause,
	}
}

func (c *Context[N]) failf(kind error, part Part, format string, args ...any) *Error {
	return c.fail(kind, part, fmt.Errorf(format, args...))
}
