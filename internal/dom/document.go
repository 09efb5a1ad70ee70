package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed host page.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse over a string, handy for fixtures.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *Element {
	found := collect(d.root, func(el *Element) bool {
		v, ok := el.Attr("id")
		return ok && v == id
	})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// ByClass returns all elements carrying class, in document order.
func (d *Document) ByClass(class string) []*Element {
	return collect(d.root, func(el *Element) bool { return el.HasClass(class) })
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}
