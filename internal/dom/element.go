// Package dom is a small element-handle layer over golang.org/x/net/html
// nodes. Content is only ever inserted as text nodes or attribute values,
// so the renderer escapes whatever the server sent.
//
// Handles are not safe for concurrent use; callers mutate them from the
// event loop only.
package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node.
type Element struct {
	n *html.Node
}

// Wrap returns a handle for n, or nil if n is not an element node.
func Wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Element{n: n}
}

// New creates a detached element with the given tag and classes.
func New(tag string, classes ...string) *Element {
	e := &Element{n: &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}}
	if len(classes) > 0 {
		e.AddClass(classes...)
	}
	return e
}

// NewText creates a detached element whose only child is a text node.
func NewText(tag, text string, classes ...string) *Element {
	return New(tag, classes...).AppendText(text)
}

func (e *Element) Node() *html.Node { return e.n }
func (e *Element) Tag() string      { return e.n.Data }

// Attr returns the value of key and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val, adding the attribute if missing.
func (e *Element) SetAttr(key, val string) *Element {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			e.n.Attr[i].Val = val
			return e
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
	return e
}

func (e *Element) RemoveAttr(key string) {
	attrs := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	e.n.Attr = attrs
}

// Classes returns the class list in document order.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(classes ...string) *Element {
	list := e.Classes()
	for _, c := range classes {
		if !contains(list, c) {
			list = append(list, c)
		}
	}
	e.setClasses(list)
	return e
}

func (e *Element) RemoveClass(classes ...string) *Element {
	list := e.Classes()
	kept := list[:0]
	for _, c := range list {
		if !contains(classes, c) {
			kept = append(kept, c)
		}
	}
	e.setClasses(kept)
	return e
}

// ToggleClass forces class on or off.
func (e *Element) ToggleClass(class string, on bool) *Element {
	if on {
		return e.AddClass(class)
	}
	return e.RemoveClass(class)
}

func (e *Element) setClasses(list []string) {
	if len(list) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(list, " "))
}

// Style returns the value of an inline style property.
func (e *Element) Style(prop string) string {
	for _, d := range e.styles() {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// SetStyle sets an inline style property, keeping the other declarations.
func (e *Element) SetStyle(prop, val string) *Element {
	decls := e.styles()
	found := false
	for i, d := range decls {
		if d[0] == prop {
			decls[i][1] = val
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{prop, val})
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	return e.SetAttr("style", strings.Join(parts, "; "))
}

func (e *Element) styles() [][2]string {
	v, _ := e.Attr("style")
	var decls [][2]string
	for _, raw := range strings.Split(v, ";") {
		prop, val, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, [2]string{prop, strings.TrimSpace(val)})
	}
	return decls
}

// Clear removes every child node.
func (e *Element) Clear() *Element {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	return e
}

// Append adds detached children at the end.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c.n.Parent != nil {
			c.n.Parent.RemoveChild(c.n)
		}
		e.n.AppendChild(c.n)
	}
	return e
}

// AppendText adds a text node. The text is never parsed as markup.
func (e *Element) AppendText(text string) *Element {
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return e
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(text string) *Element {
	return e.Clear().AppendText(text)
}

// Text returns the concatenated text content of the subtree.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}

// Children returns the element children (text and comment nodes skipped).
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if el := Wrap(c); el != nil {
			out = append(out, el)
		}
	}
	return out
}

// ByClass returns descendants carrying class, in document order.
func (e *Element) ByClass(class string) []*Element {
	return collect(e.n, func(el *Element) bool { return el.HasClass(class) })
}

// ByTag returns descendants with the given tag name, in document order.
func (e *Element) ByTag(tag string) []*Element {
	return collect(e.n, func(el *Element) bool { return el.Tag() == tag })
}

// Value returns the current value of a form control.
func (e *Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		return selectedOption(e)
	default:
		v, _ := e.Attr("value")
		return v
	}
}

// SetValue sets the value of an input or textarea.
func (e *Element) SetValue(v string) *Element {
	if e.Tag() == "textarea" {
		return e.SetText(v)
	}
	return e.SetAttr("value", v)
}

// Render returns the outer HTML of the element.
func (e *Element) Render() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.n); err != nil {
		return ""
	}
	return buf.String()
}

// Same reports whether both handles point at the same node.
func (e *Element) Same(other *Element) bool {
	return other != nil && e.n == other.n
}

func collect(root *html.Node, match func(*Element) bool) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if el := Wrap(c); el != nil && match(el) {
				out = append(out, el)
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

func selectedOption(sel *Element) string {
	options := sel.ByTag("option")
	for _, o := range options {
		if _, ok := o.Attr("selected"); ok {
			return optionValue(o)
		}
	}
	if len(options) > 0 {
		return optionValue(options[0])
	}
	return ""
}

func optionValue(o *Element) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
