// Package dom builds and mutates small HTML node trees without string templating.
package dom

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// eventPrefix marks attribute names that install listeners instead of attributes.
const eventPrefix = "on"

// ErrInvalidTagName is the panic value (wrapped) raised for tags the host cannot create.
var ErrInvalidTagName = errors.New("dom: invalid tag name")

// Attrs maps attribute and listener names to values.
type Attrs map[string]any

// Node is either an *Element or a *Text.
type Node interface {
	Parent() *Element
	TextContent() string
	setParent(*Element)
}

// Text is a leaf text node.
type Text struct {
	Data   string
	parent *Element
}

// NewText returns a detached text node.
func NewText(data string) *Text { return &Text{Data: data} }

func (t *Text) Parent() *Element     { return t.parent }
func (t *Text) TextContent() string  { return t.Data }
func (t *Text) setParent(p *Element) { t.parent = p }

// Element is a tag with attributes, listeners and ordered children.
type Element struct {
	Tag string

	attrs     map[string]string
	listeners map[string]Listener
	children  []Node
	parent    *Element
}

// El creates a fresh element. Names in attrs starting with "on" become
// listeners keyed by their lower-cased name; everything else is stored as a
// string attribute. Children are flattened in order, and every leaf that is
// not a Node becomes a text node.
//
// El panics with ErrInvalidTagName when tag is not a valid element name.
func El(tag string, attrs Attrs, children ...any) *Element {
	e := newElement(tag)
	for name, value := range attrs {
		e.setProp(name, value)
	}
	for _, child := range children {
		e.appendFlattened(child)
	}
	return e
}

func newElement(tag string) *Element {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.ContainsAny(tag, " \t\r\n\f<>\"'/=") {
		panic(fmt.Errorf("%w: %q", ErrInvalidTagName, tag))
	}
	return &Element{
		Tag:       strings.ToLower(tag),
		attrs:     make(map[string]string),
		listeners: make(map[string]Listener),
	}
}

func isEventName(name string) bool {
	return len(name) > len(eventPrefix) && strings.HasPrefix(name, eventPrefix)
}

func (e *Element) setProp(name string, value any) {
	if isEventName(name) {
		e.SetListener(name, value)
		return
	}
	e.SetAttr(name, coerce(value))
}

func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func (e *Element) appendFlattened(child any) {
	switch c := child.(type) {
	case nil:
		return
	case *Element:
		if c != nil {
			e.AppendChild(c)
		}
	case *Text:
		if c != nil {
			e.AppendChild(c)
		}
	case Node:
		e.AppendChild(c)
	case string:
		e.AppendChild(NewText(c))
	case []byte:
		e.AppendChild(NewText(string(c)))
	case []any:
		for _, nested := range c {
			e.appendFlattened(nested)
		}
	default:
		rv := reflect.ValueOf(child)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				e.appendFlattened(rv.Index(i).Interface())
			}
			return
		}
		e.AppendChild(NewText(coerce(child)))
	}
}

// Parent returns the element's parent or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// Attr returns the attribute value and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets a static attribute.
func (e *Element) SetAttr(name, value string) {
	e.attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	delete(e.attrs, name)
}

// AttrNames returns the attribute names in sorted order.
func (e *Element) AttrNames() []string {
	names := make([]string, 0, len(e.attrs))
	for name := range e.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.attrs["id"] }

// HasClass reports whether class is one of the element's classes.
func (e *Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// ChildElements returns the element children, skipping text nodes.
func (e *Element) ChildElements() []*Element {
	out := make([]*Element, 0, len(e.children))
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// TextContent concatenates the text of all descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	for _, c := range e.children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// AppendChild attaches n as the last child, detaching it from any previous parent.
func (e *Element) AppendChild(n Node) Node {
	e.checkInsert(n)
	detach(n)
	n.setParent(e)
	e.children = append(e.children, n)
	return n
}

// InsertBefore attaches n immediately before ref. A nil ref appends.
// It panics when ref is not a child of e.
func (e *Element) InsertBefore(n, ref Node) Node {
	if ref == nil {
		return e.AppendChild(n)
	}
	if n == ref {
		return n
	}
	e.checkInsert(n)
	detach(n)
	idx := e.indexOf(ref)
	if idx < 0 {
		panic("dom: reference node is not a child of this element")
	}
	n.setParent(e)
	e.children = append(e.children, nil)
	copy(e.children[idx+1:], e.children[idx:])
	e.children[idx] = n
	return n
}

// RemoveChild detaches n and reports whether it was a child of e.
func (e *Element) RemoveChild(n Node) bool {
	idx := e.indexOf(n)
	if idx < 0 {
		return false
	}
	e.children = append(e.children[:idx], e.children[idx+1:]...)
	n.setParent(nil)
	return true
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// ClearChildren detaches every child, last first.
func (e *Element) ClearChildren() {
	for i := len(e.children) - 1; i >= 0; i-- {
		e.children[i].setParent(nil)
	}
	e.children = nil
}

// Walk visits e and its element descendants depth-first until fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			if !el.Walk(fn) {
				return false
			}
		}
	}
	return true
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) checkInsert(n Node) {
	el, ok := n.(*Element)
	if !ok {
		return
	}
	for p := e; p != nil; p = p.parent {
		if p == el {
			panic("dom: cannot insert an ancestor into its descendant")
		}
	}
}

func detach(n Node) {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}
