package dom

import (
	"context"
	"sync"
)

// ReadyEvent is the event type dispatched on the root by Document.Ready.
const ReadyEvent = "DOMContentLoaded"

// Document wraps the root element of a page.
type Document struct {
	root      *Element
	readyOnce sync.Once
}

// NewDocument returns a document rooted at root.
func NewDocument(root *Element) *Document {
	return &Document{root: root}
}

// Root returns the document element.
func (d *Document) Root() *Element { return d.root }

// GetElementByID returns the first attached element with the given id.
func (d *Document) GetElementByID(id string) *Element {
	if d == nil || d.root == nil || id == "" {
		return nil
	}
	var found *Element
	d.root.Walk(func(e *Element) bool {
		if e.ID() == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// QueryClass returns every element carrying class, in document order.
func (d *Document) QueryClass(class string) []*Element {
	if d == nil || d.root == nil {
		return nil
	}
	var out []*Element
	d.root.Walk(func(e *Element) bool {
		if e.HasClass(class) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Form returns the form element whose name attribute equals name.
func (d *Document) Form(name string) *Element {
	if d == nil || d.root == nil {
		return nil
	}
	var found *Element
	d.root.Walk(func(e *Element) bool {
		if e.Tag == "form" {
			if n, _ := e.Attr("name"); n == name {
				found = e
				return false
			}
		}
		return true
	})
	return found
}

// Ready dispatches the ready event on the root exactly once. Later calls
// return nil.
func (d *Document) Ready(ctx context.Context) *Event {
	var ev *Event
	d.readyOnce.Do(func() {
		ev = NewEvent(ctx, ReadyEvent)
		d.root.Dispatch(ev)
	})
	return ev
}
