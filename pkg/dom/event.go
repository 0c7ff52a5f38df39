package dom

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Handler reacts to an event dispatched on an element.
type Handler func(*Event)

// Listener is an installed event handler. Func runs in-process on Dispatch;
// Script is emitted as the inline attribute when the tree is rendered.
type Listener struct {
	Func   Handler
	Script string
}

// Event is dispatched to an element's listener.
type Event struct {
	Type    string
	Target  *Element
	Context context.Context
	Form    url.Values

	mu    sync.Mutex
	waits []<-chan struct{}
}

// NewEvent returns an event of the given type bound to ctx.
func NewEvent(ctx context.Context, typ string) *Event {
	return &Event{Type: typ, Context: ctx}
}

// Ctx returns the event context, never nil.
func (ev *Event) Ctx() context.Context {
	if ev.Context == nil {
		return context.Background()
	}
	return ev.Context
}

// WaitUntil registers asynchronous work started by a handler.
func (ev *Event) WaitUntil(done <-chan struct{}) {
	if done == nil {
		return
	}
	ev.mu.Lock()
	ev.waits = append(ev.waits, done)
	ev.mu.Unlock()
}

// Wait blocks until all registered work is done or ctx ends.
func (ev *Event) Wait(ctx context.Context) error {
	ev.mu.Lock()
	waits := append([]<-chan struct{}(nil), ev.waits...)
	ev.mu.Unlock()

	for _, done := range waits {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func listenerKey(name string) string {
	return strings.ToLower(name)
}

// SetListener installs a listener under the lower-cased name. Accepted values
// are Handler, func(*Event), Listener, and strings (inline script); any other
// value is coerced to a script string. A nil value removes the listener.
func (e *Element) SetListener(name string, value any) {
	key := listenerKey(name)
	var l Listener
	switch v := value.(type) {
	case nil:
		delete(e.listeners, key)
		return
	case Listener:
		l = v
	case *Listener:
		if v == nil {
			delete(e.listeners, key)
			return
		}
		l = *v
	case Handler:
		l = Listener{Func: v}
	case func(*Event):
		l = Listener{Func: v}
	case string:
		l = Listener{Script: v}
	default:
		l = Listener{Script: fmt.Sprint(v)}
	}
	e.listeners[key] = l
}

// Listener returns the listener installed under name (case-insensitive).
func (e *Element) Listener(name string) (Listener, bool) {
	l, ok := e.listeners[listenerKey(name)]
	return l, ok
}

// ListenerNames returns installed listener names in sorted order.
func (e *Element) ListenerNames() []string {
	names := make([]string, 0, len(e.listeners))
	for name := range e.listeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the in-process listener for ev.Type on e. It does not
// bubble. It reports whether a handler ran.
func (e *Element) Dispatch(ev *Event) bool {
	if ev == nil {
		return false
	}
	if ev.Target == nil {
		ev.Target = e
	}
	l, ok := e.listeners[listenerKey(eventPrefix+ev.Type)]
	if !ok || l.Func == nil {
		return false
	}
	l.Func(ev)
	return true
}
