// Package dom defines the host tree that capsule components attach to,
// and ships an in-memory HTML implementation of it.
//
// The core only needs five primitives from a host: class and attribute
// mutation, descendant querying, event listen/unlisten/dispatch with
// bubble control, content replacement, and a "document ready" signal.
// Element and Host describe exactly that surface. Document is the
// in-memory host, built on golang.org/x/net/html with cascadia selectors;
// a browser binding would implement the same interfaces.
package dom

// Element is a node in the host tree that components can mount onto.
//
// Implementations must return the same Element value for the same
// underlying node, since listeners and containment checks rely on
// identity.
type Element interface {
	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool

	Attr(name string) (string, bool)
	SetAttr(name, value string)

	// SetInnerHTML replaces the element's children with the parsed markup.
	SetInnerHTML(markup string) error

	// QuerySelector returns the first descendant matching selector, or nil.
	QuerySelector(selector string) (Element, error)
	// QuerySelectorAll returns every descendant matching selector in
	// document order. The element itself is never included.
	QuerySelectorAll(selector string) ([]Element, error)
	// Contains reports whether other is the element or one of its
	// descendants.
	Contains(other Element) bool

	AddEventListener(typ string, l *Listener)
	RemoveEventListener(typ string, l *Listener)
	DispatchEvent(e *Event)

	String() string
}

// Host is the root of a tree. Ready schedules fn to run once the host
// signals that it is fully loaded. fn must not run synchronously inside
// Ready, so callers can finish configuring before it fires.
type Host interface {
	Element
	Ready(fn func())
}

// Event travels from its target up through ancestors when Bubbles is set.
type Event struct {
	Type    string
	Detail  any
	Bubbles bool

	// Target is the element the event was dispatched on.
	Target Element
	// CurrentTarget is the element whose listener is running.
	CurrentTarget Element

	stopped bool
}

// NewEvent creates an event ready for dispatch.
func NewEvent(typ string, detail any, bubbles bool) *Event {
	return &Event{Type: typ, Detail: detail, Bubbles: bubbles}
}

// StopPropagation prevents the event from reaching further ancestors.
// Listeners on the current element still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener wraps an event callback. Listeners are compared by pointer,
// so the value returned by NewListener is the handle used to remove it.
type Listener struct {
	fn   func(*Event)
	once bool
}

// NewListener creates a listener that runs fn on every dispatch.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// Once creates a listener that removes itself before its first run.
func Once(fn func(*Event)) *Listener {
	return &Listener{fn: fn, once: true}
}

// IsOnce reports whether the listener detaches after one run.
func (l *Listener) IsOnce() bool {
	return l.once
}

// Handle invokes the callback.
func (l *Listener) Handle(e *Event) {
	l.fn(e)
}
