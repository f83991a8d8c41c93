package capsule

import (
	"fmt"

	"github.com/pthm/capsule/lib/dom"
	"github.com/pthm/capsule/lib/encoding"
)

// Context is handed to every hook and handler. It is created for a single
// dispatch and carries no state across dispatches.
type Context struct {
	// Event is the dispatched event. Mount and unmount hooks receive a
	// synthetic non-bubbling EventMount or EventUnmount event.
	Event *dom.Event
	// El is the mounted element the handler belongs to, which for
	// delegated and outside bindings differs from Event.Target.
	El dom.Element

	component string
	reg       *Registry
}

// Component returns the name of the component whose handler is running.
func (c *Context) Component() string {
	return c.component
}

// Query returns the first descendant of El matching selector, or nil.
func (c *Context) Query(selector string) (dom.Element, error) {
	return c.El.QuerySelector(selector)
}

// QueryAll returns every descendant of El matching selector.
func (c *Context) QueryAll(selector string) ([]dom.Element, error) {
	return c.El.QuerySelectorAll(selector)
}

// Emit dispatches a bubbling event from El. Ancestor components observe
// it through direct or delegated bindings.
func (c *Context) Emit(typ string, data any) {
	c.El.DispatchEvent(dom.NewEvent(typ, data, true))
}

// Pub delivers a non-bubbling event to every subscriber of typ in the
// tree. See Component.Sub.
func (c *Context) Pub(typ string, data any) error {
	return c.reg.Publish(typ, data)
}

// Detail converts the event detail into v, which must be a pointer.
func (c *Context) Detail(v any) error {
	return encoding.Convert(c.Event.Detail, v)
}

// Props decodes the props attribute of El into v. Signed props are read
// from PropsAttr, encrypted ones from SealedPropsAttr.
func (c *Context) Props(v any) error {
	if c.reg.encoder == nil {
		return ErrNoEncoder
	}
	if s, ok := c.El.Attr(PropsAttr); ok {
		return c.reg.encoder.Decode(s, false, v)
	}
	if s, ok := c.El.Attr(SealedPropsAttr); ok {
		return c.reg.encoder.Decode(s, true, v)
	}
	return fmt.Errorf("%w: %s", ErrNoProps, c.El)
}
