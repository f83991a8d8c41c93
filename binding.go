package capsule

import (
	"fmt"
	"strings"

	"github.com/pthm/capsule/lib/dom"
)

// BindMode selects how a handler is attached to a mounted element.
type BindMode int

const (
	// BindDirect listens on the element itself.
	BindDirect BindMode = iota
	// BindDelegated listens on the element and only runs the handler for
	// events whose target is inside a descendant matching Selector.
	BindDelegated
	// BindOutside listens on the host tree and only runs the handler for
	// events whose target is outside the element.
	BindOutside
	// BindMount runs the handler once per element, after every other
	// mount hook.
	BindMount
	// BindUnmount runs the handler once when the element is unmounted.
	BindUnmount
)

func (m BindMode) String() string {
	switch m {
	case BindDirect:
		return "direct"
	case BindDelegated:
		return "delegated"
	case BindOutside:
		return "outside"
	case BindMount:
		return "mount"
	case BindUnmount:
		return "unmount"
	}
	return fmt.Sprintf("BindMode(%d)", int(m))
}

// Binding is a request to attach Handler to mounted elements. Event is
// ignored for BindMount and BindUnmount; Selector is only used by
// BindDelegated.
type Binding struct {
	Mode     BindMode
	Event    string
	Selector string
	Handler  Handler
}

// Bind validates b and appends the hook that applies it. On error
// nothing is appended.
func (c *Component) Bind(b Binding) error {
	if b.Handler == nil {
		return fmt.Errorf("%w: nil handler for %s %q", ErrInvalidHandler, b.Mode, b.Event)
	}

	in := c.in
	switch b.Mode {
	case BindMount:
		in.addMountHook(b.Handler)
		return nil
	case BindUnmount:
		in.addHook(in.unmountHook(b.Handler))
		return nil
	case BindDirect, BindDelegated, BindOutside:
	default:
		return fmt.Errorf("%w: unknown bind mode %s", ErrInvalidEvent, b.Mode)
	}

	if b.Event == "" {
		return fmt.Errorf("%w: empty event name", ErrInvalidEvent)
	}
	if b.Event == EventMount || b.Event == EventUnmount {
		return fmt.Errorf("%w: %q cannot be bound in %s mode", ErrInvalidEvent, b.Event, b.Mode)
	}
	// Per-component unmount signals are internal.
	if strings.HasPrefix(b.Event, EventUnmount+":") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidEvent, b.Event)
	}
	if b.Mode == BindDelegated {
		if err := dom.ValidSelector(b.Selector); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSelector, err)
		}
	}

	in.addHook(in.listenerHook(b))
	return nil
}

// On binds h to event on each mounted element. The pseudo events
// EventMount and EventUnmount register lifecycle handlers instead.
func (c *Component) On(event string, h Handler) error {
	mode := BindDirect
	switch event {
	case EventMount:
		mode = BindMount
	case EventUnmount:
		mode = BindUnmount
	}
	return c.Bind(Binding{Mode: mode, Event: event, Handler: h})
}

// Scope binds handlers in delegated or outside mode.
type Scope struct {
	c        *Component
	mode     BindMode
	selector string
}

// Delegate returns a scope whose handlers only run for events coming
// from descendants matching selector.
func (c *Component) Delegate(selector string) *Scope {
	return &Scope{c: c, mode: BindDelegated, selector: selector}
}

// Outside returns a scope whose handlers only run for events targeting
// elements outside the mounted element.
func (c *Component) Outside() *Scope {
	return &Scope{c: c, mode: BindOutside}
}

// On binds h to event within the scope.
func (s *Scope) On(event string, h Handler) error {
	return s.c.Bind(Binding{Mode: s.mode, Event: event, Selector: s.selector, Handler: h})
}

// unmountHook registers h to run when the element is unmounted.
func (in *initializer) unmountHook(h Handler) Handler {
	return func(ctx *Context) {
		el := ctx.El
		el.AddEventListener(in.unmountEvent, dom.Once(func(*dom.Event) {
			ev := dom.NewEvent(EventUnmount, nil, false)
			ev.Target = el
			h(in.context(ev, el))
		}))
	}
}

// listenerHook attaches one listener per mounted element and pairs it
// with an unmount hook that removes exactly that listener.
func (in *initializer) listenerHook(b Binding) Handler {
	return func(ctx *Context) {
		el := ctx.El
		var target dom.Element = el
		if b.Mode == BindOutside {
			target = in.reg.host
		}

		l := dom.NewListener(func(e *dom.Event) {
			switch b.Mode {
			case BindDelegated:
				if !delegateMatch(el, b.Selector, e.Target) {
					return
				}
			case BindOutside:
				if e.Target == nil || el.Contains(e.Target) {
					return
				}
			}
			in.dispatch(b.Handler, e, el)
		})

		target.AddEventListener(b.Event, l)
		el.AddEventListener(in.unmountEvent, dom.Once(func(*dom.Event) {
			target.RemoveEventListener(b.Event, l)
		}))
	}
}

// delegateMatch reports whether target is, or is inside, a descendant of
// el matching selector.
func delegateMatch(el dom.Element, selector string, target dom.Element) bool {
	if target == nil {
		return false
	}
	matches, err := el.QuerySelectorAll(selector)
	if err != nil {
		return false
	}
	for _, m := range matches {
		if m.Contains(target) {
			return true
		}
	}
	return false
}

func (in *initializer) dispatch(h Handler, e *dom.Event, el dom.Element) {
	if in.reg.debug {
		in.reg.log.Debug().
			Str("component", in.name).
			Str("event", e.Type).
			Stringer("element", el).
			Msg("dispatch")
	}
	h(in.context(e, el))
}
