package capsule

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"
	"github.com/pthm/capsule/lib/dom"
)

// Pseudo event names. Binding a handler to EventMount runs it after all
// other mount hooks; binding to EventUnmount runs it when the element is
// unmounted.
const (
	EventMount   = "__mount__"
	EventUnmount = "__unmount__"
)

// initMarker suffixes the private class that flags an initialized element.
const initMarker = "-💊"

// subscriberPrefix prefixes the class that subscribes an element to
// published events.
const subscriberPrefix = "sub:"

// Handler receives the context of a dispatched event.
type Handler func(ctx *Context)

// SubscriberClass returns the class that subscribes an element to
// events published with type typ.
func SubscriberClass(typ string) string {
	return subscriberPrefix + typ
}

// InitClass returns the private class added to elements once name has
// been mounted on them.
func InitClass(name string) string {
	return name + initMarker
}

// initializer holds everything needed to mount one component.
type initializer struct {
	reg          *Registry
	name         string
	initClass    string
	selector     string
	unmountEvent string

	// hooks are structural: markers, content and listeners. mountHooks are
	// the __mount__ handlers and always run after every structural hook.
	hooks      []Handler
	mountHooks []Handler
}

func newInitializer(reg *Registry, name string) *initializer {
	in := &initializer{
		reg:          reg,
		name:         name,
		initClass:    InitClass(name),
		unmountEvent: EventUnmount + ":" + name,
	}
	in.selector = dom.ClassSelector(name) + ":not(" + dom.ClassSelector(in.initClass) + ")"

	// The marker hook is always first so that nothing run later in the
	// mount can select this element again.
	in.hooks = []Handler{func(ctx *Context) {
		el := ctx.El
		el.AddClass(in.name, in.initClass)
		el.AddEventListener(in.unmountEvent, dom.Once(func(*dom.Event) {
			el.RemoveClass(in.initClass)
		}))
	}}
	return in
}

func (in *initializer) addHook(h Handler) {
	in.reg.mu.Lock()
	defer in.reg.mu.Unlock()
	in.hooks = append(in.hooks, h)
}

func (in *initializer) addMountHook(h Handler) {
	in.reg.mu.Lock()
	defer in.reg.mu.Unlock()
	in.mountHooks = append(in.mountHooks, h)
}

func (in *initializer) snapshot() (hooks, mountHooks []Handler) {
	in.reg.mu.RLock()
	defer in.reg.mu.RUnlock()
	return append([]Handler(nil), in.hooks...), append([]Handler(nil), in.mountHooks...)
}

// mount runs the hooks on el unless it is already initialized. A hook
// that mounts again re-enters here and finds the marker already set.
func (in *initializer) mount(el dom.Element) {
	if el.HasClass(in.initClass) {
		return
	}
	hooks, mountHooks := in.snapshot()
	ev := dom.NewEvent(EventMount, nil, false)
	ev.Target = el
	ctx := in.context(ev, el)
	for _, h := range hooks {
		h(ctx)
	}
	for _, h := range mountHooks {
		h(ctx)
	}
}

func (in *initializer) context(e *dom.Event, el dom.Element) *Context {
	return &Context{Event: e, El: el, component: in.name, reg: in.reg}
}

// Component is the builder returned by Declare. Every method appends a
// hook that runs when an element is mounted; elements mounted before the
// call are not affected.
type Component struct {
	in *initializer
}

// Name returns the component name, which is also its public class.
func (c *Component) Name() string {
	return c.in.name
}

// Selector returns the selector matching elements not yet mounted.
func (c *Component) Selector() string {
	return c.in.selector
}

// Is adds classes to each mounted element. Tokens are split on
// whitespace.
func (c *Component) Is(classes ...string) *Component {
	var tokens []string
	for _, cls := range classes {
		tokens = append(tokens, strings.Fields(cls)...)
	}
	if len(tokens) == 0 {
		return c
	}
	c.in.addHook(func(ctx *Context) {
		ctx.El.AddClass(tokens...)
	})
	return c
}

// Sub subscribes mounted elements to events published with the given
// types. Pair it with On to handle them.
func (c *Component) Sub(types ...string) *Component {
	classes := make([]string, 0, len(types))
	for _, typ := range types {
		if typ != "" {
			classes = append(classes, SubscriberClass(typ))
		}
	}
	return c.Is(classes...)
}

// InnerHTML replaces the content of each mounted element with markup.
func (c *Component) InnerHTML(markup string) *Component {
	c.in.addHook(func(ctx *Context) {
		if err := ctx.El.SetInnerHTML(markup); err != nil {
			c.in.reg.log.Error().Err(err).
				Str("component", c.in.name).
				Stringer("element", ctx.El).
				Msg("set content failed")
		}
	})
	return c
}

// Render replaces the content of each mounted element with the output of
// a templ component, rendered once per element.
func (c *Component) Render(tc templ.Component) *Component {
	c.in.addHook(func(ctx *Context) {
		var buf bytes.Buffer
		if err := tc.Render(context.Background(), &buf); err != nil {
			c.in.reg.log.Error().Err(err).
				Str("component", c.in.name).
				Stringer("element", ctx.El).
				Msg("render failed")
			return
		}
		if err := ctx.El.SetInnerHTML(buf.String()); err != nil {
			c.in.reg.log.Error().Err(err).
				Str("component", c.in.name).
				Stringer("element", ctx.El).
				Msg("set content failed")
		}
	})
	return c
}
