// Package capsule attaches behavior to pieces of markup that are already
// in a page.
//
// A component is a name plus a list of hooks. Elements opt in by carrying
// the name as a class; mounting finds those elements, marks them as
// initialized and runs the hooks once per element. Unmounting reverses
// what the hooks attached so the element can be mounted again later.
//
// # Declaring components
//
//	reg := capsule.NewRegistry(doc)
//	c, err := reg.Declare("counter")
//	c.InnerHTML(`<button class="inc">+</button><span class="n">0</span>`)
//	c.Delegate(".inc").On("click", func(ctx *capsule.Context) {
//	    ctx.Emit("counter:changed", nil)
//	})
//
// The first mount runs when the host signals it is ready, so bindings
// added right after Declare still reach elements already in the tree.
// Later calls to Registry.Mount pick up elements added since.
//
// # Binding modes
//
// Handlers attach in one of five modes (see BindMode):
//   - direct: On("click", h) listens on the element
//   - delegated: Delegate(".btn").On("click", h) filters by descendant
//   - outside: Outside().On("click", h) fires for events elsewhere in the tree
//   - On(EventMount, h) runs after every other mount hook
//   - On(EventUnmount, h) runs once when the element is unmounted
//
// Every listener is paired with an unmount hook that removes exactly that
// listener, so Unmount leaves nothing attached.
//
// # Messaging
//
// Context.Emit dispatches a bubbling event from the element; ancestor
// components see it. Context.Pub delivers a non-bubbling event to every
// element that subscribed with Component.Sub, regardless of where it sits
// in the tree.
//
// # Hosts
//
// The registry runs against any dom.Host. The lib/dom package ships an
// in-memory HTML document; Fixture wraps it for tests.
package capsule
