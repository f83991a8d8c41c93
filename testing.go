package capsule

import (
	"fmt"

	"github.com/pthm/capsule/lib/dom"
)

// Fixture pairs an in-memory document with a registry for tests.
//
// Declare components on f.Registry, then call Start to fire the ready
// signal and run the initial mount:
//
//	f, err := capsule.NewFixture(`<button class="counter"></button>`)
//	c, _ := f.Registry.Declare("counter")
//	c.On("click", func(ctx *capsule.Context) { clicks++ })
//	f.Start()
//	f.Click(".counter")
type Fixture struct {
	Doc      *dom.Document
	Registry *Registry
}

// NewFixture parses markup and creates a registry bound to it.
func NewFixture(markup string, opts ...Option) (*Fixture, error) {
	doc, err := dom.ParseString(markup)
	if err != nil {
		return nil, err
	}
	return &Fixture{Doc: doc, Registry: NewRegistry(doc, opts...)}, nil
}

// Start completes the document, running every scheduled mount. Calling
// it again runs mounts scheduled by later declarations.
func (f *Fixture) Start() {
	f.Doc.Complete()
}

// Find returns the first element matching selector, or nil.
func (f *Fixture) Find(selector string) dom.Element {
	el, err := f.Doc.QuerySelector(selector)
	if err != nil {
		return nil
	}
	return el
}

// Dispatch fires a bubbling event of type typ on the first element
// matching selector.
func (f *Fixture) Dispatch(selector, typ string, detail any) error {
	el := f.Find(selector)
	if el == nil {
		return fmt.Errorf("capsule: no element matches %q", selector)
	}
	el.DispatchEvent(dom.NewEvent(typ, detail, true))
	return nil
}

// Click is Dispatch for a "click" event without detail.
func (f *Fixture) Click(selector string) error {
	return f.Dispatch(selector, "click", nil)
}

// HTML returns the inner HTML of the first element matching selector.
func (f *Fixture) HTML(selector string) string {
	el := f.Find(selector)
	if n, ok := el.(*dom.Node); ok {
		return n.InnerHTML()
	}
	return ""
}
