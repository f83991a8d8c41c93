package dom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is an in-memory host tree parsed from HTML.
//
// A Document is not safe for concurrent use: like a browser page it is
// driven from a single event loop.
type Document struct {
	*Node

	nodes     map[*html.Node]*Node
	selectors map[string]cascadia.Selector

	complete bool
	pending  []func()
}

// Node is an element (or the document node) of a Document.
type Node struct {
	doc       *Document
	n         *html.Node
	listeners map[string][]*Listener
}

var (
	_ Host    = (*Document)(nil)
	_ Element = (*Node)(nil)
)

// Parse reads an HTML document. The returned document is still loading;
// call Complete to resolve its ready signal.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	d := &Document{
		nodes:     make(map[*html.Node]*Node),
		selectors: make(map[string]cascadia.Selector),
	}
	d.Node = d.node(root)
	return d, nil
}

// ParseString is Parse for a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Ready implements Host. Callbacks never run inside Ready: they are
// queued and run, in order, by Complete or by a later Flush once the
// document is complete.
func (d *Document) Ready(fn func()) {
	d.pending = append(d.pending, fn)
}

// Complete marks the document as fully loaded and flushes the ready
// queue. Later calls only flush.
func (d *Document) Complete() {
	d.complete = true
	d.Flush()
}

// Flush runs queued ready callbacks if the document is complete,
// including callbacks queued while flushing.
func (d *Document) Flush() {
	if !d.complete {
		return
	}
	for len(d.pending) > 0 {
		fn := d.pending[0]
		d.pending = d.pending[1:]
		fn()
	}
}

// IsComplete reports whether Complete has been called.
func (d *Document) IsComplete() bool {
	return d.complete
}

// Body returns the <body> element.
func (d *Document) Body() *Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	if body := find(d.n); body != nil {
		return d.node(body)
	}
	return nil
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.n)
}

// String implements fmt.Stringer.
func (d *Document) String() string {
	return "#document"
}

// node returns the wrapper for n, creating it on first use.
func (d *Document) node(n *html.Node) *Node {
	if w, ok := d.nodes[n]; ok {
		return w
	}
	w := &Node{doc: d, n: n}
	d.nodes[n] = w
	return w
}

// forget drops wrappers for a subtree that left the document. Wrappers
// still holding listeners are kept so the detached element can be
// dispatched on, and unmounted, through the same value.
func (d *Document) forget(n *html.Node) {
	if w, ok := d.nodes[n]; ok && len(w.listeners) == 0 {
		delete(d.nodes, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func (d *Document) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	d.selectors[selector] = sel
	return sel, nil
}

// Tag returns the element's tag name, empty for non-element nodes.
func (n *Node) Tag() string {
	if n.n.Type != html.ElementNode {
		return ""
	}
	return n.n.Data
}

func (n *Node) classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

// Classes returns the element's class tokens in attribute order.
func (n *Node) Classes() []string {
	return n.classes()
}

// AddClass appends each class not already present. Empty names are skipped.
func (n *Node) AddClass(names ...string) {
	if n.n.Type != html.ElementNode {
		return
	}
	cls := n.classes()
	changed := false
	for _, name := range names {
		if name == "" || slices.Contains(cls, name) {
			continue
		}
		cls = append(cls, name)
		changed = true
	}
	if changed {
		n.SetAttr("class", strings.Join(cls, " "))
	}
}

// RemoveClass removes every occurrence of the given classes.
func (n *Node) RemoveClass(names ...string) {
	cls := n.classes()
	kept := cls[:0]
	for _, c := range cls {
		if !slices.Contains(names, c) {
			kept = append(kept, c)
		}
	}
	if len(kept) != len(n.classes()) {
		n.SetAttr("class", strings.Join(kept, " "))
	}
}

// HasClass reports whether the class attribute holds name as a token.
func (n *Node) HasClass(name string) bool {
	return slices.Contains(n.classes(), name)
}

// Attr returns the value of an attribute and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, adding it if missing.
func (n *Node) SetAttr(name, value string) {
	if n.n.Type != html.ElementNode {
		return
	}
	for i, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.n.Attr[i].Val = value
			return
		}
	}
	n.n.Attr = append(n.n.Attr, html.Attribute{Key: name, Val: value})
}

// SetInnerHTML replaces the children with markup parsed in the element's context.
func (n *Node) SetInnerHTML(markup string) error {
	if n.n.Type != html.ElementNode {
		return fmt.Errorf("dom: cannot set content of %s", n)
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), n.n)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	for c := n.n.FirstChild; c != nil; {
		next := c.NextSibling
		n.n.RemoveChild(c)
		n.doc.forget(c)
		c = next
	}
	for _, c := range nodes {
		n.n.AppendChild(c)
	}
	return nil
}

// InnerHTML renders the element's children.
func (n *Node) InnerHTML() string {
	var buf bytes.Buffer
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders the element itself.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n.n)
	return buf.String()
}

// QuerySelector returns the first matching descendant, or nil.
func (n *Node) QuerySelector(selector string) (Element, error) {
	sel, err := n.doc.compile(selector)
	if err != nil {
		return nil, err
	}
	var found *Node
	n.walk(func(c *html.Node) bool {
		if sel.Match(c) {
			found = n.doc.node(c)
			return false
		}
		return true
	})
	if found == nil {
		return nil, nil
	}
	return found, nil
}

// QuerySelectorAll returns matching descendants in document order.
func (n *Node) QuerySelectorAll(selector string) ([]Element, error) {
	sel, err := n.doc.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []Element
	n.walk(func(c *html.Node) bool {
		if sel.Match(c) {
			out = append(out, n.doc.node(c))
		}
		return true
	})
	return out, nil
}

// walk visits element descendants in pre-order until fn returns false.
func (n *Node) walk(fn func(*html.Node) bool) {
	var visit func(*html.Node) bool
	visit = func(p *html.Node) bool {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !fn(c) {
				return false
			}
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(n.n)
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other Element) bool {
	var target *html.Node
	switch o := other.(type) {
	case *Node:
		target = o.n
	case *Document:
		target = o.n
	default:
		return false
	}
	for p := target; p != nil; p = p.Parent {
		if p == n.n {
			return true
		}
	}
	return false
}

// AddEventListener registers l for typ. Adding the same listener twice is a no-op.
func (n *Node) AddEventListener(typ string, l *Listener) {
	if l == nil {
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]*Listener)
	}
	if slices.Contains(n.listeners[typ], l) {
		return
	}
	n.listeners[typ] = append(n.listeners[typ], l)
}

// RemoveEventListener unregisters l. Unknown listeners are ignored.
func (n *Node) RemoveEventListener(typ string, l *Listener) {
	list := n.listeners[typ]
	i := slices.Index(list, l)
	if i < 0 {
		return
	}
	list = slices.Delete(slices.Clone(list), i, i+1)
	if len(list) == 0 {
		delete(n.listeners, typ)
		return
	}
	n.listeners[typ] = list
}

// ListenerCount returns how many listeners are registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent runs listeners on the element, then on each ancestor
// while the event bubbles. The propagation path is fixed before the
// first listener runs.
func (n *Node) DispatchEvent(e *Event) {
	if e.Target == nil {
		e.Target = n
	}
	var path []*html.Node
	if e.Bubbles {
		for p := n.n.Parent; p != nil; p = p.Parent {
			path = append(path, p)
		}
	}

	// The target runs its own listeners even when detached from the tree.
	n.handle(e)
	for _, p := range path {
		if e.stopped {
			return
		}
		if w, ok := n.doc.nodes[p]; ok {
			w.handle(e)
		}
	}
}

func (n *Node) handle(e *Event) {
	snapshot := slices.Clone(n.listeners[e.Type])
	for _, l := range snapshot {
		// Listeners removed by an earlier listener in this dispatch are skipped.
		if !slices.Contains(n.listeners[e.Type], l) {
			continue
		}
		if l.once {
			n.RemoveEventListener(e.Type, l)
		}
		e.CurrentTarget = n
		l.Handle(e)
	}
}

// String identifies the node as tag#id.class for logs.
func (n *Node) String() string {
	switch n.n.Type {
	case html.DocumentNode:
		return "#document"
	case html.ElementNode:
	default:
		return "#node"
	}
	var b strings.Builder
	b.WriteString(n.n.Data)
	if id, ok := n.Attr("id"); ok && id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	for _, c := range n.classes() {
		b.WriteString(".")
		b.WriteString(c)
	}
	return b.String()
}
