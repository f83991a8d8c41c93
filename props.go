package capsule

import (
	"github.com/a-h/templ"
)

// Attributes carrying encoded props on a component element.
const (
	PropsAttr       = "data-props"
	SealedPropsAttr = "data-props-sealed"
)

// PropsAttrs builds the attributes that mark an element as component name
// and carry props for Context.Props to decode at mount time.
//
// Spread the result onto the component's root element in a template:
//
//	attrs, err := capsule.PropsAttrs("counter", enc, CounterProps{Start: 3}, false)
//	<div { attrs... }></div>
//
// Signed props are readable by the client but tamper-proof; sensitive
// props are encrypted and opaque.
func PropsAttrs(name string, enc *Encoder, props any, sensitive bool) (templ.Attributes, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	attrs := templ.Attributes{"class": name}
	if props == nil {
		return attrs, nil
	}
	if enc == nil {
		return nil, ErrNoEncoder
	}

	encoded, err := enc.Encode(props, sensitive)
	if err != nil {
		return nil, err
	}
	if sensitive {
		attrs[SealedPropsAttr] = encoded
	} else {
		attrs[PropsAttr] = encoded
	}
	return attrs, nil
}
