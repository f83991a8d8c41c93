package capsule

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/pthm/capsule/lib/dom"
	"github.com/rs/zerolog"
)

// EnvDebug names the environment variable that turns on dispatch
// logging for registries created without WithDebug.
const EnvDebug = "CAPSULE_DEBUG"

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger  zerolog.Logger
	debug   bool
	encoder *Encoder
}

// WithLogger sets the logger used for mount failures and, in debug mode,
// for every dispatched event. Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDebug overrides the CAPSULE_DEBUG environment default.
func WithDebug(on bool) Option {
	return func(o *options) {
		o.debug = on
	}
}

// WithEncoder sets the encoder used by Context.Props.
func WithEncoder(enc *Encoder) Option {
	return func(o *options) {
		o.encoder = enc
	}
}

func debugFromEnv() bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvDebug)))
	return err == nil && v
}

// Registry maps component names to their initializers and runs the
// mount/unmount lifecycle against one host tree.
//
// Names are permanent: there is no way to remove a declaration.
type Registry struct {
	mu         sync.RWMutex
	host       dom.Host
	components map[string]*initializer
	order      []string

	log     zerolog.Logger
	debug   bool
	encoder *Encoder
}

// NewRegistry creates an empty registry bound to host.
func NewRegistry(host dom.Host, opts ...Option) *Registry {
	o := &options{
		logger: zerolog.Nop(),
		debug:  debugFromEnv(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Registry{
		host:       host,
		components: make(map[string]*initializer),
		log:        o.logger,
		debug:      o.debug,
		encoder:    o.encoder,
	}
}

// Host returns the tree the registry mounts onto.
func (reg *Registry) Host() dom.Host {
	return reg.host
}

// Encoder returns the props encoder, or nil if none was configured.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Names returns the declared component names in declaration order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]string(nil), reg.order...)
}

// Declare registers a component and returns its builder.
//
// The first scan for the component is scheduled on the host's ready
// signal, so bindings added right after Declare apply to elements that
// are already in the tree.
func (reg *Registry) Declare(name string) (*Component, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	if _, exists := reg.components[name]; exists {
		reg.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	in := newInitializer(reg, name)
	reg.components[name] = in
	reg.order = append(reg.order, name)
	reg.mu.Unlock()

	reg.host.Ready(func() {
		if err := reg.Mount(name, nil); err != nil {
			reg.log.Error().Err(err).Str("component", name).Msg("initial mount failed")
		}
	})

	return &Component{in: in}, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must be a non-empty string", ErrInvalidName)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	}
	return nil
}

func (reg *Registry) lookup(name string) (*initializer, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	in, ok := reg.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	return in, nil
}

// Mount initializes every element under root that carries a component's
// class but not yet its initialized marker. An empty name mounts every
// declared component, in declaration order; a nil root means the whole
// host tree.
func (reg *Registry) Mount(name string, root dom.Element) error {
	var targets []*initializer
	if name == "" {
		reg.mu.RLock()
		for _, n := range reg.order {
			targets = append(targets, reg.components[n])
		}
		reg.mu.RUnlock()
	} else {
		in, err := reg.lookup(name)
		if err != nil {
			return err
		}
		targets = []*initializer{in}
	}

	if root == nil {
		root = reg.host
	}

	for _, in := range targets {
		els, err := root.QuerySelectorAll(in.selector)
		if err != nil {
			return fmt.Errorf("capsule: scan %q: %w", in.name, err)
		}
		for _, el := range els {
			in.mount(el)
		}
	}
	return nil
}

// Unmount reverses the attachment side effects of mounting name on el:
// listeners are detached, __unmount__ handlers run and the initialized
// marker is removed. el stays in the tree and can be mounted again.
func (reg *Registry) Unmount(name string, el dom.Element) error {
	in, err := reg.lookup(name)
	if err != nil {
		return err
	}
	if el == nil {
		return nil
	}
	el.DispatchEvent(dom.NewEvent(in.unmountEvent, nil, false))
	return nil
}

// Publish delivers a non-bubbling event of type typ to every element
// subscribed to it through Component.Sub, wherever it sits in the tree.
func (reg *Registry) Publish(typ string, data any) error {
	subs, err := reg.host.QuerySelectorAll(dom.ClassSelector(SubscriberClass(typ)))
	if err != nil {
		return fmt.Errorf("capsule: publish %q: %w", typ, err)
	}
	for _, el := range subs {
		el.DispatchEvent(dom.NewEvent(typ, data, false))
	}
	return nil
}

var (
	defaultMu  sync.RWMutex
	defaultReg *Registry
)

// SetDefault sets the registry used by the package-level functions.
func SetDefault(reg *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = reg
}

// Default returns the registry set by SetDefault, or nil.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}

func mustDefault() *Registry {
	reg := Default()
	if reg == nil {
		panic("capsule: no default registry, call SetDefault first")
	}
	return reg
}

// Declare registers a component on the default registry.
func Declare(name string) (*Component, error) {
	return mustDefault().Declare(name)
}

// Mount runs Registry.Mount on the default registry.
func Mount(name string, root dom.Element) error {
	return mustDefault().Mount(name, root)
}

// Unmount runs Registry.Unmount on the default registry.
func Unmount(name string, el dom.Element) error {
	return mustDefault().Unmount(name, el)
}
