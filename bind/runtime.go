package bind

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
	"github.com/go-logr/logr"
)

// Factory builds the raw state of a component. Anything other than a
// *reactive.Object (or a map[string]any literal) skips the mount.
type Factory func(s *Setup) any

// Refs maps data-ref names to nodes. It is stored in component state as a
// plain value, so writes to it never notify anyone.
type Refs map[string]*dom.Node

// Runtime holds the factory registry and mounts components onto dom trees.
// Like reactive.System it is single threaded; EventLoop serializes access
// from other goroutines.
type Runtime struct {
	sys       *reactive.System
	log       logr.Logger
	ops       Ops
	factories map[string]Factory
	mounted   mapset.Set[*dom.Node]
}

type Option func(*Runtime)

func WithLogger(log logr.Logger) Option {
	return func(rt *Runtime) {
		rt.log = log
	}
}

// WithOps replaces the node operation table.
func WithOps(ops Ops) Option {
	return func(rt *Runtime) {
		rt.ops = ops
	}
}

// WithSystem shares an existing reactive system, e.g. one configured with a
// post hook.
func WithSystem(sys *reactive.System) Option {
	return func(rt *Runtime) {
		rt.sys = sys
	}
}

func New(opts ...Option) *Runtime {
	rt := &Runtime{
		log:       logr.Discard(),
		ops:       dom.Ops{},
		factories: map[string]Factory{},
		mounted:   mapset.NewThreadUnsafeSet[*dom.Node](),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.sys == nil {
		rt.sys = reactive.NewSystem(reactive.WithLogger(rt.log))
	}
	return rt
}

func (rt *Runtime) System() *reactive.System {
	return rt.sys
}

// Register binds a factory to the name used in data-func. A later call with
// the same name replaces it.
func (rt *Runtime) Register(name string, f Factory) {
	rt.factories[name] = f
}

// Flush applies every pending batched update.
func (rt *Runtime) Flush() {
	rt.sys.Flush()
}

// Dispatch delivers e to target and then flushes, the way a host finishes
// one task.
func (rt *Runtime) Dispatch(target *dom.Node, e *dom.Event) bool {
	ok := target.DispatchEvent(e)
	rt.Flush()
	return ok
}

// Start mounts every data-func root under doc in document order and
// returns the components that mounted.
func (rt *Runtime) Start(doc *dom.Node) []*Component {
	var comps []*Component
	for _, root := range doc.ElementsWithAttr(attrFunc) {
		if c := rt.Mount(root); c != nil {
			comps = append(comps, c)
		}
	}
	return comps
}

// Mount is MountErr with the reason only logged.
func (rt *Runtime) Mount(root *dom.Node) *Component {
	c, err := rt.MountErr(root)
	if err != nil {
		rt.log.V(1).Info("skipping mount", "func", root.GetAttr(attrFunc), "reason", err.Error())
		return nil
	}
	return c
}

// MountErr mounts one root and flushes. It fails when the root is already
// mounted, its factory is unknown, panics or returns something that is not
// an object.
func (rt *Runtime) MountErr(root *dom.Node) (*Component, error) {
	if !rt.mounted.Add(root) {
		return nil, ErrAlreadyMounted
	}
	name := root.GetAttr(attrFunc)
	f, ok := rt.factories[name]
	if !ok {
		rt.mounted.Remove(root)
		return nil, fmt.Errorf("%w: %q", ErrNoFactory, name)
	}

	c := &Component{
		rt:      rt,
		name:    name,
		root:    root,
		refs:    Refs{},
		mounted: true,
	}
	var (
		raw  *reactive.Object
		ferr error
	)
	rt.sys.Untracked(func() {
		ferr = invoke(func() error {
			raw = asObject(f(&Setup{rt: rt, comp: c}))
			return nil
		})
	})
	if ferr != nil {
		c.disposers.run()
		rt.mounted.Remove(root)
		return nil, fmt.Errorf("%w: %q: %w", ErrFactoryFailed, name, ferr)
	}
	if raw == nil {
		c.disposers.run()
		rt.mounted.Remove(root)
		return nil, fmt.Errorf("%w: %q", ErrNotObject, name)
	}

	raw.Put("refs", c.refs)
	raw.Put("root", root)
	c.state = rt.sys.Wrap(raw)
	c.router = newRouter(rt, root)

	b := &binder{rt: rt, comp: c, root: root}
	rt.sys.Untracked(func() {
		b.walk(root, StateScope(c.state), &c.disposers)
		if call, ok := callable(c.state.Get("init"), NewContext(StateScope(c.state), root), nil); ok {
			if err := invoke(call); err != nil {
				rt.log.Error(err, "init failed", "func", name)
			}
		}
	})
	// settle what binding queued so the root renders before control returns
	rt.Flush()
	return c, nil
}

func asObject(v any) *reactive.Object {
	switch x := v.(type) {
	case *reactive.Object:
		return x
	case *reactive.Proxy:
		o, _ := x.Raw().(*reactive.Object)
		return o
	case map[string]any:
		return reactive.NewObject(x)
	default:
		return nil
	}
}

// Setup is handed to a Factory.
type Setup struct {
	rt   *Runtime
	comp *Component
}

func (s *Setup) System() *reactive.System {
	return s.rt.sys
}

// Computed returns a reactive box whose "value" field tracks fn. The box
// lives as long as the component.
func (s *Setup) Computed(fn func() any) *reactive.Proxy {
	box, stop := s.rt.sys.Computed(fn)
	s.comp.disposers.add(stop)
	return box
}

// Reactive wraps a raw container with the runtime's system.
func (s *Setup) Reactive(v any) any {
	return s.rt.sys.Reactive(v)
}

// Component is one mounted root. It owns its state, every effect created
// while binding its subtree and its delegated listeners.
type Component struct {
	rt        *Runtime
	name      string
	root      *dom.Node
	state     *reactive.Proxy
	refs      Refs
	router    *router
	disposers disposers
	mounted   bool
}

func (c *Component) Name() string           { return c.name }
func (c *Component) Root() *dom.Node        { return c.root }
func (c *Component) State() *reactive.Proxy { return c.state }
func (c *Component) Refs() Refs             { return c.refs }
func (c *Component) Mounted() bool          { return c.mounted }

// Unmount removes the component's listeners and disposes its effects. The
// tree is left as rendered. Calling it again does nothing.
func (c *Component) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.router.close()
	c.disposers.run()
	c.rt.mounted.Remove(c.root)
}

// disposers collects cleanup funcs in creation order.
type disposers []func()

func (d *disposers) add(fn func()) {
	*d = append(*d, fn)
}

func (d *disposers) run() {
	fns := *d
	*d = nil
	for _, fn := range fns {
		fn()
	}
}
