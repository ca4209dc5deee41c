package bind

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/signalbind/dom"
)

// router delegates the data-bind handlers of one component to a single
// listener per event type on the component root.
type router struct {
	rt       *Runtime
	root     *dom.Node
	attached mapset.Set[string]
	removers []func()
	handlers map[*dom.Node]map[string]string
	scopes   map[*dom.Node]Scope
}

func newRouter(rt *Runtime, root *dom.Node) *router {
	return &router{
		rt:       rt,
		root:     root,
		attached: mapset.NewThreadUnsafeSet[string](),
		handlers: map[*dom.Node]map[string]string{},
		scopes:   map[*dom.Node]Scope{},
	}
}

// listen attaches the root listener for evt once.
func (r *router) listen(evt string) {
	if !r.attached.Add(evt) {
		return
	}
	remove := r.root.AddEventListener(evt, r.handle, captured.Contains(evt))
	r.removers = append(r.removers, remove)
}

// bindScope records the scope handlers on el are evaluated in. The entry
// goes away with d.
func (r *router) bindScope(el *dom.Node, scope Scope, d *disposers) {
	r.scopes[el] = scope
	d.add(func() {
		delete(r.scopes, el)
		delete(r.handlers, el)
	})
}

func (r *router) on(el *dom.Node, evt, method string) {
	m, ok := r.handlers[el]
	if !ok {
		m = map[string]string{}
		r.handlers[el] = m
	}
	m[evt] = method
}

// handle walks from the event target up to the root and runs every matching
// handler until one stops propagation.
func (r *router) handle(e *dom.Event) {
	stopped := false
	restore := e.WrapStopPropagation(func() {
		stopped = true
	})
	defer restore()

	end := r.root.Parent()
	for n := e.Target; n != nil && n != end && !stopped; n = n.Parent() {
		method, ok := r.handlers[n][e.Type]
		if !ok {
			continue
		}
		scope := r.scopes[n]
		var fn any
		r.rt.sys.Untracked(func() {
			fn = Eval(scope, method)
		})
		c := NewContext(scope, n)
		call, ok := callable(fn, c, e)
		if !ok {
			r.rt.log.V(1).Info("handler is not callable", "event", e.Type, "method", method)
			continue
		}
		var err error
		r.rt.sys.Untracked(func() {
			err = invoke(call)
		})
		if err != nil {
			r.rt.log.Error(err, "handler failed", "event", e.Type, "method", method)
		}
	}
}

func (r *router) close() {
	for _, remove := range r.removers {
		remove()
	}
	r.removers = nil
	r.attached.Clear()
	clear(r.handlers)
	clear(r.scopes)
}
