package bind

import (
	"strings"
	"sync"

	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
)

// Scope resolves the names used in directive paths.
type Scope interface {
	Lookup(name string) (any, bool)
	Assign(name string, value any)
}

// StateScope exposes a reactive object as a scope.
func StateScope(state *reactive.Proxy) Scope {
	return stateScope{state: state}
}

type stateScope struct {
	state *reactive.Proxy
}

func (s stateScope) Lookup(name string) (any, bool) {
	v := s.state.Get(name)
	return v, v != nil || s.state.Has(name)
}

func (s stateScope) Assign(name string, value any) {
	s.state.Set(name, value)
}

// rowScope holds the loop alias and index of one row and delegates every
// other name to the scope the loop was declared in.
type rowScope struct {
	local  *reactive.Proxy
	parent Scope
}

func (s *rowScope) Lookup(name string) (any, bool) {
	if s.local.Has(name) {
		return s.local.Get(name), true
	}
	return s.parent.Lookup(name)
}

func (s *rowScope) Assign(name string, value any) {
	if s.local.Has(name) {
		s.local.Set(name, value)
		return
	}
	s.parent.Assign(name, value)
}

// keyScope resolves only the loop alias; used to evaluate data-key.
type keyScope struct {
	alias string
	item  any
}

func (s keyScope) Lookup(name string) (any, bool) {
	if name == s.alias {
		return s.item, true
	}
	return nil, false
}

func (keyScope) Assign(string, any) {}

// Context is the receiver of handlers and initializers: "el" is the bound
// node, every other name comes from the scope.
type Context struct {
	scope Scope
	el    *dom.Node
}

func NewContext(scope Scope, el *dom.Node) *Context {
	return &Context{scope: scope, el: el}
}

func (c *Context) El() *dom.Node {
	return c.el
}

func (c *Context) Scope() Scope {
	return c.scope
}

func (c *Context) Lookup(name string) (any, bool) {
	if name == "el" {
		return c.el, true
	}
	return c.scope.Lookup(name)
}

func (c *Context) Assign(name string, value any) {
	if name == "el" {
		return
	}
	c.scope.Assign(name, value)
}

// Get evaluates a dotted path.
func (c *Context) Get(path string) any {
	return Eval(c, path)
}

// Set assigns a top level name.
func (c *Context) Set(name string, value any) {
	c.Assign(name, value)
}

// Int reads a path as an int, zero when it is not one.
func (c *Context) Int(path string) int {
	n, _ := c.Get(path).(int)
	return n
}

// String reads a path as a string.
func (c *Context) String(path string) string {
	return dom.Stringify(c.Get(path))
}

// Proxy reads a path holding reactive state.
func (c *Context) Proxy(path string) *reactive.Proxy {
	p, _ := c.Get(path).(*reactive.Proxy)
	return p
}

var pathCache sync.Map

func pathParts(path string) []string {
	if parts, ok := pathCache.Load(path); ok {
		return parts.([]string)
	}
	parts := strings.Split(path, ".")
	pathCache.Store(path, parts)
	return parts
}

// Eval resolves a dotted path against a scope. A missing link anywhere along
// the path yields nil.
func Eval(scope Scope, path string) any {
	if !strings.Contains(path, ".") {
		v, _ := scope.Lookup(path)
		return v
	}
	parts := pathParts(path)
	v, _ := scope.Lookup(parts[0])
	for _, part := range parts[1:] {
		v = member(v, part)
		if v == nil {
			return nil
		}
	}
	return v
}

func member(v any, key string) any {
	switch x := v.(type) {
	case *reactive.Proxy:
		return x.Get(key)
	case Scope:
		v, _ := x.Lookup(key)
		return v
	case Refs:
		if n, ok := x[key]; ok {
			return n
		}
		return nil
	case map[string]any:
		return x[key]
	default:
		return nil
	}
}
