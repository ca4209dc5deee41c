package bind

import (
	"fmt"

	"github.com/delaneyj/signalbind/dom"
)

// Handler is the preferred shape of an event handler stored in state.
type Handler func(c *Context, e *dom.Event) error

// Initializer is the preferred shape of a data-bind initializer or of the
// "init" hook run after mount.
type Initializer func(c *Context) error

// callable adapts the function shapes accepted in state. ok is false when v
// is not callable.
func callable(v any, c *Context, e *dom.Event) (call func() error, ok bool) {
	switch fn := v.(type) {
	case Handler:
		return func() error { return fn(c, e) }, true
	case func(*Context, *dom.Event) error:
		return func() error { return fn(c, e) }, true
	case func(*Context, *dom.Event):
		return func() error { fn(c, e); return nil }, true
	case Initializer:
		return func() error { return fn(c) }, true
	case func(*Context) error:
		return func() error { return fn(c) }, true
	case func(*Context):
		return func() error { fn(c); return nil }, true
	case func() error:
		return fn, true
	case func():
		return func() error { fn(); return nil }, true
	default:
		return nil, false
	}
}

// invoke runs call, turning a panic into an error.
func invoke(call func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", rerr)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return call()
}
