package bind

import "github.com/delaneyj/signalbind/dom"

// Ops applies a bound value to a single node. dom.Ops is the default.
type Ops interface {
	Text(n *dom.Node, v any)
	HTML(n *dom.Node, v any) error
	Value(n *dom.Node, v any)
	Prop(n *dom.Node, name string, v any)
	Class(n *dom.Node, name string, v any)
}

var _ Ops = dom.Ops{}
