package bind

import (
	"strings"

	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
)

// binder walks the subtree of one component.
type binder struct {
	rt   *Runtime
	comp *Component
	root *dom.Node
}

func (b *binder) effect(fn func()) func() {
	return b.rt.sys.Effect(fn, reactive.Batched())
}

// walk binds the directives of el and its element children to scope. Every
// disposer created on the way is appended to d.
func (b *binder) walk(el *dom.Node, scope Scope, d *disposers) {
	if el.HasAttr(attrStatic) {
		return
	}
	if el != b.root && el.HasAttr(attrFunc) {
		return
	}

	if expr := el.GetAttr(attrIf); expr != "" {
		b.bindIf(el, expr, scope, d)
		return
	}

	if tokens := el.GetAttr(attrBind); tokens != "" {
		b.bindTokens(el, tokens, scope, d)
	}

	if el.Tag == "template" {
		if expr := el.GetAttr(attrLoop); expr != "" {
			loop, err := parseLoop(expr)
			if err == nil {
				b.bindLoop(el, loop, scope, d)
				return
			}
			b.rt.log.V(1).Info("inert loop", "reason", err.Error())
		}
	}

	if name := el.GetAttr(attrRef); name != "" {
		b.comp.refs[name] = el
	}

	b.bindContent(el, attrText, scope, d, b.rt.ops.Text)
	b.bindContent(el, attrHTML, scope, d, func(n *dom.Node, v any) {
		if err := b.rt.ops.HTML(n, v); err != nil {
			b.rt.log.Error(err, "html binding failed")
		}
	})
	b.bindContent(el, attrValue, scope, d, b.rt.ops.Value)

	for _, p := range parseArgPaths(el.GetAttr(attrProps)) {
		d.add(b.effect(func() {
			b.rt.ops.Prop(el, p.arg, Eval(scope, p.path))
		}))
	}
	for _, p := range parseArgPaths(el.GetAttr(attrClass)) {
		d.add(b.effect(func() {
			b.rt.ops.Class(el, p.arg, Eval(scope, p.path))
		}))
	}

	b.walkChildren(el, scope, d)
}

// walkChildren captures each next sibling before descending, so a child
// replaced by a marker does not end the traversal.
func (b *binder) walkChildren(parent *dom.Node, scope Scope, d *disposers) {
	for c := parent.FirstElementChild(); c != nil; {
		next := c.NextElementSibling()
		b.walk(c, scope, d)
		c = next
	}
}

func (b *binder) bindContent(el *dom.Node, attr string, scope Scope, d *disposers, apply func(*dom.Node, any)) {
	expr := el.GetAttr(attr)
	if expr == "" {
		return
	}
	path, once := strings.CutPrefix(expr, onceMarker)
	run := func() {
		apply(el, Eval(scope, path))
	}
	if once {
		run()
		return
	}
	d.add(b.effect(run))
}

// bindIf swaps el for a marker and keeps a freshly bound clone of it before
// the marker while the condition holds.
func (b *binder) bindIf(el *dom.Node, expr string, scope Scope, d *disposers) {
	if el.Parent() == nil {
		b.rt.log.V(1).Info("inert conditional", "reason", ErrDetached.Error(), "expr", expr)
		return
	}
	marker := dom.NewText("")
	el.ReplaceWith(marker)

	var (
		node  *dom.Node
		inner disposers
	)
	d.add(b.effect(func() {
		if dom.Truthy(Eval(scope, expr)) {
			if node != nil || marker.Parent() == nil {
				return
			}
			node = el.CloneNode(true)
			node.RemoveAttr(attrIf)
			b.rt.sys.Untracked(func() {
				b.walk(node, scope, &inner)
			})
			marker.Parent().InsertBefore(node, marker)
			return
		}
		if node != nil {
			inner.run()
			node.Remove()
			node = nil
		}
	}))
	d.add(inner.run)
}

func (b *binder) bindTokens(el *dom.Node, tokens string, scope Scope, d *disposers) {
	b.comp.router.bindScope(el, scope, d)
	for _, tok := range parseBindTokens(tokens) {
		if tok.event != "" {
			b.comp.router.listen(tok.event)
			b.comp.router.on(el, tok.event, tok.method)
			continue
		}
		call, ok := callable(Eval(scope, tok.init), NewContext(scope, el), nil)
		if !ok {
			continue
		}
		if err := invoke(call); err != nil {
			b.rt.log.Error(err, "initializer failed", "name", tok.init)
		}
	}
}
