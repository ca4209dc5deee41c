package bind

import (
	"reflect"

	"github.com/delaneyj/signalbind/dom"
	"github.com/delaneyj/signalbind/reactive"
)

// row is one rendered item of a loop. Its nodes are the siblings from head
// to tail inclusive.
type row struct {
	head, tail *dom.Node
	local      *reactive.Proxy
	disposers  disposers
}

func (r *row) nodes() []*dom.Node {
	if r.head == nil {
		return nil
	}
	var nodes []*dom.Node
	for n := r.head; n != nil; n = n.NextSibling() {
		nodes = append(nodes, n)
		if n == r.tail {
			break
		}
	}
	return nodes
}

func (r *row) remove() {
	for _, n := range r.nodes() {
		n.Remove()
	}
	r.disposers.run()
}

// reconciler keeps the rows of one template in step with a reactive array,
// moving existing nodes instead of re-creating them.
type reconciler struct {
	b      *binder
	tmpl   *dom.Node
	loop   loopExpr
	keyBy  string
	scope  Scope
	marker *dom.Node
	pool   map[any]*row
}

func (b *binder) bindLoop(tmpl *dom.Node, loop loopExpr, scope Scope, d *disposers) {
	if tmpl.Parent() == nil {
		b.rt.log.V(1).Info("inert loop", "reason", ErrDetached.Error(), "source", loop.source)
		return
	}
	r := &reconciler{
		b:      b,
		tmpl:   tmpl,
		loop:   loop,
		keyBy:  tmpl.GetAttr(attrKey),
		scope:  scope,
		marker: dom.NewText(""),
		pool:   map[any]*row{},
	}
	tmpl.ReplaceWith(r.marker)
	d.add(b.effect(r.reconcile))
	d.add(r.dispose)
}

func (r *reconciler) reconcile() {
	list, ok := Eval(r.scope, r.loop.source).(*reactive.Proxy)
	if !ok || !list.IsArray() {
		return
	}
	parent := r.marker.Parent()
	if parent == nil {
		return
	}

	n := list.Len()
	next := make(map[any]*row, n)
	anchor := r.marker
	for i := n - 1; i >= 0; i-- {
		item := list.At(i)
		key := r.key(item, i)

		rw, reused := r.pool[key]
		if reused {
			delete(r.pool, key)
			rw.local.Set(r.loop.alias, item)
			if r.loop.index != "" {
				rw.local.Set(r.loop.index, i)
			}
		} else if prev, dup := next[key]; dup {
			// a duplicate key takes over the row rendered for the later item
			rw, reused = prev, true
			rw.local.Set(r.loop.alias, item)
			if r.loop.index != "" {
				rw.local.Set(r.loop.index, i)
			}
		} else {
			rw = r.newRow(item, i)
		}
		next[key] = rw

		nodes := rw.nodes()
		if len(nodes) == 0 {
			continue
		}
		if rw.tail.NextSibling() != anchor {
			if reused {
				r.b.rt.log.V(2).Info("moving row", "key", key, "index", i)
			}
			for _, node := range nodes {
				parent.InsertBefore(node, anchor)
			}
		}
		anchor = rw.head
	}

	for _, rw := range r.pool {
		rw.remove()
	}
	r.pool = next
}

// key evaluates data-key against the item alone, falling back to the index
// when there is no key path or the key cannot index a map.
func (r *reconciler) key(item any, i int) any {
	if r.keyBy == "" {
		return i
	}
	k := Eval(keyScope{alias: r.loop.alias, item: item}, r.keyBy)
	if k != nil && !reflect.TypeOf(k).Comparable() {
		r.b.rt.log.V(1).Info("row key is not comparable, using index", "key", r.keyBy)
		return i
	}
	return k
}

func (r *reconciler) newRow(item any, i int) *row {
	rt := r.b.rt
	fields := map[string]any{r.loop.alias: item}
	if r.loop.index != "" {
		fields[r.loop.index] = i
	}
	local := reactive.NewObject(nil)
	for k, v := range fields {
		local.Put(k, v)
	}
	rw := &row{local: rt.sys.Wrap(local)}
	scope := &rowScope{local: rw.local, parent: r.scope}

	frag := r.tmpl.Content().CloneNode(true)
	if first := frag.FirstChild(); first != nil && dynamic(first) {
		frag.InsertBefore(dom.NewText(""), first)
	}
	rt.sys.Untracked(func() {
		r.b.walkChildren(frag, scope, &rw.disposers)
	})
	rw.head, rw.tail = frag.FirstChild(), frag.LastChild()
	return rw
}

// dynamic reports whether a directive may put other nodes in front of n.
func dynamic(n *dom.Node) bool {
	if !n.IsElement() || n.HasAttr(attrStatic) {
		return false
	}
	return n.HasAttr(attrIf) || (n.Tag == "template" && n.HasAttr(attrLoop))
}

func (r *reconciler) dispose() {
	for _, rw := range r.pool {
		rw.disposers.run()
	}
	r.pool = map[any]*row{}
}
