package reactive

import (
	"reflect"
	"sort"
	"strconv"
)

const LengthKey = "length"

// Target is a raw state container. Only *Object and *Array implement it.
type Target interface {
	get(key string) (any, bool)
	// set reports whether the container accepted the write.
	set(key string, value any) bool
	slot() **Proxy
}

// Object is a raw keyed record.
type Object struct {
	fields map[string]any
	proxy  *Proxy
}

func NewObject(fields map[string]any) *Object {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Object{fields: fields}
}

func (o *Object) get(key string) (any, bool) {
	v, ok := o.fields[key]
	if !ok {
		return nil, false
	}
	if n, changed := normalize(v); changed {
		o.fields[key] = n
		v = n
	}
	return v, true
}

func (o *Object) set(key string, value any) bool {
	o.fields[key] = value
	return true
}

func (o *Object) slot() **Proxy {
	return &o.proxy
}

// Peek reads a field without tracking.
func (o *Object) Peek(key string) any {
	v, _ := o.get(key)
	return v
}

// Put writes a field without notifying anyone.
func (o *Object) Put(key string, value any) {
	o.set(key, unwrap(value))
}

// Keys returns the field names in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Array is a raw ordered sequence. Its keys are decimal indices plus
// LengthKey.
type Array struct {
	items []any
	proxy *Proxy
}

func NewArray(items ...any) *Array {
	return &Array{items: items}
}

func (a *Array) get(key string) (any, bool) {
	if key == LengthKey {
		return len(a.items), true
	}
	i, ok := indexKey(key)
	if !ok || i >= len(a.items) {
		return nil, false
	}
	v := a.items[i]
	if n, changed := normalize(v); changed {
		a.items[i] = n
		v = n
	}
	return v, true
}

func (a *Array) set(key string, value any) bool {
	if key == LengthKey {
		n, ok := value.(int)
		if !ok || n < 0 {
			return false
		}
		a.resize(n)
		return true
	}
	i, ok := indexKey(key)
	if !ok {
		return false
	}
	if i >= len(a.items) {
		a.resize(i + 1)
	}
	a.items[i] = value
	return true
}

func (a *Array) resize(n int) {
	if n <= len(a.items) {
		clear(a.items[n:])
		a.items = a.items[:n]
		return
	}
	a.items = append(a.items, make([]any, n-len(a.items))...)
}

func (a *Array) slot() **Proxy {
	return &a.proxy
}

func (a *Array) Len() int {
	return len(a.items)
}

// Peek reads an element without tracking.
func (a *Array) Peek(i int) any {
	v, _ := a.get(strconv.Itoa(i))
	return v
}

func indexKey(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// normalize turns plain Go literals into containers the first time they are
// read, so they get a stable identity.
func normalize(v any) (any, bool) {
	switch x := v.(type) {
	case map[string]any:
		return NewObject(x), true
	case []any:
		return NewArray(x...), true
	default:
		return v, false
	}
}

// unwrap stores raw containers, never proxies, inside raw state.
func unwrap(v any) any {
	if p, ok := v.(*Proxy); ok {
		return p.target
	}
	return v
}

// sameValue reports identity-style equality. Values of uncomparable types
// (funcs, maps, slices) are never the same.
func sameValue(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
