package reactive

import "strconv"

// Proxy is the observed view over one raw container. Every read and write of
// reactive state goes through it.
type Proxy struct {
	sys    *System
	target Target
}

// Reactive returns the proxy for a raw container, creating it on first use.
// Proxies and every other value pass through untouched.
func (s *System) Reactive(v any) any {
	t, ok := v.(Target)
	if !ok {
		return v
	}
	return s.Wrap(t)
}

// Wrap is Reactive for a known container.
func (s *System) Wrap(t Target) *Proxy {
	slot := t.slot()
	if *slot == nil {
		*slot = &Proxy{sys: s, target: t}
	}
	return *slot
}

func (p *Proxy) System() *System {
	return p.sys
}

// Raw returns the wrapped container.
func (p *Proxy) Raw() Target {
	return p.target
}

// Get tracks the key and returns its value, wrapping containers on the way
// out.
func (p *Proxy) Get(key string) any {
	p.sys.Track(p.target, key)
	v, _ := p.target.get(key)
	return p.sys.Reactive(v)
}

// Has reports whether the key exists, without tracking.
func (p *Proxy) Has(key string) bool {
	_, ok := p.target.get(key)
	return ok
}

// Set writes the key and notifies dependents when the value changed. Index
// writes on arrays also notify LengthKey. Writes the container rejects, such
// as a non-index key on an array, notify nobody.
func (p *Proxy) Set(key string, value any) {
	value = unwrap(value)
	old, _ := p.target.get(key)
	if !p.target.set(key, value) {
		return
	}
	if sameValue(old, value) {
		return
	}
	p.sys.Trigger(p.target, key)
	if _, ok := p.target.(*Array); ok {
		if _, isIndex := indexKey(key); isIndex {
			p.sys.Trigger(p.target, LengthKey)
		}
	}
}

func (p *Proxy) IsArray() bool {
	_, ok := p.target.(*Array)
	return ok
}

// Len tracks and returns LengthKey. Objects report zero.
func (p *Proxy) Len() int {
	n, _ := p.Get(LengthKey).(int)
	return n
}

func (p *Proxy) At(i int) any {
	return p.Get(strconv.Itoa(i))
}

func (p *Proxy) SetAt(i int, value any) {
	p.Set(strconv.Itoa(i), value)
}

// Push appends values one index write at a time.
func (p *Proxy) Push(values ...any) {
	a, ok := p.target.(*Array)
	if !ok {
		return
	}
	for _, v := range values {
		p.SetAt(a.Len(), v)
	}
}

// SetLength truncates or extends an array.
func (p *Proxy) SetLength(n int) {
	p.Set(LengthKey, n)
}

// Items tracks the length and every element and returns them in order.
func (p *Proxy) Items() []any {
	n := p.Len()
	items := make([]any, n)
	for i := range items {
		items[i] = p.At(i)
	}
	return items
}
