package reactive

// ComputedKey is the single field of a computed box.
const ComputedKey = "value"

// Computed returns a reactive box whose ComputedKey field is kept equal to
// fn() by an internal effect. stop disposes that effect.
func (s *System) Computed(fn func() any) (box *Proxy, stop func()) {
	box = s.Wrap(NewObject(map[string]any{ComputedKey: nil}))
	stop = s.Effect(func() {
		box.Set(ComputedKey, fn())
	})
	return box, stop
}
