package reactive

// Effect is a computation that re-subscribes to whatever it reads each time
// it runs.
type Effect struct {
	id        uint64
	sys       *System
	fn        func()
	scheduler func(*Effect)
	deps      []subscription
	disposed  bool
}

type EffectOption func(*Effect)

// WithScheduler hands the effect to fn on trigger instead of running it.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// Batched defers re-runs to the system scheduler, coalescing every trigger
// before the next flush into a single run.
func Batched() EffectOption {
	return func(e *Effect) {
		e.scheduler = func(e *Effect) {
			e.sys.scheduler.Queue(e)
		}
	}
}

// NewEffect creates an effect and runs it once to seed its subscriptions.
func (s *System) NewEffect(fn func(), opts ...EffectOption) *Effect {
	s.nextID++
	e := &Effect{
		id:  s.nextID,
		sys: s,
		fn:  fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Run()
	return e
}

// Effect is NewEffect returning only the disposer.
func (s *System) Effect(fn func(), opts ...EffectOption) (stop func()) {
	return s.NewEffect(fn, opts...).Dispose
}

func (e *Effect) ID() uint64 {
	return e.id
}

// Run drops every current subscription, then runs the computation as the
// active effect. The previously active effect is restored afterwards.
func (e *Effect) Run() {
	if e.disposed {
		return
	}
	e.sys.cleanup(e)
	e.sys.push(e)
	defer e.sys.pop()
	e.fn()
}

// Dispose unsubscribes the effect from everything. A pending scheduled run
// becomes a no-op. Safe to call more than once.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.sys.cleanup(e)
}

func (e *Effect) Disposed() bool {
	return e.disposed
}

// Deps reports how many dependency sets the effect is subscribed to.
func (e *Effect) Deps() int {
	return len(e.deps)
}
