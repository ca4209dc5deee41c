package reactive

import (
	"cmp"
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
)

// System owns one dependency graph, the stack of running effects and the
// batching scheduler. It is not safe for concurrent use; callers serialize
// access (see bind.EventLoop).
type System struct {
	log       logr.Logger
	graph     map[Target]map[string]depSet
	active    *Effect
	stack     []*Effect
	nextID    uint64
	scheduler *Scheduler
}

type depSet = mapset.Set[*Effect]

// subscription is one entry of an effect's subscription list. Target and key
// are kept so empty sets can be pruned from the graph on cleanup.
type subscription struct {
	target Target
	key    string
	set    depSet
}

type Option func(*System)

// WithLogger sets the sink for recovered panics and other diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(s *System) {
		s.log = log
	}
}

// WithPost installs the host hook that is handed the scheduler flush whenever
// the first job since the last flush is queued. Without it the host drives
// flushing through Flush.
func WithPost(post func(flush func())) Option {
	return func(s *System) {
		s.scheduler.post = post
	}
}

func NewSystem(opts ...Option) *System {
	s := &System{
		log:   logr.Discard(),
		graph: map[Target]map[string]depSet{},
	}
	s.scheduler = NewScheduler(nil)
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler.log = s.log
	return s
}

func (s *System) Scheduler() *Scheduler {
	return s.scheduler
}

// maxFlushes bounds Flush so effects that keep re-queueing each other cannot
// spin forever.
const maxFlushes = 1_000

// Flush runs scheduler flushes until nothing is pending, so effects that were
// triggered again after they ran also settle.
func (s *System) Flush() {
	for i := 0; s.scheduler.Pending(); i++ {
		if i == maxFlushes {
			s.log.Error(fmt.Errorf("%d jobs still queued", s.scheduler.Len()), "flush did not settle")
			return
		}
		s.scheduler.Flush()
	}
}

// Active returns the effect currently collecting dependencies, if any.
func (s *System) Active() *Effect {
	return s.active
}

// Track records that the active effect depends on (target, key).
func (s *System) Track(target Target, key string) {
	e := s.active
	if e == nil {
		return
	}

	keys, ok := s.graph[target]
	if !ok {
		keys = map[string]depSet{}
		s.graph[target] = keys
	}
	dep, ok := keys[key]
	if !ok {
		dep = mapset.NewThreadUnsafeSet[*Effect]()
		keys[key] = dep
	}
	if dep.Contains(e) {
		return
	}
	dep.Add(e)
	e.deps = append(e.deps, subscription{target: target, key: key, set: dep})
}

// Trigger notifies every effect subscribed to (target, key), in creation
// order. Effects with a scheduler are handed to it, the rest run inline.
func (s *System) Trigger(target Target, key string) {
	dep, ok := s.graph[target][key]
	if !ok {
		return
	}

	effects := dep.ToSlice()
	slices.SortFunc(effects, func(a, b *Effect) int {
		return cmp.Compare(a.id, b.id)
	})
	for _, e := range effects {
		// an effect writing a key it reads must not recurse into itself
		if e == s.active {
			continue
		}
		if e.scheduler != nil {
			e.scheduler(e)
		} else {
			e.Run()
		}
	}
}

// Untracked runs fn with no active effect, so nothing read inside it becomes
// a dependency of the caller.
func (s *System) Untracked(fn func()) {
	s.push(nil)
	defer s.pop()
	fn()
}

func (s *System) push(e *Effect) {
	s.stack = append(s.stack, s.active)
	s.active = e
}

func (s *System) pop() {
	last := len(s.stack) - 1
	s.active = s.stack[last]
	s.stack = s.stack[:last]
}

func (s *System) cleanup(e *Effect) {
	for _, sub := range e.deps {
		sub.set.Remove(e)
		if sub.set.Cardinality() != 0 {
			continue
		}
		keys := s.graph[sub.target]
		// the key may already hold a newer set with live subscribers
		if cur, ok := keys[sub.key]; !ok || cur.Cardinality() != 0 {
			continue
		}
		delete(keys, sub.key)
		if len(keys) == 0 {
			delete(s.graph, sub.target)
		}
	}
	e.deps = e.deps[:0]
}

// Subscribers reports how many effects depend on (target, key).
func (s *System) Subscribers(target Target, key string) int {
	dep, ok := s.graph[target][key]
	if !ok {
		return 0
	}
	return dep.Cardinality()
}

// TrackedTargets reports how many targets have at least one subscriber.
func (s *System) TrackedTargets() int {
	return len(s.graph)
}
