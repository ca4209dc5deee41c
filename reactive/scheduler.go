package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-logr/logr"
)

// Job is a unit of deferred work. Jobs are deduplicated by identity, so they
// are usually pointers.
type Job interface {
	Run()
}

// Scheduler is a deduplicating job queue flushed once per host turn.
type Scheduler struct {
	log  logr.Logger
	post func(flush func())

	queue  []Job
	queued mapset.Set[Job]
	ran    mapset.Set[Job]

	// next holds jobs queued again after they already ran in the current
	// flush. They make up the following flush.
	next     []Job
	deferred mapset.Set[Job]

	running  Job
	pending  bool
	flushing bool
}

// NewScheduler creates a scheduler. post, when set, is called with Flush each
// time a flush becomes pending.
func NewScheduler(post func(flush func())) *Scheduler {
	return &Scheduler{
		log:      logr.Discard(),
		post:     post,
		queued:   mapset.NewThreadUnsafeSet[Job](),
		ran:      mapset.NewThreadUnsafeSet[Job](),
		deferred: mapset.NewThreadUnsafeSet[Job](),
	}
}

// Queue adds j unless it is already queued. The first job since the last
// flush makes a flush pending. During a flush a job queues itself in vain and
// a job that already ran is held for the next flush.
func (s *Scheduler) Queue(j Job) {
	if s.flushing {
		if j == s.running {
			return
		}
		if s.ran.Contains(j) {
			if s.deferred.Add(j) {
				s.next = append(s.next, j)
			}
			return
		}
	}
	if !s.queued.Add(j) {
		return
	}
	s.queue = append(s.queue, j)
	if s.pending {
		return
	}
	s.pending = true
	if s.post != nil {
		s.post(s.Flush)
	}
}

// Pending reports whether a flush is owed.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Len reports how many jobs are waiting.
func (s *Scheduler) Len() int {
	return len(s.queue) + len(s.next)
}

// Flush runs each queued job once, in queue order. Jobs queued while the
// flush is running and not yet run are picked up by the same flush.
func (s *Scheduler) Flush() {
	if !s.pending || s.flushing {
		return
	}
	s.flushing = true
	for i := 0; i < len(s.queue); i++ {
		j := s.queue[i]
		s.running = j
		s.run(j)
		s.ran.Add(j)
	}
	s.running = nil

	clear(s.queue)
	s.queue, s.next = s.next, s.queue[:0]
	s.queued, s.deferred = s.deferred, s.queued
	s.deferred.Clear()
	s.ran.Clear()
	s.flushing = false
	s.pending = len(s.queue) > 0
	if s.pending && s.post != nil {
		s.post(s.Flush)
	}
}

func (s *Scheduler) run(j Job) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Errorf("%v", r), "scheduled job panicked")
		}
	}()
	j.Run()
}
