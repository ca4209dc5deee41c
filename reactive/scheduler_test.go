package reactive_test

import (
	"testing"

	"github.com/delaneyj/signalbind/reactive"
	"github.com/stretchr/testify/assert"
)

type countJob struct {
	runs int
	fn   func()
}

func (j *countJob) Run() {
	j.runs++
	if j.fn != nil {
		j.fn()
	}
}

func TestSchedulerDedup(t *testing.T) {
	s := reactive.NewScheduler(nil)
	j := &countJob{}

	s.Queue(j)
	s.Queue(j)
	assert.Equal(t, 1, s.Len())

	s.Flush()
	assert.Equal(t, 1, j.runs)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerPostsOncePerFlush(t *testing.T) {
	var posted []func()
	s := reactive.NewScheduler(func(flush func()) {
		posted = append(posted, flush)
	})

	a, b := &countJob{}, &countJob{}
	s.Queue(a)
	s.Queue(b)
	assert.Len(t, posted, 1)

	posted[0]()
	assert.Equal(t, 1, a.runs)
	assert.Equal(t, 1, b.runs)

	s.Queue(a)
	assert.Len(t, posted, 2)
}

func TestSchedulerRunsJobsQueuedDuringFlush(t *testing.T) {
	s := reactive.NewScheduler(nil)
	var order []string

	late := &countJob{fn: func() { order = append(order, "late") }}
	var first *countJob
	first = &countJob{fn: func() {
		order = append(order, "first")
		s.Queue(late)
		// still running, so this is a no-op
		s.Queue(first)
	}}

	s.Queue(first)
	s.Flush()
	assert.Equal(t, []string{"first", "late"}, order)
	assert.Equal(t, 1, first.runs)
	assert.False(t, s.Pending())
}

func TestSchedulerRecoversPanickingJob(t *testing.T) {
	s := reactive.NewScheduler(nil)
	bad := &countJob{fn: func() { panic("boom") }}
	good := &countJob{}

	s.Queue(bad)
	s.Queue(good)
	assert.NotPanics(t, s.Flush)
	assert.Equal(t, 1, good.runs)
	assert.False(t, s.Pending())
}

func TestSchedulerDefersFinishedJobToNextFlush(t *testing.T) {
	var posted int
	s := reactive.NewScheduler(func(func()) { posted++ })
	var order []string

	a := &countJob{}
	a.fn = func() { order = append(order, "a") }
	b := &countJob{fn: func() {
		order = append(order, "b")
		s.Queue(a)
	}}

	s.Queue(a)
	s.Queue(b)
	s.Flush()
	assert.Equal(t, []string{"a", "b"}, order)
	assert.True(t, s.Pending())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, posted, "the follow-up flush is posted too")

	s.Flush()
	assert.Equal(t, []string{"a", "b", "a"}, order)
	assert.Equal(t, 2, a.runs)
	assert.False(t, s.Pending())
	assert.Zero(t, s.Len())
}
