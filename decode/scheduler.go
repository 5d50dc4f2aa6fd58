package decode

import (
	"fmt"

	"github.com/opd-ai/customalbums/codec"
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// FinishFunc is called after a job reaches a terminal state and has been
// removed from the scheduler.
type FinishFunc func(job *Job, result StepResult)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithChunkSize overrides the per-step sample budget.
func WithChunkSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.chunk = n
		}
	}
}

// WithAutoPromote makes the scheduler promote the oldest parked job when the
// active one finishes. By default the active slot stays empty until the next
// explicit promotion.
func WithAutoPromote(enabled bool) Option {
	return func(s *Scheduler) {
		s.autoPromote = enabled
	}
}

// Scheduler owns registered jobs and advances the active one per tick.
//
// It is not safe for concurrent use; every method must be called from the
// host's main thread.
type Scheduler struct {
	rt          host.Runtime
	chunk       int
	autoPromote bool

	jobs   map[string]*Job
	order  []string
	active string

	onFinish []FinishFunc
}

// NewScheduler creates an empty scheduler.
func NewScheduler(rt host.Runtime, opts ...Option) *Scheduler {
	s := &Scheduler{
		rt:    rt,
		chunk: ChunkSize,
		jobs:  make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChunkSize returns the per-step sample budget.
func (s *Scheduler) ChunkSize() int { return s.chunk }

// OnFinish registers a callback fired for every job that completes or aborts.
func (s *Scheduler) OnFinish(fn FinishFunc) {
	s.onFinish = append(s.onFinish, fn)
}

// Start creates and registers a job for name. The job becomes active unless
// another job already is. A registered job whose destination has already
// been destroyed is discarded to make room; a live one yields ErrJobExists.
func (s *Scheduler) Start(name string, dst host.Handle, source codec.Adapter) (*Job, error) {
	if dst.IsNil() || source == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJob, name)
	}

	if existing, ok := s.jobs[name]; ok {
		if s.rt.Alive(existing.dst) {
			return nil, fmt.Errorf("%w: %s", ErrJobExists, name)
		}
		existing.abort()
		s.remove(name)
		s.finish(existing, StepAborted)
	}

	job := NewJob(name, dst, source)
	s.jobs[name] = job
	s.order = append(s.order, name)

	promoted := false
	if s.active == "" {
		s.active = name
		promoted = true
	}

	logrus.WithFields(logrus.Fields{
		"function": "Scheduler.Start",
		"name":     name,
		"format":   source.Format(),
		"total":    job.total,
		"channels": job.channels,
		"active":   promoted,
	}).Info("Starting async load")

	return job, nil
}

// Promote makes the named job the active one. Its cursor is untouched.
func (s *Scheduler) Promote(name string) error {
	if _, ok := s.jobs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if s.active == name {
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "Scheduler.Promote",
		"name":     name,
		"previous": s.active,
	}).Info("Switching async load")

	s.active = name
	return nil
}

// Job returns the registered job for name.
func (s *Scheduler) Job(name string) (*Job, bool) {
	job, ok := s.jobs[name]
	return job, ok
}

// Active returns the active job, or nil.
func (s *Scheduler) Active() *Job {
	if s.active == "" {
		return nil
	}
	return s.jobs[s.active]
}

// ActiveName returns the name of the active job, or "".
func (s *Scheduler) ActiveName() string { return s.active }

// IsParked reports whether name is registered but not active.
func (s *Scheduler) IsParked(name string) bool {
	_, ok := s.jobs[name]
	return ok && s.active != name
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int { return len(s.jobs) }

// Names returns registered job names in registration order.
func (s *Scheduler) Names() []string {
	return append([]string(nil), s.order...)
}

// Tick steps every registered job once, in registration order.
//
// Only the job that was active when the tick began performs decode work,
// writing at most one chunk into its clip. Parked jobs are only checked for a
// destroyed destination. Jobs that finish or abort during the tick are
// removed before Tick returns, then the OnFinish callbacks run for each of
// them. With WithAutoPromote the oldest parked job takes over the active slot
// for the next tick.
//
// Tick must be called from the host's main thread, once per frame. It is a
// no-op when nothing is registered.
func (s *Scheduler) Tick() {
	if len(s.order) == 0 {
		return
	}

	active := s.active
	for _, name := range append([]string(nil), s.order...) {
		job, ok := s.jobs[name]
		if !ok {
			continue
		}
		result := job.Step(s.rt, name == active, s.chunk)
		if result == StepContinue {
			continue
		}
		s.remove(name)
		s.finish(job, result)
	}
}

// Close aborts every registered job in registration order, releasing its
// decoder, and fires the finish callbacks with StepAborted. The scheduler
// stays usable afterwards.
func (s *Scheduler) Close() {
	if len(s.order) == 0 {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function": "Scheduler.Close",
		"jobs":     len(s.order),
		"active":   s.active,
	}).Info("Aborting remaining async loads")

	autoPromote := s.autoPromote
	s.autoPromote = false
	defer func() { s.autoPromote = autoPromote }()

	for _, name := range append([]string(nil), s.order...) {
		job := s.jobs[name]
		job.abort()
		s.remove(name)
		s.finish(job, StepAborted)
	}
}

func (s *Scheduler) remove(name string) {
	delete(s.jobs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active != name {
		return
	}
	s.active = ""
	if s.autoPromote && len(s.order) > 0 {
		s.active = s.order[0]
		logrus.WithFields(logrus.Fields{
			"function": "Scheduler.remove",
			"finished": name,
			"promoted": s.active,
		}).Debug("Promoting next parked job")
	}
}

func (s *Scheduler) finish(job *Job, result StepResult) {
	for _, fn := range s.onFinish {
		fn(job, result)
	}
}
