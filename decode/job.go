package decode

import (
	"github.com/opd-ai/customalbums/codec"
	"github.com/opd-ai/customalbums/host"
	"github.com/sirupsen/logrus"
)

// ChunkSize is the maximum number of samples decoded per step.
const ChunkSize = 4096

// StepResult is the outcome of a single Step call.
type StepResult uint8

const (
	// StepContinue means the job is still live.
	StepContinue StepResult = iota
	// StepDone means every sample was delivered or the source ran dry.
	StepDone
	// StepAborted means the destination was destroyed before completion.
	StepAborted
)

func (r StepResult) String() string {
	switch r {
	case StepContinue:
		return "continue"
	case StepDone:
		return "done"
	case StepAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a job.
type State uint8

const (
	// StateRunning is the state from creation until a terminal step.
	StateRunning State = iota
	// StateDone is terminal: decoding finished.
	StateDone
	// StateAborted is terminal: the destination was destroyed.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Job is one in-flight decode into a pre-allocated destination clip.
type Job struct {
	name     string
	dst      host.Handle
	source   codec.Adapter
	total    int64
	channels int
	cursor   int64
	state    State
	steps    int
	released bool
	scratch  []float32
}

// NewJob creates a running job. The total sample count is taken from the
// adapter once, here.
func NewJob(name string, dst host.Handle, source codec.Adapter) *Job {
	channels := source.Channels()
	if channels < 1 {
		channels = 1
	}
	return &Job{
		name:     name,
		dst:      dst,
		source:   source,
		total:    source.TotalSamples(),
		channels: channels,
		state:    StateRunning,
	}
}

// Name returns the asset name the job is registered under.
func (j *Job) Name() string { return j.name }

// Destination returns the clip the job writes into.
func (j *Job) Destination() host.Handle { return j.dst }

// Format returns the source format identifier.
func (j *Job) Format() string { return j.source.Format() }

// Total returns the declared sample count.
func (j *Job) Total() int64 { return j.total }

// Cursor returns the number of samples delivered so far.
func (j *Job) Cursor() int64 { return j.cursor }

// Remaining returns the number of samples still to deliver.
func (j *Job) Remaining() int64 {
	if r := j.total - j.cursor; r > 0 {
		return r
	}
	return 0
}

// Steps returns the number of steps that performed work.
func (j *Job) Steps() int { return j.steps }

// State returns the lifecycle state.
func (j *Job) State() State { return j.state }

// Step advances the job by at most one chunk. A parked job (active false)
// only checks for cancellation. Steps on a finished job repeat its terminal
// result without side effects.
func (j *Job) Step(rt host.Runtime, active bool, chunk int) StepResult {
	switch j.state {
	case StateDone:
		return StepDone
	case StateAborted:
		return StepAborted
	}

	if !rt.Alive(j.dst) {
		j.release()
		j.state = StateAborted
		logrus.WithFields(logrus.Fields{
			"function": "Job.Step",
			"name":     j.name,
			"format":   j.source.Format(),
			"cursor":   j.cursor,
			"total":    j.total,
		}).Info("Aborting async load, destination destroyed")
		return StepAborted
	}

	if !active {
		return StepContinue
	}

	if chunk <= 0 {
		chunk = ChunkSize
	}
	want := int64(chunk)
	if r := j.Remaining(); r < want {
		want = r
	}
	if int64(cap(j.scratch)) < want {
		j.scratch = make([]float32, want)
	}
	buf := j.scratch[:want]

	n, err := j.source.Read(buf)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Job.Step",
			"name":     j.name,
			"cursor":   j.cursor,
			"error":    err.Error(),
		}).Warn("Decoder read failed, treating source as exhausted")
	}
	if n > 0 && !rt.SetClipData(j.dst, buf[:n], int(j.cursor/int64(j.channels))) {
		logrus.WithFields(logrus.Fields{
			"function": "Job.Step",
			"name":     j.name,
			"cursor":   j.cursor,
			"samples":  n,
		}).Warn("Host refused clip data, samples dropped")
	}
	j.cursor += int64(n)
	j.steps++

	if j.Remaining() > 0 && n != 0 {
		return StepContinue
	}

	j.release()
	j.state = StateDone
	logrus.WithFields(logrus.Fields{
		"function": "Job.Step",
		"name":     j.name,
		"samples":  j.cursor,
		"total":    j.total,
		"steps":    j.steps,
	}).Info("Finished async load")
	return StepDone
}

func (j *Job) release() {
	if j.released {
		return
	}
	j.released = true
	j.scratch = nil
	if err := j.source.Release(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Job.release",
			"name":     j.name,
			"error":    err.Error(),
		}).Warn("Failed to release decoder")
	}
}

// abort releases the source of a job whose destination is gone without
// waiting for its next step.
func (j *Job) abort() {
	if j.state != StateRunning {
		return
	}
	j.release()
	j.state = StateAborted
}
