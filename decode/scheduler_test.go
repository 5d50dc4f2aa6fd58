package decode

import (
	"testing"

	"github.com/opd-ai/customalbums/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startJob(t *testing.T, s *Scheduler, rt *host.Memory, name string, total int64) (*Job, *fakeAdapter, host.Handle) {
	t.Helper()
	src := newFakeAdapter(total, 2)
	clip := newClip(rt, total, 2)
	job, err := s.Start(name, clip, src)
	require.NoError(t, err)
	return job, src, clip
}

func TestSchedulerFirstJobBecomesActive(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	a, _, _ := startJob(t, s, rt, "a", 10000)
	startJob(t, s, rt, "b", 10000)

	assert.Equal(t, a, s.Active())
	assert.Equal(t, "a", s.ActiveName())
	assert.True(t, s.IsParked("b"))
	assert.False(t, s.IsParked("a"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Names())
}

func TestSchedulerOnlyActiveAdvances(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	a, _, _ := startJob(t, s, rt, "a", 100000)
	b, _, _ := startJob(t, s, rt, "b", 100000)

	s.Tick()
	s.Tick()

	assert.Equal(t, int64(2*ChunkSize), a.Cursor())
	assert.Equal(t, int64(0), b.Cursor())
}

func TestSchedulerPromotePreservesCursors(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	a, _, _ := startJob(t, s, rt, "a", 100000)
	b, _, _ := startJob(t, s, rt, "b", 100000)

	s.Tick()
	require.NoError(t, s.Promote("b"))
	s.Tick()
	s.Tick()

	assert.Equal(t, int64(ChunkSize), a.Cursor())
	assert.Equal(t, int64(2*ChunkSize), b.Cursor())

	require.NoError(t, s.Promote("a"))
	s.Tick()

	assert.Equal(t, int64(2*ChunkSize), a.Cursor())
	assert.Equal(t, int64(2*ChunkSize), b.Cursor())
}

func TestSchedulerPromoteUnknown(t *testing.T) {
	s := NewScheduler(host.NewMemory())
	assert.ErrorIs(t, s.Promote("missing"), ErrJobNotFound)
}

func TestSchedulerCompletionClearsActive(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	var finished []string
	s.OnFinish(func(job *Job, result StepResult) {
		finished = append(finished, job.Name()+":"+result.String())
	})

	startJob(t, s, rt, "a", 88200)
	b, _, _ := startJob(t, s, rt, "b", 100)

	ticks := 0
	for {
		s.Tick()
		ticks++
		if _, ok := s.Job("a"); !ok {
			break
		}
		require.Less(t, ticks, 100)
	}

	assert.Equal(t, 22, ticks)
	assert.Equal(t, []string{"a:done"}, finished)
	assert.Nil(t, s.Active())
	assert.Equal(t, "", s.ActiveName())

	// Without auto promotion the parked job waits for an explicit promote.
	s.Tick()
	assert.Equal(t, int64(0), b.Cursor())
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerAutoPromote(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt, WithAutoPromote(true), WithChunkSize(50))

	startJob(t, s, rt, "a", 100)
	b, _, _ := startJob(t, s, rt, "b", 100)

	s.Tick()
	s.Tick()
	assert.Equal(t, "b", s.ActiveName())
	assert.Equal(t, int64(0), b.Cursor(), "promoted job must not work in the tick that finished the previous one")

	s.Tick()
	assert.Equal(t, int64(50), b.Cursor())
}

func TestSchedulerDestroyedDestinationRemovedOnce(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	removals := 0
	s.OnFinish(func(job *Job, result StepResult) {
		assert.Equal(t, StepAborted, result)
		removals++
	})

	_, src, clip := startJob(t, s, rt, "a", 100000)
	s.Tick()
	rt.Destroy(clip)

	for i := 0; i < 5; i++ {
		s.Tick()
	}

	assert.Equal(t, 1, removals)
	assert.Equal(t, 1, src.releases)
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Active())
}

func TestSchedulerParkedJobAbortKeepsActive(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	startJob(t, s, rt, "a", 100000)
	_, srcB, clipB := startJob(t, s, rt, "b", 100000)

	rt.Destroy(clipB)
	s.Tick()

	assert.Equal(t, "a", s.ActiveName())
	_, ok := s.Job("b")
	assert.False(t, ok)
	assert.Equal(t, 1, srcB.releases)
}

func TestSchedulerStartDuplicate(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	startJob(t, s, rt, "a", 1000)
	_, err := s.Start("a", newClip(rt, 1000, 2), newFakeAdapter(1000, 2))
	assert.ErrorIs(t, err, ErrJobExists)
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerStartReplacesDeadJob(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	var results []StepResult
	s.OnFinish(func(job *Job, result StepResult) { results = append(results, result) })

	_, oldSrc, oldClip := startJob(t, s, rt, "a", 1000)
	rt.Destroy(oldClip)

	job, src, _ := startJob(t, s, rt, "a", 1000)

	assert.Equal(t, 1, oldSrc.releases)
	assert.Equal(t, []StepResult{StepAborted}, results)
	assert.Equal(t, job, s.Active())
	assert.Equal(t, 0, src.releases)
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerStartInvalid(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt)

	_, err := s.Start("a", host.Nil, newFakeAdapter(10, 2))
	assert.ErrorIs(t, err, ErrInvalidJob)

	_, err = s.Start("a", rt.NewAudioClip("a", 5, 2, 44100), nil)
	assert.ErrorIs(t, err, ErrInvalidJob)
}

func TestSchedulerTickEmpty(t *testing.T) {
	s := NewScheduler(host.NewMemory())
	assert.NotPanics(t, s.Tick)
	assert.Equal(t, ChunkSize, s.ChunkSize())
}

func TestSchedulerCloseAbortsRemainingJobs(t *testing.T) {
	rt := host.NewMemory()
	s := NewScheduler(rt, WithAutoPromote(true))

	a, srcA, _ := startJob(t, s, rt, "a", 100000)
	b, srcB, _ := startJob(t, s, rt, "b", 100000)
	s.Tick()

	var finished []string
	s.OnFinish(func(job *Job, r StepResult) {
		assert.Equal(t, StepAborted, r)
		finished = append(finished, job.Name())
	})

	s.Close()

	assert.Equal(t, []string{"a", "b"}, finished)
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Active())
	assert.Equal(t, 1, srcA.releases)
	assert.Equal(t, 1, srcB.releases)
	assert.Equal(t, StateAborted, a.State())
	assert.Equal(t, StateAborted, b.State())

	s.Close()
	assert.Equal(t, 1, srcA.releases)
	assert.Len(t, finished, 2)

	// Still usable after Close, with auto-promotion restored.
	startJob(t, s, rt, "c", 10)
	startJob(t, s, rt, "d", 10)
	s.Tick()
	assert.Equal(t, "d", s.ActiveName())
}
