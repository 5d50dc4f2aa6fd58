// Package decode implements incremental audio decoding driven by the host's
// frame loop.
//
// A [Job] binds one opened codec adapter to one destination audio clip that
// was allocated at its full length up front. Each call to [Job.Step] decodes
// at most one chunk and writes it into the clip at the job's cursor, so the
// cost of a step is bounded no matter how long the source is. A job never
// blocks and never spawns goroutines; it holds only plain state (cursor and
// totals) between steps.
//
// The [Scheduler] owns every registered job and is ticked once per host
// frame. Exactly one job is active at a time; the others are parked and keep
// their cursor until promoted again. Destroying a destination clip is the
// only way to cancel a job, and it is noticed on the job's next step.
//
// Example:
//
//	s := decode.NewScheduler(rt)
//	if _, err := s.Start("fs_song_music", clip, adapter); err != nil {
//	    return err
//	}
//	for s.Len() > 0 {
//	    s.Tick()
//	}
package decode
