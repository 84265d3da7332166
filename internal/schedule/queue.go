package schedule

import (
	"context"
	"time"
)

// Job is a claimed unit of deferred work.
type Job struct {
	Key     string
	Payload []byte
	Attempt int
}

// DelayedQueue is the job-queue contract the scheduler and worker run on.
// Enqueue under an existing key replaces the previous job atomically, which
// is what makes cancel-then-enqueue rescheduling race-free per key.
type DelayedQueue interface {
	// Enqueue schedules payload to become claimable after delay. A zero or
	// negative delay makes it claimable immediately.
	Enqueue(ctx context.Context, key string, payload []byte, delay time.Duration) error
	// Cancel removes any pending job under key. No-op if none exists.
	Cancel(ctx context.Context, key string) error
	// Claim atomically removes and returns one due job, if any. A claimed
	// job is consumed: re-delivery only happens via Enqueue or Retry.
	Claim(ctx context.Context, now time.Time) (*Job, bool, error)
	// Retry re-enqueues a claimed job with the attempt counter bumped.
	Retry(ctx context.Context, job *Job, delay time.Duration) error
}
