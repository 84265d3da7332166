package schedule

import (
	"context"
	"sync"
	"time"
)

// memQueue is an in-memory DelayedQueue with the same per-key replace
// semantics as RedisQueue.
type memQueue struct {
	mu   sync.Mutex
	jobs map[string]memJob
}

type memJob struct {
	payload []byte
	fireAt  time.Time
	attempt int
}

func newMemQueue() *memQueue {
	return &memQueue{jobs: make(map[string]memJob)}
}

func (q *memQueue) Enqueue(_ context.Context, key string, payload []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[key] = memJob{payload: payload, fireAt: time.Now().Add(delay)}
	return nil
}

func (q *memQueue) Retry(_ context.Context, job *Job, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.Key] = memJob{payload: job.Payload, fireAt: time.Now().Add(delay), attempt: job.Attempt + 1}
	return nil
}

func (q *memQueue) Cancel(_ context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.jobs, key)
	return nil
}

func (q *memQueue) Claim(_ context.Context, now time.Time) (*Job, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key, j := range q.jobs {
		if !j.fireAt.After(now) {
			delete(q.jobs, key)
			return &Job{Key: key, Payload: j.payload, Attempt: j.attempt}, true, nil
		}
	}
	return nil, false, nil
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *memQueue) peek(key string) (memJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[key]
	return j, ok
}
