package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyDelayed  = "jobs:delayed"
	keyPayloads = "jobs:payload"
)

// claimScript pops at most one due job atomically: the member leaves the
// ZSET and its payload leaves the HASH in the same step, so a concurrent
// Cancel or Enqueue for the same key can never observe a half-claimed job.
var claimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, 1)
if #due == 0 then
  return false
end
local key = due[1]
redis.call('ZREM', KEYS[1], key)
local payload = redis.call('HGET', KEYS[2], key)
redis.call('HDEL', KEYS[2], key)
return {key, payload}
`)

type jobEnvelope struct {
	Attempt int             `json:"attempt"`
	Payload json.RawMessage `json:"payload"`
}

// RedisQueue is a delayed job queue on a Redis sorted set: member = job key,
// score = fire time. ZADD on an existing member overwrites its score and the
// payload HSET overwrites the body, so Enqueue is an atomic per-key replace.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue returns a new RedisQueue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Enqueue(ctx context.Context, key string, payload []byte, delay time.Duration) error {
	return q.enqueue(ctx, key, payload, delay, 0)
}

// Retry re-enqueues a claimed job with its attempt counter bumped.
func (q *RedisQueue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	return q.enqueue(ctx, job.Key, job.Payload, delay, job.Attempt+1)
}

func (q *RedisQueue) enqueue(ctx context.Context, key string, payload []byte, delay time.Duration, attempt int) error {
	if delay < 0 {
		delay = 0
	}
	body, err := json.Marshal(jobEnvelope{Attempt: attempt, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal job envelope: %w", err)
	}
	fireAt := float64(time.Now().Add(delay).UnixMilli())

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, keyDelayed, redis.Z{Score: fireAt, Member: key})
		pipe.HSet(ctx, keyPayloads, key, body)
		return nil
	})
	return err
}

func (q *RedisQueue) Cancel(ctx context.Context, key string) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, keyDelayed, key)
		pipe.HDel(ctx, keyPayloads, key)
		return nil
	})
	return err
}

func (q *RedisQueue) Claim(ctx context.Context, now time.Time) (*Job, bool, error) {
	res, err := claimScript.Run(ctx, q.rdb, []string{keyDelayed, keyPayloads},
		now.UnixMilli()).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	parts, ok := res.([]any)
	if !ok || len(parts) != 2 {
		return nil, false, fmt.Errorf("claim: unexpected script reply %T", res)
	}
	key, _ := parts[0].(string)
	body, _ := parts[1].(string)

	var env jobEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, false, fmt.Errorf("decode job envelope for %q: %w", key, err)
	}
	return &Job{Key: key, Payload: env.Payload, Attempt: env.Attempt}, true, nil
}
