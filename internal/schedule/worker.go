package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationCreator materializes a user-visible notification when a
// reminder fires. Satisfied by service.NotificationService.
type NotificationCreator interface {
	CreateForUser(ctx context.Context, userID uuid.UUID, title, message string, relatedTodoID *uuid.UUID) (dom.NotificationState, error)
}

// WorkerConfig tunes polling and the queue-level retry policy.
type WorkerConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Worker drains due reminder jobs from the queue and dispatches them.
// Delivery is fire-once: a handled job is consumed, and only a handler
// failure re-enqueues it, with exponential backoff up to MaxAttempts.
type Worker struct {
	queue         DelayedQueue
	notifications NotificationCreator
	cfg           WorkerConfig
	log           *zap.Logger
}

// NewWorker returns a new Worker.
func NewWorker(queue DelayedQueue, notifications NotificationCreator, cfg WorkerConfig, log *zap.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 30 * time.Second
	}
	return &Worker{queue: queue, notifications: notifications, cfg: cfg, log: log}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims every currently-due job.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, ok, err := w.queue.Claim(ctx, time.Now())
		if err != nil {
			w.log.Error("claim job", zap.Error(err))
			return
		}
		if !ok {
			return
		}
		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	payload, err := parseDuePayload(job.Payload)
	if err != nil {
		// Malformed jobs are dropped, not raised: there is no caller left
		// to receive the error.
		w.log.Warn("dropping malformed reminder job",
			zap.String("job_key", job.Key), zap.Error(err))
		return
	}

	message := fmt.Sprintf("Your todo %s is due at %s.", payload.todoID, payload.dueDate)
	_, err = w.notifications.CreateForUser(ctx, payload.userID, "Todo due soon", message, &payload.todoID)
	if err == nil {
		w.log.Info("created due notification",
			zap.String("todo_id", payload.todoID.String()),
			zap.String("user_id", payload.userID.String()))
		return
	}

	if job.Attempt+1 < w.cfg.MaxAttempts {
		backoff := w.cfg.RetryBackoff << uint(job.Attempt)
		w.log.Warn("reminder handler failed, retrying",
			zap.String("job_key", job.Key),
			zap.Int("attempt", job.Attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if rerr := w.queue.Retry(ctx, job, backoff); rerr != nil {
			w.log.Error("requeue reminder job", zap.String("job_key", job.Key), zap.Error(rerr))
		}
		return
	}
	w.log.Error("reminder job exhausted retries",
		zap.String("job_key", job.Key),
		zap.Int("attempts", job.Attempt+1),
		zap.Error(err))
}

type firedReminder struct {
	todoID  uuid.UUID
	userID  uuid.UUID
	dueDate string
}

func parseDuePayload(raw []byte) (*firedReminder, error) {
	var p duePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.TodoID == "" || p.UserID == "" {
		return nil, fmt.Errorf("payload missing todoId or userId")
	}
	todoID, err := uuid.Parse(p.TodoID)
	if err != nil {
		return nil, fmt.Errorf("bad todoId: %w", err)
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("bad userId: %w", err)
	}
	return &firedReminder{todoID: todoID, userID: userID, dueDate: p.DueDate}, nil
}
