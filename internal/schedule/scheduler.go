package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reminderLead is how far before the due date a reminder fires.
const reminderLead = 24 * time.Hour

// duePayload is the wire body of a todo-due-notification job. IDs travel as
// strings so the fired-job handler can reject malformed bodies instead of
// crashing the worker.
type duePayload struct {
	TodoID   string `json:"todoId"`
	UserID   string `json:"userId"`
	DueDate  string `json:"dueDate,omitempty"`
	NotifyAt string `json:"notifyAt,omitempty"`
}

// Scheduler owns the due-date reminder lifecycle: at most one pending job
// per todo at any time.
type Scheduler struct {
	queue DelayedQueue
	log   *zap.Logger
}

// NewScheduler returns a new Scheduler.
func NewScheduler(queue DelayedQueue, log *zap.Logger) *Scheduler {
	return &Scheduler{queue: queue, log: log}
}

func jobKeyForTodo(todoID uuid.UUID) string {
	return "todo:" + todoID.String() + ":due"
}

// ScheduleTodoDueNotification (re)arms the reminder for a todo. Any existing
// job under the todo's key is cancelled first; with no due date the method
// stops there. The reminder fires 24h before the due date, clamped to now
// for near-term dates — it is never silently dropped.
func (s *Scheduler) ScheduleTodoDueNotification(ctx context.Context, todoID, userID uuid.UUID, dueDate *time.Time) error {
	key := jobKeyForTodo(todoID)

	if err := s.queue.Cancel(ctx, key); err != nil {
		return fmt.Errorf("cancel existing reminder: %w", err)
	}
	if dueDate == nil {
		return nil
	}

	delay := time.Until(dueDate.Add(-reminderLead))
	if delay < 0 {
		delay = 0
	}

	payload, err := json.Marshal(duePayload{
		TodoID:   todoID.String(),
		UserID:   userID.String(),
		DueDate:  dueDate.UTC().Format(time.RFC3339),
		NotifyAt: time.Now().Add(delay).UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal reminder payload: %w", err)
	}

	if err := s.queue.Enqueue(ctx, key, payload, delay); err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	s.log.Debug("scheduled todo due reminder",
		zap.String("todo_id", todoID.String()),
		zap.Duration("delay", delay))
	return nil
}

// CancelTodoDueNotification disarms the reminder for a todo. No-op if none
// is pending.
func (s *Scheduler) CancelTodoDueNotification(ctx context.Context, todoID uuid.UUID) error {
	return s.queue.Cancel(ctx, jobKeyForTodo(todoID))
}
