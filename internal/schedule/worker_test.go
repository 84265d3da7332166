package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeCreator struct {
	calls []createdCall
	fail  int // fail this many calls before succeeding
}

type createdCall struct {
	userID  uuid.UUID
	title   string
	message string
	todoID  *uuid.UUID
}

func (f *fakeCreator) CreateForUser(_ context.Context, userID uuid.UUID, title, message string, relatedTodoID *uuid.UUID) (dom.NotificationState, error) {
	f.calls = append(f.calls, createdCall{userID: userID, title: title, message: message, todoID: relatedTodoID})
	if f.fail > 0 {
		f.fail--
		return dom.NotificationState{}, errors.New("db down")
	}
	return dom.NotificationState{ID: uuid.New(), UserID: userID}, nil
}

func newTestWorker(q DelayedQueue, c NotificationCreator) *Worker {
	return NewWorker(q, c, WorkerConfig{
		PollInterval: time.Millisecond,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}, zap.NewNop())
}

func TestWorkerFiresDueReminder(t *testing.T) {
	q := newMemQueue()
	s := NewScheduler(q, zap.NewNop())
	creator := &fakeCreator{}
	w := newTestWorker(q, creator)

	todoID, userID := uuid.New(), uuid.New()
	due := time.Now().Add(time.Hour) // clamps to immediately claimable
	if err := s.ScheduleTodoDueNotification(context.Background(), todoID, userID, &due); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	w.drain(context.Background())

	if len(creator.calls) != 1 {
		t.Fatalf("%d notifications created, want 1", len(creator.calls))
	}
	call := creator.calls[0]
	if call.userID != userID {
		t.Fatalf("notified user %s, want %s", call.userID, userID)
	}
	if call.title != "Todo due soon" {
		t.Fatalf("title %q", call.title)
	}
	if call.todoID == nil || *call.todoID != todoID {
		t.Fatal("related todo id missing")
	}
	if q.len() != 0 {
		t.Fatal("job not consumed after delivery")
	}
}

func TestWorkerDeliversOnce(t *testing.T) {
	q := newMemQueue()
	s := NewScheduler(q, zap.NewNop())
	creator := &fakeCreator{}
	w := newTestWorker(q, creator)

	due := time.Now().Add(time.Hour)
	_ = s.ScheduleTodoDueNotification(context.Background(), uuid.New(), uuid.New(), &due)

	w.drain(context.Background())
	w.drain(context.Background())

	if len(creator.calls) != 1 {
		t.Fatalf("%d notifications created, want 1", len(creator.calls))
	}
}

func TestWorkerDropsMalformedPayload(t *testing.T) {
	q := newMemQueue()
	creator := &fakeCreator{}
	w := newTestWorker(q, creator)

	_ = q.Enqueue(context.Background(), "todo:bogus:due", []byte(`{"todoId":"not-a-uuid"}`), 0)
	w.drain(context.Background())

	if len(creator.calls) != 0 {
		t.Fatal("malformed job reached the notification sink")
	}
	if q.len() != 0 {
		t.Fatal("malformed job was re-enqueued")
	}
}

func TestWorkerRetriesWithBackoff(t *testing.T) {
	q := newMemQueue()
	s := NewScheduler(q, zap.NewNop())
	creator := &fakeCreator{fail: 1}
	w := newTestWorker(q, creator)

	todoID := uuid.New()
	due := time.Now().Add(time.Hour)
	_ = s.ScheduleTodoDueNotification(context.Background(), todoID, uuid.New(), &due)

	w.drain(context.Background())
	if len(creator.calls) != 1 {
		t.Fatalf("%d attempts after first drain, want 1", len(creator.calls))
	}
	job, ok := q.peek(jobKeyForTodo(todoID))
	if !ok {
		t.Fatal("failed job was not re-enqueued")
	}
	if job.attempt != 1 {
		t.Fatalf("attempt %d after retry, want 1", job.attempt)
	}

	time.Sleep(5 * time.Millisecond)
	w.drain(context.Background())
	if len(creator.calls) != 2 {
		t.Fatalf("%d attempts after retry, want 2", len(creator.calls))
	}
	if q.len() != 0 {
		t.Fatal("job still pending after successful retry")
	}
}

func TestWorkerExhaustsRetries(t *testing.T) {
	q := newMemQueue()
	s := NewScheduler(q, zap.NewNop())
	creator := &fakeCreator{fail: 10}
	w := newTestWorker(q, creator)

	due := time.Now().Add(time.Hour)
	_ = s.ScheduleTodoDueNotification(context.Background(), uuid.New(), uuid.New(), &due)

	for i := 0; i < 5; i++ {
		time.Sleep(5 * time.Millisecond)
		w.drain(context.Background())
	}

	if len(creator.calls) != 3 {
		t.Fatalf("%d attempts, want exactly MaxAttempts=3", len(creator.calls))
	}
	if q.len() != 0 {
		t.Fatal("exhausted job left in the queue")
	}
}

func TestWorkerMessageNamesTodo(t *testing.T) {
	q := newMemQueue()
	s := NewScheduler(q, zap.NewNop())
	creator := &fakeCreator{}
	w := newTestWorker(q, creator)

	todoID := uuid.New()
	due := time.Now().Add(time.Hour)
	_ = s.ScheduleTodoDueNotification(context.Background(), todoID, uuid.New(), &due)
	w.drain(context.Background())

	if len(creator.calls) != 1 {
		t.Fatalf("%d notifications, want 1", len(creator.calls))
	}
	wantPrefix := fmt.Sprintf("Your todo %s is due", todoID)
	if got := creator.calls[0].message; len(got) < len(wantPrefix) || got[:len(wantPrefix)] != wantPrefix {
		t.Fatalf("message %q, want prefix %q", got, wantPrefix)
	}
}
