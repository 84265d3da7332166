package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestCategory(t *testing.T) *Category {
	t.Helper()
	now := time.Now().UTC()
	owner, err := CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", now)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	c, err := CreateCategory(uuid.New(), owner, "Work", nil, now)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	c.PullEvents()
	return c
}

func TestCreateTodo(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	due := now.Add(48 * time.Hour)

	todo, err := CreateTodo(uuid.New(), c, "  Write report  ", nil, &due, now)
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	st := todo.State()
	if st.Title != "Write report" {
		t.Fatalf("title not trimmed: %q", st.Title)
	}
	if st.Status != TodoPending {
		t.Fatalf("new todo status %q, want pending", st.Status)
	}

	events := todo.PullEvents()
	if len(events) != 1 || events[0].EventType != EventTodoCreated {
		t.Fatalf("got %v, want one TodoCreated event", events)
	}
	p, ok := events[0].Payload.(TodoCreatedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", events[0].Payload)
	}
	if p.CategoryID != c.ID() {
		t.Fatal("payload category mismatch")
	}
}

func TestCreateTodoInDeletedCategory(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	c.Delete(now)

	if _, err := CreateTodo(uuid.New(), c, "x", nil, nil, now); !IsInvariant(err) {
		t.Fatalf("got %v, want invariant error", err)
	}
}

func TestTodoUpdateNoOp(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, nil, now)
	todo.PullEvents()

	same := "Write report"
	if err := todo.Update(TodoPatch{Title: &same}, now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(todo.PullEvents()) != 0 {
		t.Fatal("no-op update recorded an event")
	}
	if !todo.State().UpdatedAt.Equal(now) {
		t.Fatal("no-op update bumped updatedAt")
	}
}

func TestTodoUpdateClearsDueDate(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	due := now.Add(48 * time.Hour)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, &due, now)
	todo.PullEvents()

	if err := todo.Update(TodoPatch{DueDate: Null[time.Time]()}, now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if todo.DueDate() != nil {
		t.Fatal("due date not cleared")
	}
	events := todo.PullEvents()
	if len(events) != 1 || events[0].EventType != EventTodoUpdated {
		t.Fatalf("got %v, want one TodoUpdated event", events)
	}
}

func TestTodoUpdateAbsentFieldsUntouched(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	desc := "details"
	due := now.Add(48 * time.Hour)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", &desc, &due, now)
	todo.PullEvents()

	title := "Write the report"
	if err := todo.Update(TodoPatch{Title: &title}, now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	st := todo.State()
	if st.Description == nil || *st.Description != "details" {
		t.Fatal("absent description was touched")
	}
	if st.DueDate == nil || !st.DueDate.Equal(due) {
		t.Fatal("absent due date was touched")
	}
}

func TestTodoCompleteOnce(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, nil, now)
	todo.PullEvents()

	first := now.Add(time.Hour)
	if err := todo.Complete(first); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := todo.Complete(now.Add(2 * time.Hour)); err != nil {
		t.Fatalf("second Complete: %v", err)
	}

	events := todo.PullEvents()
	if len(events) != 1 || events[0].EventType != EventTodoCompleted {
		t.Fatalf("got %v, want one TodoCompleted event", events)
	}
	if todo.CompletedAt() == nil || !todo.CompletedAt().Equal(first) {
		t.Fatal("completedAt did not keep its original stamp")
	}
}

func TestCompletedTodoStatusImmutable(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, nil, now)
	_ = todo.Complete(now)
	todo.PullEvents()

	pending := TodoPending
	if err := todo.Update(TodoPatch{Status: &pending}, now); !IsInvariant(err) {
		t.Fatalf("got %v, want invariant error", err)
	}

	// Other fields stay editable after completion.
	title := "Rewrite report"
	if err := todo.Update(TodoPatch{Title: &title}, now); err != nil {
		t.Fatalf("title update after completion: %v", err)
	}
}

func TestTodoDeleteIdempotent(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, nil, now)
	todo.PullEvents()

	todo.Delete(now, "")
	todo.Delete(now.Add(time.Minute), "again")

	events := todo.PullEvents()
	if len(events) != 1 || events[0].EventType != EventTodoDeleted {
		t.Fatalf("got %v, want one TodoDeleted event", events)
	}
	p := events[0].Payload.(TodoDeletedPayload)
	if p.Reason != nil {
		t.Fatalf("empty reason stored as %q, want nil", *p.Reason)
	}
}

func TestDeletedTodoRejectsCommands(t *testing.T) {
	now := time.Now().UTC()
	c := newTestCategory(t)
	todo, _ := CreateTodo(uuid.New(), c, "Write report", nil, nil, now)
	todo.Delete(now, "")
	todo.PullEvents()

	title := "x"
	if err := todo.Update(TodoPatch{Title: &title}, now); !IsInvariant(err) {
		t.Fatalf("update on deleted: got %v, want invariant error", err)
	}
	if err := todo.Complete(now); !IsInvariant(err) {
		t.Fatalf("complete on deleted: got %v, want invariant error", err)
	}
}

func TestParseTodoStatus(t *testing.T) {
	if s, err := ParseTodoStatus(" Pending "); err != nil || s != TodoPending {
		t.Fatalf("got %q, %v", s, err)
	}
	if _, err := ParseTodoStatus("archived"); !IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
}
