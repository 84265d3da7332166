package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TodoStatus is the closed set of todo states.
type TodoStatus string

const (
	TodoPending   TodoStatus = "pending"
	TodoCompleted TodoStatus = "completed"
)

// ParseTodoStatus validates a raw status string.
func ParseTodoStatus(raw string) (TodoStatus, error) {
	switch TodoStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case TodoPending:
		return TodoPending, nil
	case TodoCompleted:
		return TodoCompleted, nil
	}
	return "", validationErr("status", "status must be pending or completed")
}

// Todo is the task aggregate. Completion is a dedicated one-way transition;
// everything else goes through Update.
type Todo struct {
	eventBuffer
	id          uuid.UUID
	categoryID  uuid.UUID
	title       string
	description *string
	dueDate     *time.Time
	status      TodoStatus
	createdAt   time.Time
	updatedAt   time.Time
	completedAt *time.Time
	deleted     bool
}

// TodoState is the persisted snapshot of a Todo.
type TodoState struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      TodoStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	IsDeleted   bool       `json:"-"`
}

// TodoPatch carries the fields of a generic update command. Title and Status
// use nil for "not provided"; Description and DueDate are tri-state so an
// explicit null can clear them.
type TodoPatch struct {
	Title       *string
	Description Opt[string]
	DueDate     Opt[time.Time]
	Status      *TodoStatus
}

// RehydrateTodo restores a todo from storage without validation or events.
func RehydrateTodo(st TodoState) *Todo {
	return &Todo{
		id:          st.ID,
		categoryID:  st.CategoryID,
		title:       st.Title,
		description: st.Description,
		dueDate:     st.DueDate,
		status:      st.Status,
		createdAt:   st.CreatedAt,
		updatedAt:   st.UpdatedAt,
		completedAt: st.CompletedAt,
		deleted:     st.IsDeleted,
	}
}

// CreateTodo validates inputs and records TodoCreated. The owning category
// must not be deleted.
func CreateTodo(id uuid.UUID, category *Category, title string, description *string, dueDate *time.Time, now time.Time) (*Todo, error) {
	if category.IsDeleted() {
		return nil, invariantErr("cannot create todo in a deleted category")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErr("title", "todo title is required")
	}
	if len(title) > 255 {
		return nil, validationErr("title", "todo title must be at most 255 characters long")
	}

	t := &Todo{
		id:          id,
		categoryID:  category.ID(),
		title:       title,
		description: trimmedOrNil(description),
		dueDate:     dueDate,
		status:      TodoPending,
		createdAt:   now,
		updatedAt:   now,
	}
	t.record(Event{
		ID:            uuid.New(),
		AggregateID:   t.id,
		AggregateType: AggregateTodo,
		EventType:     EventTodoCreated,
		Payload: TodoCreatedPayload{
			CategoryID:  t.categoryID,
			Title:       t.title,
			Description: t.description,
			DueDate:     t.dueDate,
			Status:      t.status,
		},
		OccurredAt: now,
	})
	return t, nil
}

// Update applies the patch, validating each provided field. Setting status
// away from completed is rejected; completion itself must go through
// Complete. If nothing observably changed, updatedAt stays put and no event
// is recorded.
func (t *Todo) Update(p TodoPatch, now time.Time) error {
	if t.deleted {
		return invariantErr("cannot update a deleted todo")
	}

	changed := false

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return validationErr("title", "todo title is required")
		}
		if len(title) > 255 {
			return validationErr("title", "todo title must be at most 255 characters long")
		}
		if title != t.title {
			t.title = title
			changed = true
		}
	}

	if p.Description.IsSet() {
		desc := trimmedOrNil(p.Description.Ptr())
		if !equalStringPtr(desc, t.description) {
			t.description = desc
			changed = true
		}
	}

	if p.DueDate.IsSet() {
		due := p.DueDate.Ptr()
		if !equalTimePtr(due, t.dueDate) {
			t.dueDate = due
			changed = true
		}
	}

	if p.Status != nil && *p.Status != t.status {
		if t.status == TodoCompleted {
			return invariantErr("cannot change status of a completed todo; use complete")
		}
		t.status = *p.Status
		changed = true
	}

	if !changed {
		return nil
	}

	t.updatedAt = now
	t.record(Event{
		ID:            uuid.New(),
		AggregateID:   t.id,
		AggregateType: AggregateTodo,
		EventType:     EventTodoUpdated,
		Payload: TodoUpdatedPayload{
			Title:       t.title,
			Description: t.description,
			DueDate:     t.dueDate,
			Status:      t.status,
		},
		OccurredAt: now,
	})
	return nil
}

// Complete is the dedicated completion transition. Completing an already
// completed todo is a no-op: completedAt keeps its original stamp and no
// second event is recorded.
func (t *Todo) Complete(now time.Time) error {
	if t.deleted {
		return invariantErr("cannot complete a deleted todo")
	}
	if t.status == TodoCompleted {
		return nil
	}

	t.status = TodoCompleted
	t.completedAt = &now
	t.updatedAt = now
	t.record(Event{
		ID:            uuid.New(),
		AggregateID:   t.id,
		AggregateType: AggregateTodo,
		EventType:     EventTodoCompleted,
		Payload:       TodoCompletedPayload{CompletedAt: now},
		OccurredAt:    now,
	})
	return nil
}

// Delete soft-deletes the todo. Repeated calls are silent no-ops. An empty
// reason is stored as null in the event payload.
func (t *Todo) Delete(now time.Time, reason string) {
	if t.deleted {
		return
	}
	t.deleted = true
	t.updatedAt = now

	var rp *string
	if reason != "" {
		rp = &reason
	}
	t.record(Event{
		ID:            uuid.New(),
		AggregateID:   t.id,
		AggregateType: AggregateTodo,
		EventType:     EventTodoDeleted,
		Payload:       TodoDeletedPayload{Reason: rp},
		OccurredAt:    now,
	})
}

func (t *Todo) ID() uuid.UUID           { return t.id }
func (t *Todo) CategoryID() uuid.UUID   { return t.categoryID }
func (t *Todo) DueDate() *time.Time     { return t.dueDate }
func (t *Todo) Status() TodoStatus      { return t.status }
func (t *Todo) CompletedAt() *time.Time { return t.completedAt }
func (t *Todo) IsDeleted() bool         { return t.deleted }

// State returns the persistable snapshot.
func (t *Todo) State() TodoState {
	return TodoState{
		ID:          t.id,
		CategoryID:  t.categoryID,
		Title:       t.title,
		Description: t.description,
		DueDate:     t.dueDate,
		Status:      t.status,
		CreatedAt:   t.createdAt,
		UpdatedAt:   t.updatedAt,
		CompletedAt: t.completedAt,
		IsDeleted:   t.deleted,
	}
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
