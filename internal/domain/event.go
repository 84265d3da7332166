package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Aggregate type tags used on events.
const (
	AggregateUser     = "User"
	AggregateCategory = "Category"
	AggregateTodo     = "Todo"
)

// Known event types. Storage and replay code must switch exhaustively over
// these and reject anything unknown.
const (
	EventUserCreated     = "UserCreated"
	EventUserUpdated     = "UserUpdated"
	EventUserDeleted     = "UserDeleted"
	EventCategoryCreated = "CategoryCreated"
	EventCategoryUpdated = "CategoryUpdated"
	EventCategoryDeleted = "CategoryDeleted"
	EventTodoCreated     = "TodoCreated"
	EventTodoUpdated     = "TodoUpdated"
	EventTodoCompleted   = "TodoCompleted"
	EventTodoDeleted     = "TodoDeleted"
)

// Event is an immutable fact describing a committed state change to one
// aggregate. Payload holds the per-event-type struct below.
type Event struct {
	ID            uuid.UUID
	AggregateID   uuid.UUID
	AggregateType string
	EventType     string
	Payload       any
	OccurredAt    time.Time
}

type UserCreatedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserUpdatedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserDeletedPayload struct{}

type CategoryCreatedPayload struct {
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}

type CategoryUpdatedPayload struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type CategoryDeletedPayload struct{}

type TodoCreatedPayload struct {
	CategoryID  uuid.UUID  `json:"categoryId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      TodoStatus `json:"status"`
}

type TodoUpdatedPayload struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      TodoStatus `json:"status"`
}

type TodoCompletedPayload struct {
	CompletedAt time.Time `json:"completedAt"`
}

type TodoDeletedPayload struct {
	Reason *string `json:"reason"`
}

// DecodeEventPayload unmarshals a stored payload into its typed struct based
// on the event type tag. Unknown tags are an error, not a silent passthrough.
func DecodeEventPayload(eventType string, raw []byte) (any, error) {
	var payload any
	switch eventType {
	case EventUserCreated:
		payload = &UserCreatedPayload{}
	case EventUserUpdated:
		payload = &UserUpdatedPayload{}
	case EventUserDeleted:
		payload = &UserDeletedPayload{}
	case EventCategoryCreated:
		payload = &CategoryCreatedPayload{}
	case EventCategoryUpdated:
		payload = &CategoryUpdatedPayload{}
	case EventCategoryDeleted:
		payload = &CategoryDeletedPayload{}
	case EventTodoCreated:
		payload = &TodoCreatedPayload{}
	case EventTodoUpdated:
		payload = &TodoUpdatedPayload{}
	case EventTodoCompleted:
		payload = &TodoCompletedPayload{}
	case EventTodoDeleted:
		payload = &TodoDeletedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	return payload, nil
}

// eventBuffer holds an aggregate's not-yet-persisted events. Each aggregate
// embeds its own buffer; ownership of the events moves to the event store
// when PullEvents drains them.
type eventBuffer struct {
	pending []Event
}

func (b *eventBuffer) record(e Event) {
	b.pending = append(b.pending, e)
}

// PullEvents returns the buffered events and clears the buffer.
func (b *eventBuffer) PullEvents() []Event {
	events := b.pending
	b.pending = nil
	return events
}
