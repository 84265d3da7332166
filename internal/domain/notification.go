package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification is a user-visible message, typically materialized by a fired
// due-date reminder. It is a plain entity: no domain events are recorded
// for it.
type Notification struct {
	id            uuid.UUID
	userID        uuid.UUID
	title         string
	message       string
	read          bool
	createdAt     time.Time
	readAt        *time.Time
	relatedTodoID *uuid.UUID
}

// NotificationState is the persisted snapshot of a Notification.
type NotificationState struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
	ReadAt        *time.Time `json:"read_at"`
	RelatedTodoID *uuid.UUID `json:"related_todo_id"`
}

// RehydrateNotification restores a notification from storage.
func RehydrateNotification(st NotificationState) *Notification {
	return &Notification{
		id:            st.ID,
		userID:        st.UserID,
		title:         st.Title,
		message:       st.Message,
		read:          st.IsRead,
		createdAt:     st.CreatedAt,
		readAt:        st.ReadAt,
		relatedTodoID: st.RelatedTodoID,
	}
}

// CreateNotification validates and builds an unread notification.
func CreateNotification(id, userID uuid.UUID, title, message string, relatedTodoID *uuid.UUID, now time.Time) (*Notification, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErr("title", "notification title is required")
	}
	if len(title) > 255 {
		return nil, validationErr("title", "notification title must be at most 255 characters long")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationErr("message", "notification message is required")
	}

	return &Notification{
		id:            id,
		userID:        userID,
		title:         title,
		message:       message,
		createdAt:     now,
		relatedTodoID: relatedTodoID,
	}, nil
}

// MarkAsRead stamps readAt once; already-read notifications are left as-is.
func (n *Notification) MarkAsRead(now time.Time) {
	if n.read {
		return
	}
	n.read = true
	n.readAt = &now
}

func (n *Notification) ID() uuid.UUID     { return n.id }
func (n *Notification) UserID() uuid.UUID { return n.userID }

// State returns the persistable snapshot.
func (n *Notification) State() NotificationState {
	return NotificationState{
		ID:            n.id,
		UserID:        n.userID,
		Title:         n.title,
		Message:       n.message,
		IsRead:        n.read,
		CreatedAt:     n.createdAt,
		ReadAt:        n.readAt,
		RelatedTodoID: n.relatedTodoID,
	}
}
