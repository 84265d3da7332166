package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DueDate parses due_date from JSON as either date-only ("2006-01-02") or
// RFC3339. Date-only is stored as start of that day in UTC. An explicit
// null clears the due date. Like NullableString it tracks key presence
// itself, so it is used as a value field.
type DueDate struct {
	set bool
	t   *time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.set = true
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("due_date: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// IsSet reports whether the key was present in the request body.
func (d DueDate) IsSet() bool { return d.set }

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTodoRequest struct {
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	Title       string  `json:"title" binding:"required,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	DueDate     DueDate `json:"due_date"` // optional: "2026-02-19" or RFC3339
}

type UpdateTodoRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=255"`
	Description NullableString `json:"description"` // absent = keep, null = clear
	DueDate     DueDate        `json:"due_date"`    // absent = keep, null = clear
	Status      *string        `json:"status" binding:"omitempty,oneof=pending completed"`
}

type TodoResponse struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"category_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}

// CleanupResponse reports how many stale completed todos a sweep removed.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}
