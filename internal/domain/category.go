package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups a user's todos. Belongs to exactly one user for its
// whole lifetime.
type Category struct {
	eventBuffer
	id          uuid.UUID
	userID      uuid.UUID
	name        string
	description *string
	createdAt   time.Time
	updatedAt   time.Time
	deleted     bool
}

// CategoryState is the persisted snapshot of a Category.
type CategoryState struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsDeleted   bool      `json:"-"`
}

// RehydrateCategory restores a category from storage without validation or
// event emission.
func RehydrateCategory(st CategoryState) *Category {
	return &Category{
		id:          st.ID,
		userID:      st.UserID,
		name:        st.Name,
		description: st.Description,
		createdAt:   st.CreatedAt,
		updatedAt:   st.UpdatedAt,
		deleted:     st.IsDeleted,
	}
}

// CreateCategory validates inputs and records CategoryCreated. The owning
// user must not be deleted.
func CreateCategory(id uuid.UUID, owner *User, name string, description *string, now time.Time) (*Category, error) {
	if owner.IsDeleted() {
		return nil, invariantErr("cannot create category for a deleted user")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name", "category name is required")
	}
	if len(name) > 100 {
		return nil, validationErr("name", "category name must be at most 100 characters long")
	}

	c := &Category{
		id:          id,
		userID:      owner.ID(),
		name:        name,
		description: trimmedOrNil(description),
		createdAt:   now,
		updatedAt:   now,
	}
	c.record(Event{
		ID:            uuid.New(),
		AggregateID:   c.id,
		AggregateType: AggregateCategory,
		EventType:     EventCategoryCreated,
		Payload:       CategoryCreatedPayload{UserID: c.userID, Name: c.name, Description: c.description},
		OccurredAt:    now,
	})
	return c, nil
}

// Update changes name and/or description. A nil name leaves it untouched;
// description is tri-state (absent, explicit null, value). Recording happens
// only when something observably changed.
func (c *Category) Update(name *string, description Opt[string], now time.Time) error {
	if c.deleted {
		return invariantErr("cannot update a deleted category")
	}

	changed := false

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return validationErr("name", "category name is required")
		}
		if len(n) > 100 {
			return validationErr("name", "category name must be at most 100 characters long")
		}
		if n != c.name {
			c.name = n
			changed = true
		}
	}

	if description.IsSet() {
		desc := trimmedOrNil(description.Ptr())
		if !equalStringPtr(desc, c.description) {
			c.description = desc
			changed = true
		}
	}

	if !changed {
		return nil
	}

	c.updatedAt = now
	c.record(Event{
		ID:            uuid.New(),
		AggregateID:   c.id,
		AggregateType: AggregateCategory,
		EventType:     EventCategoryUpdated,
		Payload:       CategoryUpdatedPayload{Name: c.name, Description: c.description},
		OccurredAt:    now,
	})
	return nil
}

// Delete soft-deletes the category. Repeated calls are silent no-ops.
func (c *Category) Delete(now time.Time) {
	if c.deleted {
		return
	}
	c.deleted = true
	c.updatedAt = now
	c.record(Event{
		ID:            uuid.New(),
		AggregateID:   c.id,
		AggregateType: AggregateCategory,
		EventType:     EventCategoryDeleted,
		Payload:       CategoryDeletedPayload{},
		OccurredAt:    now,
	})
}

func (c *Category) ID() uuid.UUID     { return c.id }
func (c *Category) UserID() uuid.UUID { return c.userID }
func (c *Category) IsDeleted() bool   { return c.deleted }

// State returns the persistable snapshot.
func (c *Category) State() CategoryState {
	return CategoryState{
		ID:          c.id,
		UserID:      c.userID,
		Name:        c.name,
		Description: c.description,
		CreatedAt:   c.createdAt,
		UpdatedAt:   c.updatedAt,
		IsDeleted:   c.deleted,
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
