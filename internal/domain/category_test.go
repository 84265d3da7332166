package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateCategoryValidation(t *testing.T) {
	now := time.Now().UTC()
	owner, _ := CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", now)

	if _, err := CreateCategory(uuid.New(), owner, "   ", nil, now); !IsValidation(err) {
		t.Fatalf("blank name: got %v, want validation error", err)
	}

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := CreateCategory(uuid.New(), owner, string(long), nil, now); !IsValidation(err) {
		t.Fatalf("long name: got %v, want validation error", err)
	}

	owner.Delete(now)
	if _, err := CreateCategory(uuid.New(), owner, "Work", nil, now); !IsInvariant(err) {
		t.Fatalf("deleted owner: got %v, want invariant error", err)
	}
}

func TestCategoryUpdateClearsDescription(t *testing.T) {
	now := time.Now().UTC()
	owner, _ := CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", now)
	desc := "project work"
	c, err := CreateCategory(uuid.New(), owner, "Work", &desc, now)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	c.PullEvents()

	if err := c.Update(nil, Null[string](), now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.State().Description != nil {
		t.Fatal("description not cleared by explicit null")
	}
	events := c.PullEvents()
	if len(events) != 1 || events[0].EventType != EventCategoryUpdated {
		t.Fatalf("got %v, want one CategoryUpdated event", events)
	}
}

func TestCategoryUpdateNoOp(t *testing.T) {
	now := time.Now().UTC()
	owner, _ := CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", now)
	c, _ := CreateCategory(uuid.New(), owner, "Work", nil, now)
	c.PullEvents()

	same := "Work"
	if err := c.Update(&same, Opt[string]{}, now.Add(time.Hour)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(c.PullEvents()) != 0 {
		t.Fatal("no-op update recorded an event")
	}
	if !c.State().UpdatedAt.Equal(now) {
		t.Fatal("no-op update bumped updatedAt")
	}
}

func TestCategoryDeleteIdempotent(t *testing.T) {
	now := time.Now().UTC()
	owner, _ := CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", now)
	c, _ := CreateCategory(uuid.New(), owner, "Work", nil, now)
	c.PullEvents()

	c.Delete(now)
	c.Delete(now.Add(time.Minute))

	events := c.PullEvents()
	if len(events) != 1 || events[0].EventType != EventCategoryDeleted {
		t.Fatalf("got %v, want one CategoryDeleted event", events)
	}
}
