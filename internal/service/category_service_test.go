package service

import (
	"context"
	"errors"
	"testing"
	"time"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
)

func newCategoryFixture(t *testing.T) (*CategoryService, *fakeEventStore, uuid.UUID) {
	t.Helper()
	users := newFakeUserRepo()
	owner, err := dom.CreateUser(uuid.New(), "Alice", "alice@example.com", "hash", time.Now().UTC())
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_ = users.Save(context.Background(), owner)

	events := newFakeEventStore()
	svc := NewCategoryService(newFakeCategoryRepo(), users, events, nil)
	return svc, events, owner.ID()
}

func TestCategoryCreateListGet(t *testing.T) {
	svc, events, userID := newCategoryFixture(t)

	desc := "project work"
	st, err := svc.Create(context.Background(), userID, "Work", &desc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	appended, _ := events.EventsForAggregate(context.Background(), st.ID)
	if len(appended) != 1 || appended[0].EventType != dom.EventCategoryCreated {
		t.Fatalf("got %v, want one CategoryCreated event", appended)
	}

	list, err := svc.ListForUser(context.Background(), userID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForUser: %v, %d items", err, len(list))
	}

	got, err := svc.GetByID(context.Background(), userID, st.ID)
	if err != nil || got.Name != "Work" {
		t.Fatalf("GetByID: %v, %+v", err, got)
	}
}

func TestCategoryCreateForUnknownUser(t *testing.T) {
	svc, _, _ := newCategoryFixture(t)
	if _, err := svc.Create(context.Background(), uuid.New(), "Work", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCategoryUpdateNoOpAppendsNothing(t *testing.T) {
	svc, events, userID := newCategoryFixture(t)
	st, _ := svc.Create(context.Background(), userID, "Work", nil)

	same := "Work"
	if _, err := svc.Update(context.Background(), userID, st.ID, &same, dom.Opt[string]{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	appended, _ := events.EventsForAggregate(context.Background(), st.ID)
	if len(appended) != 1 {
		t.Fatalf("%d events after no-op update, want only the create event", len(appended))
	}
}

func TestCategoryDeleteIsIdempotentAtServiceLevel(t *testing.T) {
	svc, _, userID := newCategoryFixture(t)
	st, _ := svc.Create(context.Background(), userID, "Work", nil)

	ok, err := svc.Delete(context.Background(), userID, st.ID)
	if err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	ok, err = svc.Delete(context.Background(), userID, st.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if ok {
		t.Fatal("second delete claimed to delete again")
	}

	// A deleted category is gone from reads.
	if _, err := svc.GetByID(context.Background(), userID, st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}
	list, _ := svc.ListForUser(context.Background(), userID)
	if len(list) != 0 {
		t.Fatalf("deleted category still listed")
	}
}

func TestCategoryForeignAccessCollapses(t *testing.T) {
	svc, _, userID := newCategoryFixture(t)
	st, _ := svc.Create(context.Background(), userID, "Work", nil)

	stranger := uuid.New()
	if _, err := svc.GetByID(context.Background(), stranger, st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: got %v, want ErrNotFound", err)
	}
	name := "Stolen"
	if _, err := svc.Update(context.Background(), stranger, st.ID, &name, dom.Opt[string]{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: got %v, want ErrNotFound", err)
	}
	ok, err := svc.Delete(context.Background(), stranger, st.ID)
	if err != nil || ok {
		t.Fatalf("foreign delete: %v %v, want false nil", ok, err)
	}
}

func TestNotificationCreateForUser(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)
	userID := uuid.New()
	todoID := uuid.New()

	st, err := svc.CreateForUser(context.Background(), userID, "Heads up", "Standup in 10 minutes", &todoID)
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}
	if st.UserID != userID || st.IsRead || st.RelatedTodoID == nil || *st.RelatedTodoID != todoID {
		t.Fatalf("unexpected state %+v", st)
	}

	unread, err := svc.ListUnreadForUser(context.Background(), userID)
	if err != nil || len(unread) != 1 {
		t.Fatalf("ListUnreadForUser: %v, %d items", err, len(unread))
	}

	if _, err := svc.CreateForUser(context.Background(), userID, "", "no title", nil); !dom.IsValidation(err) {
		t.Fatalf("blank title: got %v, want validation error", err)
	}
	if _, err := svc.CreateForUser(context.Background(), userID, "no message", "", nil); !dom.IsValidation(err) {
		t.Fatalf("blank message: got %v, want validation error", err)
	}
}

func TestNotificationMarkAsRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo)
	userID := uuid.New()

	st, err := svc.CreateForUser(context.Background(), userID, "Todo due soon", "Your todo is due.", nil)
	if err != nil {
		t.Fatalf("CreateForUser: %v", err)
	}

	unread, err := svc.ListUnreadForUser(context.Background(), userID)
	if err != nil || len(unread) != 1 {
		t.Fatalf("ListUnreadForUser: %v, %d items", err, len(unread))
	}

	read, err := svc.MarkAsRead(context.Background(), userID, st.ID)
	if err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if !read.IsRead || read.ReadAt == nil {
		t.Fatalf("unexpected state %+v", read)
	}

	unread, _ = svc.ListUnreadForUser(context.Background(), userID)
	if len(unread) != 0 {
		t.Fatal("read notification still listed as unread")
	}

	// Foreign and missing ids are indistinguishable.
	if _, err := svc.MarkAsRead(context.Background(), uuid.New(), st.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign MarkAsRead: got %v, want ErrNotFound", err)
	}
	if _, err := svc.MarkAsRead(context.Background(), userID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing MarkAsRead: got %v, want ErrNotFound", err)
	}
}
