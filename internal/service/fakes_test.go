package service

import (
	"context"
	"sync"
	"time"

	dom "Tasker/internal/domain"
	"Tasker/internal/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory repo fakes with the same miss semantics as the pgx repos:
// lookups return pgx.ErrNoRows when nothing matches.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]dom.UserState
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]dom.UserState)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dom.RehydrateUser(st), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var match *dom.UserState
	for _, st := range r.users {
		if st.Email != email {
			continue
		}
		// A live account wins over deleted ones sharing the address.
		if match == nil || (match.IsDeleted && !st.IsDeleted) {
			s := st
			match = &s
		}
	}
	if match == nil {
		return nil, pgx.ErrNoRows
	}
	return dom.RehydrateUser(*match), nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *dom.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u.State()
	return nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]dom.CategoryState
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]dom.CategoryState)}
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*dom.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dom.RehydrateCategory(st), nil
}

func (r *fakeCategoryRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*dom.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dom.Category
	for _, st := range r.categories {
		if st.UserID == userID && !st.IsDeleted {
			out = append(out, dom.RehydrateCategory(st))
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) Save(_ context.Context, c *dom.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID()] = c.State()
	return nil
}

type fakeTodoRepo struct {
	mu    sync.Mutex
	todos map[uuid.UUID]dom.TodoState
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[uuid.UUID]dom.TodoState)}
}

func (r *fakeTodoRepo) FindByID(_ context.Context, id uuid.UUID) (*dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.todos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dom.RehydrateTodo(st), nil
}

func (r *fakeTodoRepo) FindByUserID(_ context.Context, _ uuid.UUID) ([]*dom.Todo, error) {
	// Ownership runs through categories; tests using this fake pass the
	// category-scoped variants instead.
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dom.Todo
	for _, st := range r.todos {
		if !st.IsDeleted {
			out = append(out, dom.RehydrateTodo(st))
		}
	}
	return out, nil
}

func (r *fakeTodoRepo) FindByCategoryID(_ context.Context, categoryID uuid.UUID) ([]*dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dom.Todo
	for _, st := range r.todos {
		if st.CategoryID == categoryID && !st.IsDeleted {
			out = append(out, dom.RehydrateTodo(st))
		}
	}
	return out, nil
}

func (r *fakeTodoRepo) FindCompletedBefore(_ context.Context, cutoff time.Time) ([]*dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dom.Todo
	for _, st := range r.todos {
		if st.IsDeleted || st.Status != dom.TodoCompleted || st.CompletedAt == nil {
			continue
		}
		if st.CompletedAt.Before(cutoff) {
			out = append(out, dom.RehydrateTodo(st))
		}
	}
	return out, nil
}

func (r *fakeTodoRepo) Save(_ context.Context, t *dom.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todos[t.ID()] = t.State()
	return nil
}

type fakeEventStore struct {
	mu     sync.Mutex
	events map[uuid.UUID][]dom.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[uuid.UUID][]dom.Event)}
}

func (s *fakeEventStore) AppendEvents(_ context.Context, aggregateID uuid.UUID, events []dom.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[aggregateID] = append(s.events[aggregateID], events...)
	return nil
}

func (s *fakeEventStore) EventsForAggregate(_ context.Context, aggregateID uuid.UUID) ([]dom.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dom.Event(nil), s.events[aggregateID]...), nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]dom.NotificationState
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]dom.NotificationState)}
}

func (r *fakeNotificationRepo) FindByID(_ context.Context, id uuid.UUID) (*dom.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.notifications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dom.RehydrateNotification(st), nil
}

func (r *fakeNotificationRepo) FindUnreadByUserID(_ context.Context, userID uuid.UUID) ([]*dom.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dom.Notification
	for _, st := range r.notifications {
		if st.UserID == userID && !st.IsRead {
			out = append(out, dom.RehydrateNotification(st))
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) Save(_ context.Context, n *dom.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID()] = n.State()
	return nil
}

// testQueue is an in-memory delayed queue with per-key replace semantics.
type testQueue struct {
	mu   sync.Mutex
	jobs map[string]testJob
}

type testJob struct {
	payload []byte
	fireAt  time.Time
	attempt int
}

func newTestQueue() *testQueue {
	return &testQueue{jobs: make(map[string]testJob)}
}

func (q *testQueue) Enqueue(_ context.Context, key string, payload []byte, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[key] = testJob{payload: payload, fireAt: time.Now().Add(delay)}
	return nil
}

func (q *testQueue) Cancel(_ context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.jobs, key)
	return nil
}

func (q *testQueue) Claim(_ context.Context, _ time.Time) (*schedule.Job, bool, error) {
	panic("not used in service tests")
}

func (q *testQueue) Retry(_ context.Context, _ *schedule.Job, _ time.Duration) error {
	panic("not used in service tests")
}

func (q *testQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *testQueue) has(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.jobs[key]
	return ok
}
