package service

import (
	"context"
	"errors"
	"time"

	"Tasker/internal/cache"
	dom "Tasker/internal/domain"
	"Tasker/internal/repo"
	"Tasker/internal/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// CreateTodoInput carries the fields of a todo creation request.
type CreateTodoInput struct {
	CategoryID  uuid.UUID
	Title       string
	Description *string
	DueDate     *time.Time
}

// UpdateTodoInput carries a partial update. Nil leaves a field untouched;
// Description and DueDate distinguish explicit null (clear) from absent.
type UpdateTodoInput struct {
	Title       *string
	Description dom.Opt[string]
	DueDate     dom.Opt[time.Time]
	Status      *dom.TodoStatus
}

// TodoService orchestrates todo commands and owns the coupling to the
// reminder scheduler: every path that changes a due date re-arms the
// reminder, and every path that completes or deletes a todo cancels it.
type TodoService struct {
	todos      repo.TodoRepo
	categories repo.CategoryRepo
	events     repo.EventStore
	scheduler  *schedule.Scheduler
	cache      *cache.Cache
	sf         singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(todos repo.TodoRepo, categories repo.CategoryRepo, events repo.EventStore, scheduler *schedule.Scheduler, c *cache.Cache) *TodoService {
	return &TodoService{todos: todos, categories: categories, events: events, scheduler: scheduler, cache: c}
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, in CreateTodoInput) (dom.TodoState, error) {
	category, err := s.authorizeCategory(ctx, userID, in.CategoryID)
	if err != nil {
		return dom.TodoState{}, err
	}

	todo, err := dom.CreateTodo(uuid.New(), category, in.Title, in.Description, in.DueDate, time.Now().UTC())
	if err != nil {
		return dom.TodoState{}, err
	}

	if err := s.persist(ctx, todo); err != nil {
		return dom.TodoState{}, err
	}
	s.invalidate(ctx, userID)

	if err := s.scheduler.ScheduleTodoDueNotification(ctx, todo.ID(), userID, todo.DueDate()); err != nil {
		return dom.TodoState{}, err
	}
	return todo.State(), nil
}

func (s *TodoService) Update(ctx context.Context, userID, todoID uuid.UUID, in UpdateTodoInput) (dom.TodoState, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		return dom.TodoState{}, err
	}

	patch := dom.TodoPatch{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
	}
	if err := todo.Update(patch, time.Now().UTC()); err != nil {
		return dom.TodoState{}, err
	}

	if err := s.persist(ctx, todo); err != nil {
		return dom.TodoState{}, err
	}
	s.invalidate(ctx, userID)

	// Completed todos never remind. Otherwise re-arm with the current due
	// date; with none this cancels any pending reminder.
	if todo.Status() == dom.TodoCompleted {
		if err := s.scheduler.CancelTodoDueNotification(ctx, todo.ID()); err != nil {
			return dom.TodoState{}, err
		}
	} else if err := s.scheduler.ScheduleTodoDueNotification(ctx, todo.ID(), userID, todo.DueDate()); err != nil {
		return dom.TodoState{}, err
	}
	return todo.State(), nil
}

func (s *TodoService) Complete(ctx context.Context, userID, todoID uuid.UUID) (dom.TodoState, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		return dom.TodoState{}, err
	}

	if err := todo.Complete(time.Now().UTC()); err != nil {
		return dom.TodoState{}, err
	}

	if err := s.persist(ctx, todo); err != nil {
		return dom.TodoState{}, err
	}
	s.invalidate(ctx, userID)

	if err := s.scheduler.CancelTodoDueNotification(ctx, todo.ID()); err != nil {
		return dom.TodoState{}, err
	}
	return todo.State(), nil
}

// Delete soft-deletes the todo and disarms its reminder. Returns false,
// without error, when the todo doesn't exist, is already deleted, or isn't
// owned by the caller.
func (s *TodoService) Delete(ctx context.Context, userID, todoID uuid.UUID) (bool, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	todo.Delete(time.Now().UTC(), "")
	if err := s.persist(ctx, todo); err != nil {
		return false, err
	}
	s.invalidate(ctx, userID)

	if err := s.scheduler.CancelTodoDueNotification(ctx, todo.ID()); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TodoService) GetByID(ctx context.Context, userID, todoID uuid.UUID) (dom.TodoState, error) {
	todo, err := s.authorize(ctx, userID, todoID)
	if err != nil {
		return dom.TodoState{}, err
	}
	return todo.State(), nil
}

func (s *TodoService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dom.TodoState, error) {
	if s.cache != nil {
		key := "todos:" + userID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetUserTodos(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := statesOf(s.todos.FindByUserID(ctx, userID))
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetUserTodos(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.TodoState), nil
	}
	return statesOf(s.todos.FindByUserID(ctx, userID))
}

// ListForCategory returns the category's live todos, or an empty list when
// the category isn't visible to the caller.
func (s *TodoService) ListForCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]dom.TodoState, error) {
	if _, err := s.authorizeCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return []dom.TodoState{}, nil
		}
		return nil, err
	}

	if s.cache != nil {
		key := "todos:" + userID.String() + ":" + categoryID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetCategoryTodos(ctx, userID, categoryID); err == nil && list != nil {
				return list, nil
			}
			list, err := statesOf(s.todos.FindByCategoryID(ctx, categoryID))
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetCategoryTodos(ctx, userID, categoryID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.TodoState), nil
	}
	return statesOf(s.todos.FindByCategoryID(ctx, categoryID))
}

// DeleteCompletedOlderThan soft-deletes completed todos whose completedAt is
// before the cutoff, through the same delete/save/append path as a user
// delete, and returns how many were actually deleted. Each todo is
// persisted independently: a failure aborts the rest of the sweep, and the
// whole operation is safe to re-run.
func (s *TodoService) DeleteCompletedOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	todos, err := s.todos.FindCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	owners := make(map[uuid.UUID]struct{})
	for _, todo := range todos {
		if todo.IsDeleted() {
			continue
		}

		todo.Delete(time.Now().UTC(), "retention sweep")
		if err := s.persist(ctx, todo); err != nil {
			return deleted, err
		}
		if err := s.scheduler.CancelTodoDueNotification(ctx, todo.ID()); err != nil {
			return deleted, err
		}
		deleted++

		if s.cache != nil {
			if category, err := s.categories.FindByID(ctx, todo.CategoryID()); err == nil {
				owners[category.UserID()] = struct{}{}
			}
		}
	}
	for userID := range owners {
		s.invalidate(ctx, userID)
	}
	return deleted, nil
}

// authorize loads the todo and checks its owning chain; missing, deleted,
// and foreign-owned all collapse to ErrNotFound.
func (s *TodoService) authorize(ctx context.Context, userID, todoID uuid.UUID) (*dom.Todo, error) {
	todo, err := s.todos.FindByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if todo.IsDeleted() {
		return nil, ErrNotFound
	}
	if _, err := s.authorizeCategory(ctx, userID, todo.CategoryID()); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) authorizeCategory(ctx context.Context, userID, categoryID uuid.UUID) (*dom.Category, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if category.UserID() != userID || category.IsDeleted() {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *TodoService) persist(ctx context.Context, todo *dom.Todo) error {
	if err := s.todos.Save(ctx, todo); err != nil {
		return err
	}
	if events := todo.PullEvents(); len(events) > 0 {
		return s.events.AppendEvents(ctx, todo.ID(), events)
	}
	return nil
}

func (s *TodoService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateUserTodos(ctx, userID)
	}
}

func statesOf(todos []*dom.Todo, err error) ([]dom.TodoState, error) {
	if err != nil {
		return nil, err
	}
	list := make([]dom.TodoState, 0, len(todos))
	for _, t := range todos {
		list = append(list, t.State())
	}
	return list, nil
}
