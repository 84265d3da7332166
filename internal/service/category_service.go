package service

import (
	"context"
	"errors"
	"time"

	"Tasker/internal/cache"
	dom "Tasker/internal/domain"
	"Tasker/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// CategoryService orchestrates category commands: load, authorize, run the
// aggregate command, save, and append drained events. Events are appended
// only when the command actually changed state.
type CategoryService struct {
	categories repo.CategoryRepo
	users      repo.UserRepo
	events     repo.EventStore
	cache      *cache.Cache
	sf         singleflight.Group
}

// NewCategoryService creates a CategoryService. If c is nil, caching is
// disabled.
func NewCategoryService(categories repo.CategoryRepo, users repo.UserRepo, events repo.EventStore, c *cache.Cache) *CategoryService {
	return &CategoryService{categories: categories, users: users, events: events, cache: c}
}

func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, name string, description *string) (dom.CategoryState, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.CategoryState{}, ErrNotFound
		}
		return dom.CategoryState{}, err
	}
	if user.IsDeleted() {
		return dom.CategoryState{}, ErrNotFound
	}

	category, err := dom.CreateCategory(uuid.New(), user, name, description, time.Now().UTC())
	if err != nil {
		return dom.CategoryState{}, err
	}

	if err := s.persist(ctx, category); err != nil {
		return dom.CategoryState{}, err
	}
	s.invalidate(ctx, userID)
	return category.State(), nil
}

func (s *CategoryService) Update(ctx context.Context, userID, categoryID uuid.UUID, name *string, description dom.Opt[string]) (dom.CategoryState, error) {
	category, err := s.authorize(ctx, userID, categoryID)
	if err != nil {
		return dom.CategoryState{}, err
	}

	if err := category.Update(name, description, time.Now().UTC()); err != nil {
		return dom.CategoryState{}, err
	}

	if err := s.persist(ctx, category); err != nil {
		return dom.CategoryState{}, err
	}
	s.invalidate(ctx, userID)
	return category.State(), nil
}

// Delete soft-deletes the category. Returns false, without error, when it
// doesn't exist, is already deleted, or belongs to someone else.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	category, err := s.authorize(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	category.Delete(time.Now().UTC())
	if err := s.persist(ctx, category); err != nil {
		return false, err
	}
	s.invalidate(ctx, userID)
	if s.cache != nil {
		_ = s.cache.InvalidateUserTodos(ctx, userID)
	}
	return true, nil
}

func (s *CategoryService) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (dom.CategoryState, error) {
	category, err := s.authorize(ctx, userID, categoryID)
	if err != nil {
		return dom.CategoryState{}, err
	}
	return category.State(), nil
}

func (s *CategoryService) ListForUser(ctx context.Context, userID uuid.UUID) ([]dom.CategoryState, error) {
	if s.cache != nil {
		key := "categories:" + userID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetUserCategories(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.list(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetUserCategories(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.CategoryState), nil
	}
	return s.list(ctx, userID)
}

func (s *CategoryService) list(ctx context.Context, userID uuid.UUID) ([]dom.CategoryState, error) {
	categories, err := s.categories.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]dom.CategoryState, 0, len(categories))
	for _, c := range categories {
		list = append(list, c.State())
	}
	return list, nil
}

// authorize loads the category and collapses missing, deleted, and
// foreign-owned into ErrNotFound.
func (s *CategoryService) authorize(ctx context.Context, userID, categoryID uuid.UUID) (*dom.Category, error) {
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

func (s *CategoryService) persist(ctx context.Context, category *dom.Category) error {
	if err := s.categories.Save(ctx, category); err != nil {
		return err
	}
	if events := category.PullEvents(); len(events) > 0 {
		return s.events.AppendEvents(ctx, category.ID(), events)
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.InvalidateUserCategories(ctx, userID)
	}
}
