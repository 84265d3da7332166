package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds per-user read-through caches for category and todo lists in
// Redis. Keys:
//
//	user:<id>:categories
//	user:<id>:todos
//	user:<id>:category:<cid>:todos
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a new Cache.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func keyUserCategories(userID uuid.UUID) string {
	return "user:" + userID.String() + ":categories"
}

func keyUserTodos(userID uuid.UUID) string {
	return "user:" + userID.String() + ":todos"
}

func keyCategoryTodos(userID, categoryID uuid.UUID) string {
	return "user:" + userID.String() + ":category:" + categoryID.String() + ":todos"
}

// GetUserCategories returns the cached list or nil on miss.
func (c *Cache) GetUserCategories(ctx context.Context, userID uuid.UUID) ([]dom.CategoryState, error) {
	return getList[dom.CategoryState](ctx, c.rdb, keyUserCategories(userID))
}

// SetUserCategories stores the list.
func (c *Cache) SetUserCategories(ctx context.Context, userID uuid.UUID, list []dom.CategoryState) error {
	return setList(ctx, c.rdb, keyUserCategories(userID), list, c.ttl)
}

// GetUserTodos returns the cached list or nil on miss.
func (c *Cache) GetUserTodos(ctx context.Context, userID uuid.UUID) ([]dom.TodoState, error) {
	return getList[dom.TodoState](ctx, c.rdb, keyUserTodos(userID))
}

// SetUserTodos stores the list.
func (c *Cache) SetUserTodos(ctx context.Context, userID uuid.UUID, list []dom.TodoState) error {
	return setList(ctx, c.rdb, keyUserTodos(userID), list, c.ttl)
}

// GetCategoryTodos returns the cached per-category list or nil on miss.
func (c *Cache) GetCategoryTodos(ctx context.Context, userID, categoryID uuid.UUID) ([]dom.TodoState, error) {
	return getList[dom.TodoState](ctx, c.rdb, keyCategoryTodos(userID, categoryID))
}

// SetCategoryTodos stores the per-category list.
func (c *Cache) SetCategoryTodos(ctx context.Context, userID, categoryID uuid.UUID, list []dom.TodoState) error {
	return setList(ctx, c.rdb, keyCategoryTodos(userID, categoryID), list, c.ttl)
}

// InvalidateUserCategories drops the user's category list.
func (c *Cache) InvalidateUserCategories(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, keyUserCategories(userID)).Err()
}

// InvalidateUserTodos drops the user's todo list and every per-category
// todo list (cache invalidation on write).
func (c *Cache) InvalidateUserTodos(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, keyUserTodos(userID)).Err(); err != nil {
		return err
	}
	pattern := "user:" + userID.String() + ":category:*:todos"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func getList[T any](ctx context.Context, rdb *redis.Client, key string) ([]T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []T
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func setList[T any](ctx context.Context, rdb *redis.Client, key string, list []T, ttl time.Duration) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}
