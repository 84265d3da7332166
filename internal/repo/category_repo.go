package repo

import (
	"context"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepo provides category persistence. FindByID returns soft-deleted
// categories as well; list queries exclude them.
type CategoryRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dom.Category, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Category, error)
	Save(ctx context.Context, c *dom.Category) error
}

// PGCategoryRepo implements CategoryRepo with Postgres.
type PGCategoryRepo struct {
	db *pgxpool.Pool
}

// NewPGCategoryRepo returns a new PGCategoryRepo.
func NewPGCategoryRepo(db *pgxpool.Pool) *PGCategoryRepo {
	return &PGCategoryRepo{db: db}
}

const categoryColumns = `id, user_id, name, description, created_at, updated_at, is_deleted`

func (r *PGCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.Category, error) {
	var st dom.CategoryState
	err := r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id,
	).Scan(&st.ID, &st.UserID, &st.Name, &st.Description,
		&st.CreatedAt, &st.UpdatedAt, &st.IsDeleted)
	if err != nil {
		return nil, err
	}
	return dom.RehydrateCategory(st), nil
}

func (r *PGCategoryRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id = $1 AND is_deleted = FALSE
		 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCategories(rows)
}

// Save upserts the current snapshot (last write wins).
func (r *PGCategoryRepo) Save(ctx context.Context, c *dom.Category) error {
	st := c.State()
	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, user_id, name, description, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at,
			is_deleted = EXCLUDED.is_deleted`,
		st.ID, st.UserID, st.Name, st.Description, st.CreatedAt, st.UpdatedAt, st.IsDeleted,
	)
	return err
}

func scanCategories(rows pgx.Rows) ([]*dom.Category, error) {
	var list []*dom.Category
	for rows.Next() {
		var st dom.CategoryState
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &st.Description,
			&st.CreatedAt, &st.UpdatedAt, &st.IsDeleted); err != nil {
			return nil, err
		}
		list = append(list, dom.RehydrateCategory(st))
	}
	return list, rows.Err()
}
