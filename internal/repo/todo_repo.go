package repo

import (
	"context"
	"time"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TodoRepo provides todo persistence. FindByID returns soft-deleted todos as
// well; list queries and the sweep query exclude them.
type TodoRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dom.Todo, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Todo, error)
	FindByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]*dom.Todo, error)
	FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]*dom.Todo, error)
	Save(ctx context.Context, t *dom.Todo) error
}

// PGTodoRepo implements TodoRepo with Postgres.
type PGTodoRepo struct {
	db *pgxpool.Pool
}

// NewPGTodoRepo returns a new PGTodoRepo.
func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

const todoColumns = `id, category_id, title, description, due_date, status,
	created_at, updated_at, completed_at, is_deleted`

func (r *PGTodoRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.Todo, error) {
	var st dom.TodoState
	err := r.db.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`, id,
	).Scan(&st.ID, &st.CategoryID, &st.Title, &st.Description, &st.DueDate, &st.Status,
		&st.CreatedAt, &st.UpdatedAt, &st.CompletedAt, &st.IsDeleted)
	if err != nil {
		return nil, err
	}
	return dom.RehydrateTodo(st), nil
}

// FindByUserID lists live todos across all of the user's live categories.
func (r *PGTodoRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Todo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.category_id, t.title, t.description, t.due_date, t.status,
			t.created_at, t.updated_at, t.completed_at, t.is_deleted
		FROM todos t
		JOIN categories c ON c.id = t.category_id
		WHERE c.user_id = $1 AND c.is_deleted = FALSE AND t.is_deleted = FALSE
		ORDER BY t.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

func (r *PGTodoRepo) FindByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]*dom.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+todoColumns+` FROM todos
		 WHERE category_id = $1 AND is_deleted = FALSE
		 ORDER BY created_at ASC`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

// FindCompletedBefore returns live completed todos with completed_at older
// than the cutoff, oldest first. Feeds the retention sweep.
func (r *PGTodoRepo) FindCompletedBefore(ctx context.Context, cutoff time.Time) ([]*dom.Todo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+todoColumns+` FROM todos
		 WHERE status = $1 AND completed_at < $2 AND is_deleted = FALSE
		 ORDER BY completed_at ASC`, dom.TodoCompleted, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

// Save upserts the current snapshot (last write wins).
func (r *PGTodoRepo) Save(ctx context.Context, t *dom.Todo) error {
	st := t.State()
	_, err := r.db.Exec(ctx, `
		INSERT INTO todos (id, category_id, title, description, due_date, status,
			created_at, updated_at, completed_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			due_date = EXCLUDED.due_date,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			completed_at = EXCLUDED.completed_at,
			is_deleted = EXCLUDED.is_deleted`,
		st.ID, st.CategoryID, st.Title, st.Description, st.DueDate, st.Status,
		st.CreatedAt, st.UpdatedAt, st.CompletedAt, st.IsDeleted,
	)
	return err
}

func scanTodos(rows pgx.Rows) ([]*dom.Todo, error) {
	var list []*dom.Todo
	for rows.Next() {
		var st dom.TodoState
		if err := rows.Scan(&st.ID, &st.CategoryID, &st.Title, &st.Description, &st.DueDate,
			&st.Status, &st.CreatedAt, &st.UpdatedAt, &st.CompletedAt, &st.IsDeleted); err != nil {
			return nil, err
		}
		list = append(list, dom.RehydrateTodo(st))
	}
	return list, rows.Err()
}
