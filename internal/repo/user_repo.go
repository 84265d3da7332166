package repo

import (
	"context"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence. FindByID and FindByEmail return
// pgx.ErrNoRows when nothing matches; services map that to their own
// not-found semantics.
type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dom.User, error)
	FindByEmail(ctx context.Context, email string) (*dom.User, error)
	Save(ctx context.Context, u *dom.User) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, name, email, password_hash, created_at, updated_at, is_deleted`

func (r *PGUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByEmail looks up by the normalized address. Deleted users are returned
// too: callers decide whether a deleted account blocks reuse. A live account
// wins over deleted ones sharing the address.
func (r *PGUserRepo) FindByEmail(ctx context.Context, email string) (*dom.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE email = $1
		 ORDER BY is_deleted ASC, created_at DESC
		 LIMIT 1`, email))
}

// Save upserts the current snapshot. Last write wins: no version check is
// performed on concurrent saves of the same id.
func (r *PGUserRepo) Save(ctx context.Context, u *dom.User) error {
	st := u.State()
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			updated_at = EXCLUDED.updated_at,
			is_deleted = EXCLUDED.is_deleted`,
		st.ID, st.Name, st.Email, st.PasswordHash, st.CreatedAt, st.UpdatedAt, st.IsDeleted,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGUserRepo) scanOne(row rowScanner) (*dom.User, error) {
	var st dom.UserState
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash,
		&st.CreatedAt, &st.UpdatedAt, &st.IsDeleted)
	if err != nil {
		return nil, err
	}
	return dom.RehydrateUser(st), nil
}
