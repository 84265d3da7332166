package repo

import (
	"context"

	dom "Tasker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepo provides notification persistence.
type NotificationRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*dom.Notification, error)
	FindUnreadByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Notification, error)
	Save(ctx context.Context, n *dom.Notification) error
}

// PGNotificationRepo implements NotificationRepo with Postgres.
type PGNotificationRepo struct {
	db *pgxpool.Pool
}

// NewPGNotificationRepo returns a new PGNotificationRepo.
func NewPGNotificationRepo(db *pgxpool.Pool) *PGNotificationRepo {
	return &PGNotificationRepo{db: db}
}

const notificationColumns = `id, user_id, title, message, is_read, created_at, read_at, related_todo_id`

func (r *PGNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*dom.Notification, error) {
	var st dom.NotificationState
	err := r.db.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id,
	).Scan(&st.ID, &st.UserID, &st.Title, &st.Message, &st.IsRead,
		&st.CreatedAt, &st.ReadAt, &st.RelatedTodoID)
	if err != nil {
		return nil, err
	}
	return dom.RehydrateNotification(st), nil
}

func (r *PGNotificationRepo) FindUnreadByUserID(ctx context.Context, userID uuid.UUID) ([]*dom.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 AND is_read = FALSE
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*dom.Notification
	for rows.Next() {
		var st dom.NotificationState
		if err := rows.Scan(&st.ID, &st.UserID, &st.Title, &st.Message, &st.IsRead,
			&st.CreatedAt, &st.ReadAt, &st.RelatedTodoID); err != nil {
			return nil, err
		}
		list = append(list, dom.RehydrateNotification(st))
	}
	return list, rows.Err()
}

// Save upserts the current snapshot.
func (r *PGNotificationRepo) Save(ctx context.Context, n *dom.Notification) error {
	st := n.State()
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, is_read, created_at, read_at, related_todo_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			is_read = EXCLUDED.is_read,
			read_at = EXCLUDED.read_at`,
		st.ID, st.UserID, st.Title, st.Message, st.IsRead, st.CreatedAt, st.ReadAt, st.RelatedTodoID,
	)
	return err
}
