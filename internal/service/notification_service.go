package service

import (
	"context"
	"errors"
	"time"

	dom "Tasker/internal/domain"
	"Tasker/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NotificationService materializes and reads user notifications. It is the
// sink for fired due-date reminder jobs.
type NotificationService struct {
	notifications repo.NotificationRepo
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(notifications repo.NotificationRepo) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) CreateForUser(ctx context.Context, userID uuid.UUID, title, message string, relatedTodoID *uuid.UUID) (dom.NotificationState, error) {
	n, err := dom.CreateNotification(uuid.New(), userID, title, message, relatedTodoID, time.Now().UTC())
	if err != nil {
		return dom.NotificationState{}, err
	}
	if err := s.notifications.Save(ctx, n); err != nil {
		return dom.NotificationState{}, err
	}
	return n.State(), nil
}

func (s *NotificationService) ListUnreadForUser(ctx context.Context, userID uuid.UUID) ([]dom.NotificationState, error) {
	notifications, err := s.notifications.FindUnreadByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	list := make([]dom.NotificationState, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, n.State())
	}
	return list, nil
}

// MarkAsRead stamps the notification read. Foreign-owned and missing ids
// both come back as ErrNotFound.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (dom.NotificationState, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.NotificationState{}, ErrNotFound
		}
		return dom.NotificationState{}, err
	}
	if n.UserID() != userID {
		return dom.NotificationState{}, ErrNotFound
	}

	n.MarkAsRead(time.Now().UTC())
	if err := s.notifications.Save(ctx, n); err != nil {
		return dom.NotificationState{}, err
	}
	return n.State(), nil
}
