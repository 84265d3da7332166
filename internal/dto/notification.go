package dto

import "time"

type CreateNotificationRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=255"`
	Message       string  `json:"message" binding:"required"`
	RelatedTodoID *string `json:"related_todo_id"`
}

type NotificationResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	IsRead        bool       `json:"is_read"`
	CreatedAt     time.Time  `json:"created_at"`
	ReadAt        *time.Time `json:"read_at"`
	RelatedTodoID *string    `json:"related_todo_id"`
}

type ListNotificationsResponse struct {
	Items []NotificationResponse `json:"items"`
}
