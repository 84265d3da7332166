package handlers

import (
	"net/http"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles reading and acknowledging notifications.
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler returns a new NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Create godoc
// @Summary      Create a notification for the caller
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateNotificationRequest  true  "Notification"
// @Success      201   {object}  dto.NotificationResponse
// @Failure      400   {object}  map[string]string
// @Router       /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var relatedTodoID *uuid.UUID
	if req.RelatedTodoID != nil {
		id, err := uuid.Parse(*req.RelatedTodoID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid related_todo_id"})
			return
		}
		relatedTodoID = &id
	}

	n, err := h.svc.CreateForUser(c.Request.Context(), auth.UserIDFromContext(c), req.Title, req.Message, relatedTodoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notificationToResponse(n))
}

// ListUnread godoc
// @Summary      List the caller's unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListNotificationsResponse
// @Failure      500  {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	list, err := h.svc.ListUnreadForUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, notificationToResponse(n))
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Items: items})
}

// MarkAsRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  dto.NotificationResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	n, err := h.svc.MarkAsRead(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notificationToResponse(n))
}

func notificationToResponse(st dom.NotificationState) dto.NotificationResponse {
	var todoID *string
	if st.RelatedTodoID != nil {
		s := st.RelatedTodoID.String()
		todoID = &s
	}
	return dto.NotificationResponse{
		ID:            st.ID.String(),
		Title:         st.Title,
		Message:       st.Message,
		IsRead:        st.IsRead,
		CreatedAt:     st.CreatedAt,
		ReadAt:        st.ReadAt,
		RelatedTodoID: todoID,
	}
}
