package handlers

import (
	"net/http"
	"time"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TodoHandler handles todo CRUD and completion.
type TodoHandler struct {
	svc *service.TodoService
}

// NewTodoHandler returns a new TodoHandler.
func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTodoRequest  true  "Todo"
// @Success      201   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	todo, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), service.CreateTodoInput{
		CategoryID:  categoryID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todoToResponse(todo))
}

// Update godoc
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /todos/{id} [patch]
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.UpdateTodoInput{Title: req.Title}
	if req.Description.IsSet() {
		if ptr := req.Description.Ptr(); ptr != nil {
			in.Description = dom.Some(*ptr)
		} else {
			in.Description = dom.Null[string]()
		}
	}
	if req.DueDate.IsSet() {
		if ptr := req.DueDate.Ptr(); ptr != nil {
			in.DueDate = dom.Some(*ptr)
		} else {
			in.DueDate = dom.Null[time.Time]()
		}
	}
	if req.Status != nil {
		status, err := dom.ParseTodoStatus(*req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		in.Status = &status
	}

	todo, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(todo))
}

// Complete godoc
// @Summary      Mark a todo completed
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id}/complete [post]
func (h *TodoHandler) Complete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	todo, err := h.svc.Complete(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(todo))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id   path  string  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	todo, err := h.svc.GetByID(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todoToResponse(todo))
}

// List godoc
// @Summary      List the caller's todos
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query     string  false  "Filter by category"
// @Success      200  {object}  dto.ListTodosResponse
// @Failure      400  {object}  map[string]string
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	userID := auth.UserIDFromContext(c)

	var (
		list []dom.TodoState
		err  error
	)
	if raw := c.Query("category_id"); raw != "" {
		categoryID, perr := uuid.Parse(raw)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		list, err = h.svc.ListForCategory(c.Request.Context(), userID, categoryID)
	} else {
		list, err = h.svc.ListForUser(c.Request.Context(), userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.TodoResponse, 0, len(list))
	for _, todo := range list {
		items = append(items, todoToResponse(todo))
	}
	c.JSON(http.StatusOK, dto.ListTodosResponse{Items: items})
}

func todoToResponse(st dom.TodoState) dto.TodoResponse {
	return dto.TodoResponse{
		ID:          st.ID.String(),
		CategoryID:  st.CategoryID.String(),
		Title:       st.Title,
		Description: st.Description,
		DueDate:     st.DueDate,
		Status:      string(st.Status),
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
		CompletedAt: st.CompletedAt,
	}
}
