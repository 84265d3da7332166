package handlers

import (
	"net/http"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category CRUD.
type CategoryHandler struct {
	svc *service.CategoryService
}

// NewCategoryHandler returns a new CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateCategoryRequest  true  "Category"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  map[string]string
// @Router       /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryToResponse(category))
}

// Update godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Category ID"
// @Param        body  body      dto.UpdateCategoryRequest  true  "Partial update"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /categories/{id} [patch]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	description := dom.Opt[string]{}
	if req.Description.IsSet() {
		if ptr := req.Description.Ptr(); ptr != nil {
			description = dom.Some(*ptr)
		} else {
			description = dom.Null[string]()
		}
	}

	category, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Name, description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryToResponse(category))
}

// Delete godoc
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        id   path  string  true  "Category ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
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
// @Summary      Get a category by ID
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  dto.CategoryResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /categories/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.svc.GetByID(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryToResponse(category))
}

// List godoc
// @Summary      List the caller's categories
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListCategoriesResponse
// @Failure      500  {object}  map[string]string
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.svc.ListForUser(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, category := range list {
		items = append(items, categoryToResponse(category))
	}
	c.JSON(http.StatusOK, dto.ListCategoriesResponse{Items: items})
}

func categoryToResponse(st dom.CategoryState) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          st.ID.String(),
		Name:        st.Name,
		Description: st.Description,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}
