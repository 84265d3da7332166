package dto

import "time"

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type UpdateCategoryRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Description NullableString `json:"description"` // absent = keep, null = clear
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListCategoriesResponse struct {
	Items []CategoryResponse `json:"items"`
}
