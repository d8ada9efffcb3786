package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría. Sin parent_id se crea una raíz.
type CreateCategoryRequest struct {
	ParentID  string `json:"parent_id"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Kind      string `json:"kind" validate:"omitempty,oneof=spare_parts mo"`
	SortOrder int    `json:"sort_order"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Kind      *string `json:"kind" validate:"omitempty,oneof=spare_parts mo"`
	SortOrder *int    `json:"sort_order"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryTreeNode categoría raíz con sus subcategorías.
type CategoryTreeNode struct {
	CategoryResponse
	Subcategories []CategoryResponse `json:"subcategories"`
}
