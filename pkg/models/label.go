package models

import "time"

// Label is a vocabulary entry targeted by label assignments.
type Label struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateLabelRequest is the request body for creating a label.
type CreateLabelRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// LabelListResponse is the API response for listing labels.
type LabelListResponse struct {
	Items      []Label `json:"items"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// LabelResponse is the API response for a single label.
type LabelResponse struct {
	Label Label `json:"label"`
}
