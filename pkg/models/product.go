package models

import "time"

// Product is a host entity. publisher_id is a structural foreign key with
// ON DELETE RESTRICT; deleting a publisher that still has products conflicts.
type Product struct {
	ID          string    `json:"id" db:"id"`
	PublisherID string    `json:"publisher_id" db:"publisher_id" validate:"required"`
	Title       string    `json:"title" db:"title" validate:"required"`
	Language    string    `json:"language" db:"language"`
	ReleaseYear *int      `json:"release_year,omitempty" db:"release_year"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductPayload is the host-row portion of a product mutation.
type ProductPayload struct {
	PublisherID string `json:"publisher_id" validate:"required,uuid4"`
	Title       string `json:"title" validate:"required"`
	Language    string `json:"language,omitempty"`
	ReleaseYear *int   `json:"release_year,omitempty"`
}

// MutateProductRequest is the request body for creating or replacing a product.
type MutateProductRequest struct {
	ProductPayload
	Relations RelationPayloads `json:"relations"`
}

// ProductListResponse is the API response for listing products.
type ProductListResponse struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// MutateProductResponse is the API response for a product mutation.
type MutateProductResponse struct {
	Product Product        `json:"product"`
	Result  MutationResult `json:"result"`
}
