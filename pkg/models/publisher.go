package models

import "time"

// Publisher is a host entity owning references.
type Publisher struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name" validate:"required"`
	Country     string    `json:"country,omitempty" db:"country"`
	FoundedYear *int      `json:"founded_year,omitempty" db:"founded_year"`
	Notes       string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PublisherPayload is the host-row portion of a publisher mutation.
type PublisherPayload struct {
	Name        string `json:"name" validate:"required"`
	Country     string `json:"country,omitempty"`
	FoundedYear *int   `json:"founded_year,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// MutatePublisherRequest is the request body for creating or replacing a publisher.
type MutatePublisherRequest struct {
	PublisherPayload
	Relations RelationPayloads `json:"relations"`
}

// PublisherListResponse is the API response for listing publishers.
type PublisherListResponse struct {
	Items      []Publisher `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}

// MutatePublisherResponse is the API response for a publisher mutation.
type MutatePublisherResponse struct {
	Publisher Publisher      `json:"publisher"`
	Result    MutationResult `json:"result"`
}
