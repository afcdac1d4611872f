package models

import "time"

// Creator is a host entity; it is also the target of creator assignments on
// products and games.
type Creator struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required"`
	SortName  string    `json:"sort_name,omitempty" db:"sort_name"`
	Bio       string    `json:"bio,omitempty" db:"bio"`
	BornYear  *int      `json:"born_year,omitempty" db:"born_year"`
	DiedYear  *int      `json:"died_year,omitempty" db:"died_year"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreatorPayload is the host-row portion of a creator mutation.
type CreatorPayload struct {
	Name     string `json:"name" validate:"required"`
	SortName string `json:"sort_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	BornYear *int   `json:"born_year,omitempty"`
	DiedYear *int   `json:"died_year,omitempty"`
}

// MutateCreatorRequest is the request body for creating or replacing a creator.
type MutateCreatorRequest struct {
	CreatorPayload
	Relations RelationPayloads `json:"relations"`
}

// CreatorListResponse is the API response for listing creators.
type CreatorListResponse struct {
	Items      []Creator `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}

// MutateCreatorResponse is the API response for a creator mutation.
type MutateCreatorResponse struct {
	Creator Creator        `json:"creator"`
	Result  MutationResult `json:"result"`
}
