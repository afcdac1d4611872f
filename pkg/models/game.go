package models

import "time"

// Game is a host entity. It is the only host type carrying based-on links.
type Game struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title" validate:"required"`
	Description     string    `json:"description,omitempty" db:"description"`
	MinPlayers      *int      `json:"min_players,omitempty" db:"min_players"`
	MaxPlayers      *int      `json:"max_players,omitempty" db:"max_players"`
	PlayTimeMinutes *int      `json:"play_time_minutes,omitempty" db:"play_time_minutes"`
	ReleaseYear     *int      `json:"release_year,omitempty" db:"release_year"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// GamePayload is the host-row portion of a game mutation.
type GamePayload struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description,omitempty"`
	MinPlayers      *int   `json:"min_players,omitempty"`
	MaxPlayers      *int   `json:"max_players,omitempty"`
	PlayTimeMinutes *int   `json:"play_time_minutes,omitempty"`
	ReleaseYear     *int   `json:"release_year,omitempty"`
}

// MutateGameRequest is the request body for creating or replacing a game.
type MutateGameRequest struct {
	GamePayload
	Relations RelationPayloads `json:"relations"`
}

// GameListResponse is the API response for listing games.
type GameListResponse struct {
	Items      []Game `json:"items"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// MutateGameResponse is the API response for a game mutation.
type MutateGameResponse struct {
	Game   Game           `json:"game"`
	Result MutationResult `json:"result"`
}
