package models

import (
	"errors"
	"time"
)

// BasedOnSourceType is derived from which based-on field is set. It is never
// persisted, so it cannot drift from the row itself.
type BasedOnSourceType string

const (
	BasedOnSourceGame BasedOnSourceType = "game"
	BasedOnSourceURL  BasedOnSourceType = "url"
)

// BasedOnLink records provenance for a game: it is based on either another
// game in the catalog or an external work identified by URL. Exactly one of
// the two is set (structural CHECK in the schema).
type BasedOnLink struct {
	ID            string    `json:"id" db:"id"`
	GameID        string    `json:"game_id" db:"game_id"`
	BasedOnGameID *string   `json:"based_on_game_id,omitempty" db:"based_on_game_id"`
	BasedOnURL    *string   `json:"based_on_url,omitempty" db:"based_on_url"`
	Label         string    `json:"label" db:"label"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// SourceType derives the discriminator from the populated field.
func (l *BasedOnLink) SourceType() BasedOnSourceType {
	if l.BasedOnGameID != nil {
		return BasedOnSourceGame
	}
	return BasedOnSourceURL
}

// BasedOnInput is one target row in a based-on replacement.
type BasedOnInput struct {
	BasedOnGameID *string `json:"based_on_game_id,omitempty"`
	BasedOnURL    *string `json:"based_on_url,omitempty"`
	Label         string  `json:"label" validate:"required"`
}

var errBasedOnXOR = errors.New("exactly one of based_on_game_id and based_on_url must be set")

// Validate enforces the XOR between game id and URL before the row ever
// reaches the store.
func (in *BasedOnInput) Validate() error {
	hasGame := in.BasedOnGameID != nil && *in.BasedOnGameID != ""
	hasURL := in.BasedOnURL != nil && *in.BasedOnURL != ""
	if hasGame == hasURL {
		return errBasedOnXOR
	}
	return nil
}

// SourceType derives the discriminator for an input row. Callers must have
// validated the row first.
func (in *BasedOnInput) SourceType() BasedOnSourceType {
	if in.BasedOnGameID != nil && *in.BasedOnGameID != "" {
		return BasedOnSourceGame
	}
	return BasedOnSourceURL
}

// BasedOnListResponse is the API response for listing a game's based-on links.
type BasedOnListResponse struct {
	Items []BasedOnLink `json:"items"`
}
