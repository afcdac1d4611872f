package models

import (
	"encoding/json"
	"time"
)

// ReferenceKind categorizes an external reference link.
type ReferenceKind string

const (
	ReferenceKindOfficial ReferenceKind = "official"
	ReferenceKindSource   ReferenceKind = "source"
	ReferenceKindReview   ReferenceKind = "review"
	ReferenceKindSocial   ReferenceKind = "social"
)

// Reference is a typed external link attached to exactly one host through the
// polymorphic (host_type, host_id) pair. Integrity is enforced by the
// database-side existence check, not a structural foreign key.
type Reference struct {
	ID        string          `json:"id" db:"id"`
	HostType  HostType        `json:"host_type" db:"host_type"`
	HostID    string          `json:"host_id" db:"host_id"`
	Kind      ReferenceKind   `json:"kind" db:"kind"`
	Label     string          `json:"label" db:"label"`
	URL       string          `json:"url" db:"url"`
	Citation  json.RawMessage `json:"citation,omitempty" db:"citation"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ReferenceInput is one target row in a reference replacement.
type ReferenceInput struct {
	Kind     ReferenceKind   `json:"kind" validate:"required,oneof=official source review social"`
	Label    string          `json:"label" validate:"required"`
	URL      string          `json:"url" validate:"required,url"`
	Citation json.RawMessage `json:"citation,omitempty"`
}

// ReferenceListResponse is the API response for listing a host's references.
type ReferenceListResponse struct {
	Items []Reference `json:"items"`
}
