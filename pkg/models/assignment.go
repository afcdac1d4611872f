package models

import "time"

// CreatorAssignment links a product or game to a creator with a role.
// (host_id, creator_id, role) is the composite key.
type CreatorAssignment struct {
	HostID    string    `json:"host_id" db:"host_id"`
	CreatorID string    `json:"creator_id" db:"creator_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreatorAssignmentInput is one target row in a creator replacement.
type CreatorAssignmentInput struct {
	CreatorID string `json:"creator_id" validate:"required,uuid4"`
	Role      string `json:"role" validate:"required"`
}

// LabelAssignment links a product or game to a vocabulary label. position
// preserves the caller's declared order; it defaults to 0 and is not unique.
type LabelAssignment struct {
	HostID   string `json:"host_id" db:"host_id"`
	LabelID  string `json:"label_id" db:"label_id"`
	Position int    `json:"position" db:"position"`
}

// LabelAssignmentInput is one target row in a label replacement. The stored
// position is the row's index in the target list, not caller supplied.
type LabelAssignmentInput struct {
	LabelID string `json:"label_id" validate:"required,uuid4"`
}
