package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SectionVisibility is one cascaded child entry of a visibility result.
type SectionVisibility struct {
	ID      primitive.ObjectID `json:"_id"`
	Visible bool               `json:"visible"`
}

// VisibilityResult aggregates a visibility toggle. Sections is only populated
// for a cascaded lesson toggle.
type VisibilityResult struct {
	ID       primitive.ObjectID  `json:"_id"`
	Type     ResourceType        `json:"type"`
	Visible  bool                `json:"visible"`
	Sections []SectionVisibility `json:"sections,omitempty"`
}

// RemoveResult is returned by a successful soft remove.
type RemoveResult struct {
	ID        primitive.ObjectID `json:"_id"`
	DeletedAt time.Time          `json:"deletedAt"`
}
