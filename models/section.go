package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Section struct {
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	// Lesson is the owning lesson. Immutable after creation.
	Lesson      primitive.ObjectID `json:"lesson" bson:"lesson"`
	Title       string             `json:"title" bson:"title"`
	Position    int                `json:"position" bson:"position"`
	Visible     bool               `json:"visible" bson:"visible"`
	State       bson.M             `json:"state" bson:"state"`
	Permissions []Permission       `json:"-" bson:"permissions"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
	DeletedAt   *time.Time         `json:"-" bson:"deletedAt,omitempty"`
}

func (s *Section) ResourceID() primitive.ObjectID    { return s.ID }
func (s *Section) ResourceType() ResourceType        { return TypeSection }
func (s *Section) ResourcePermissions() []Permission { return s.Permissions }
func (s *Section) Tombstoned() *time.Time            { return s.DeletedAt }
