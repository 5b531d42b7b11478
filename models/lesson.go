package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResourceType string

const (
	TypeLesson  ResourceType = "lesson"
	TypeSection ResourceType = "section"
)

type Lesson struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CourseID primitive.ObjectID `json:"courseId" bson:"courseId"`
	Title    string             `json:"title" bson:"title"`
	Position int                `json:"position" bson:"position"`
	Visible  bool               `json:"visible" bson:"visible"`
	// State is an opaque payload owned by the client editor.
	State       bson.M       `json:"state" bson:"state"`
	Permissions []Permission `json:"-" bson:"permissions"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
	DeletedAt   *time.Time   `json:"-" bson:"deletedAt,omitempty"`
}

func (l *Lesson) ResourceID() primitive.ObjectID    { return l.ID }
func (l *Lesson) ResourceType() ResourceType        { return TypeLesson }
func (l *Lesson) ResourcePermissions() []Permission { return l.Permissions }
func (l *Lesson) Tombstoned() *time.Time            { return l.DeletedAt }

// Resource is the view the authorization layer works against. Both Lesson and
// Section satisfy it.
type Resource interface {
	ResourceID() primitive.ObjectID
	ResourceType() ResourceType
	ResourcePermissions() []Permission
	Tombstoned() *time.Time
}
