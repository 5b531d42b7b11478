package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type GroupPermission string

const (
	GroupRead  GroupPermission = "read"
	GroupWrite GroupPermission = "write"
)

// SyncGroup is a synchronized user group. Membership is maintained by an
// external source of truth; the engine only reads it.
type SyncGroup struct {
	ID         primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	CourseID   primitive.ObjectID   `json:"courseId" bson:"courseId"`
	Lesson     primitive.ObjectID   `json:"lesson,omitempty" bson:"lesson,omitempty"`
	Name       string               `json:"name" bson:"name"`
	Users      []primitive.ObjectID `json:"users" bson:"users"`
	Permission GroupPermission      `json:"permission" bson:"permission"`
}
