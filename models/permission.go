package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type SubjectType string

const (
	SubjectUser  SubjectType = "user"
	SubjectGroup SubjectType = "group"
)

// Subject identifies who a permission entry grants access to. The type tag is
// set when the entry is constructed, never inferred from the shape of the
// referenced record.
type Subject struct {
	Type SubjectType        `json:"type" bson:"type"`
	ID   primitive.ObjectID `json:"id" bson:"id"`
}

// Permission is one entry of a resource's permission set. Subject identity is
// unique within a resource.
type Permission struct {
	Subject  Subject `json:"subject" bson:"subject"`
	CanRead  bool    `json:"canRead" bson:"canRead"`
	CanWrite bool    `json:"canWrite" bson:"canWrite"`
}

// Access is the effective level of one user on one resource. A write grant
// always implies read, regardless of the stored entry flags.
type Access struct {
	CanRead  bool
	CanWrite bool
}
