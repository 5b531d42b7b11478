package content

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
)

// Store contracts the content services consume. The mongo stores implement
// them; tests use in-memory fakes. Get and patch only ever see live records:
// a tombstoned id behaves exactly like an absent one.

type LessonStore interface {
	GetLessonByID(ctx context.Context, id primitive.ObjectID) (*models.Lesson, error)
	FindLessonsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]*models.Lesson, error)
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	PatchLesson(ctx context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error)
}

type SectionStore interface {
	GetSectionByID(ctx context.Context, id primitive.ObjectID) (*models.Section, error)
	FindSectionsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]*models.Section, error)
	CreateSection(ctx context.Context, section *models.Section) error
	PatchSection(ctx context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error)
	PatchSectionsByLesson(ctx context.Context, lessonID primitive.ObjectID, fields bson.M) (int64, error)
}

type GroupStore interface {
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.SyncGroup, error)
	FindGroupsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]*models.SyncGroup, error)
	FindGroupsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]*models.SyncGroup, error)
}

// Transactor runs a function atomically against the store. Writes made inside
// fn become visible to other readers all at once, or not at all when fn
// returns an error.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
