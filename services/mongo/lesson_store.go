package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/query"
)

const lessonCollection = "lessons"

type LessonStore struct {
	*MongoService
}

func NewLessonStore(mongoService *MongoService) *LessonStore {
	return &LessonStore{MongoService: mongoService}
}

// GetLessonByID returns the live lesson with the given id. Tombstoned and
// absent ids are both reported as NotFound.
func (s *LessonStore) GetLessonByID(ctx context.Context, id primitive.ObjectID) (*models.Lesson, error) {
	collection := s.GetCollection(lessonCollection)

	var lesson models.Lesson
	filter := query.NewBuilder().
		Where("_id", id).
		WhereNotExists("deletedAt").
		Build()

	err := query.FindOne(ctx, collection, filter, &lesson)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("Lesson not found.")
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return &lesson, nil
}

func (s *LessonStore) FindLessonsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]*models.Lesson, error) {
	collection := s.GetCollection(lessonCollection)

	var lessons []*models.Lesson
	filter := query.NewBuilder().
		Where("courseId", courseID).
		WhereNotExists("deletedAt").
		Build()

	err := query.FindMany(ctx, collection, filter, &lessons)
	if err != nil {
		return nil, fmt.Errorf("failed to find lessons: %w", err)
	}

	return lessons, nil
}

func (s *LessonStore) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	collection := s.GetCollection(lessonCollection)

	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	res, err := command.InsertOne(ctx, collection, lesson)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		lesson.ID = oid
	} else {
		return fmt.Errorf("failed to get inserted lesson ID, expected ObjectID, got %T", res.InsertedID)
	}

	return nil
}

// PatchLesson writes fields on a live lesson and reports the tri-state
// outcome. A tombstoned lesson matches nothing, so a second remove or a patch
// after remove comes back as PatchNoSuchRecord.
func (s *LessonStore) PatchLesson(ctx context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error) {
	collection := s.GetCollection(lessonCollection)

	filter := query.NewBuilder().
		Where("_id", id).
		WhereNotExists("deletedAt").
		Build()
	update := command.NewUpdateBuilder().
		SetAll(fields).
		CurrentDate("updatedAt").
		Build()

	outcome, err := command.PatchOne(ctx, collection, filter, update)
	if err != nil && outcome != command.PatchConflict {
		return outcome, fmt.Errorf("failed to patch lesson: %w", err)
	}
	return outcome, err
}
