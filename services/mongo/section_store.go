package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/query"
)

const sectionCollection = "sections"

type SectionStore struct {
	*MongoService
}

func NewSectionStore(mongoService *MongoService) *SectionStore {
	return &SectionStore{MongoService: mongoService}
}

func (s *SectionStore) GetSectionByID(ctx context.Context, id primitive.ObjectID) (*models.Section, error) {
	collection := s.GetCollection(sectionCollection)

	var section models.Section
	filter := query.NewBuilder().
		Where("_id", id).
		WhereNotExists("deletedAt").
		Build()

	err := query.FindOne(ctx, collection, filter, &section)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("Section not found.")
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}

	return &section, nil
}

// FindSectionsByLesson returns the live sections of a lesson in display
// order.
func (s *SectionStore) FindSectionsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]*models.Section, error) {
	collection := s.GetCollection(sectionCollection)

	var sections []*models.Section
	filter := query.NewBuilder().
		Where("lesson", lessonID).
		WhereNotExists("deletedAt").
		Build()
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	err := query.FindMany(ctx, collection, filter, &sections, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find sections: %w", err)
	}

	return sections, nil
}

func (s *SectionStore) CreateSection(ctx context.Context, section *models.Section) error {
	collection := s.GetCollection(sectionCollection)

	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	res, err := command.InsertOne(ctx, collection, section)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		section.ID = oid
	} else {
		return fmt.Errorf("failed to get inserted section ID, expected ObjectID, got %T", res.InsertedID)
	}

	return nil
}

func (s *SectionStore) PatchSection(ctx context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error) {
	collection := s.GetCollection(sectionCollection)

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
		return outcome, fmt.Errorf("failed to patch section: %w", err)
	}
	return outcome, err
}

// PatchSectionsByLesson writes fields on every live section of a lesson and
// returns how many documents changed. The cascade compares that count against
// the sections it discovered.
func (s *SectionStore) PatchSectionsByLesson(ctx context.Context, lessonID primitive.ObjectID, fields bson.M) (int64, error) {
	collection := s.GetCollection(sectionCollection)

	filter := query.NewBuilder().
		Where("lesson", lessonID).
		WhereNotExists("deletedAt").
		Build()
	update := command.NewUpdateBuilder().
		SetAll(fields).
		CurrentDate("updatedAt").
		Build()

	modified, err := command.PatchMany(ctx, collection, filter, update)
	if err != nil {
		if command.IsWriteConflict(err) {
			return modified, err
		}
		return modified, fmt.Errorf("failed to patch sections: %w", err)
	}
	return modified, nil
}
