package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/query"
)

const syncGroupCollection = "syncgroups"

// SyncGroupStore reads group records. Membership mutation belongs to the
// synchronization collaborator, so there are no write methods.
type SyncGroupStore struct {
	*MongoService
}

func NewSyncGroupStore(mongoService *MongoService) *SyncGroupStore {
	return &SyncGroupStore{MongoService: mongoService}
}

func (s *SyncGroupStore) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.SyncGroup, error) {
	collection := s.GetCollection(syncGroupCollection)

	var group models.SyncGroup
	err := query.FindByID(ctx, collection, id, &group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("Group not found.")
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return &group, nil
}

func (s *SyncGroupStore) FindGroupsByCourse(ctx context.Context, courseID primitive.ObjectID) ([]*models.SyncGroup, error) {
	collection := s.GetCollection(syncGroupCollection)

	var groups []*models.SyncGroup
	filter := query.NewBuilder().Where("courseId", courseID).Build()

	err := query.FindMany(ctx, collection, filter, &groups)
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}

	return groups, nil
}

func (s *SyncGroupStore) FindGroupsByLesson(ctx context.Context, lessonID primitive.ObjectID) ([]*models.SyncGroup, error) {
	collection := s.GetCollection(syncGroupCollection)

	var groups []*models.SyncGroup
	filter := query.NewBuilder().Where("lesson", lessonID).Build()

	err := query.FindMany(ctx, collection, filter, &groups)
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}

	return groups, nil
}
