package access

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
)

// GroupResolver loads a sync group by id. Implemented by the mongo syncgroup
// store.
type GroupResolver interface {
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.SyncGroup, error)
}

// Evaluator computes effective access levels from permission entries and
// group membership. It holds no state between calls; membership and
// permissions may change at any time, so results are never cached.
type Evaluator struct {
	groups GroupResolver
}

func NewEvaluator(groups GroupResolver) *Evaluator {
	return &Evaluator{groups: groups}
}

// Level aggregates all entries that name the actor, directly or through a
// group the actor is a member of. A missing group counts as no membership,
// not as an error. After aggregation a write grant implies read.
func (e *Evaluator) Level(ctx context.Context, permissions []models.Permission, actor Actor) (models.Access, error) {
	if actor.IsSystem() {
		return models.Access{CanRead: true, CanWrite: true}, nil
	}

	var access models.Access
	for _, entry := range permissions {
		switch entry.Subject.Type {
		case models.SubjectUser:
			if entry.Subject.ID.Hex() == actor.UserID() {
				access.CanRead = access.CanRead || entry.CanRead
				access.CanWrite = access.CanWrite || entry.CanWrite
			}
		case models.SubjectGroup:
			group, err := e.groups.GetGroupByID(ctx, entry.Subject.ID)
			if err != nil {
				if apperr.IsNotFound(err) {
					continue
				}
				return models.Access{}, fmt.Errorf("failed to resolve group %s: %w", entry.Subject.ID.Hex(), err)
			}
			if IsMember(group, actor.UserID()) {
				access.CanRead = access.CanRead || entry.CanRead
				access.CanWrite = access.CanWrite || entry.CanWrite
			}
		}
	}

	if access.CanWrite {
		access.CanRead = true
	}
	return access, nil
}
