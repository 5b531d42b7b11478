package content

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/events"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
)

// LessonService guards every lesson operation with the access gate before it
// touches the store.
type LessonService struct {
	store    LessonStore
	sections SectionStore
	groups   GroupStore
	gate     *access.Gate
	tx       Transactor
	events   events.Emitter
	logger   *logrus.Logger
}

func NewLessonService(store LessonStore, sections SectionStore, groups GroupStore, gate *access.Gate, tx Transactor, emitter events.Emitter, logger *logrus.Logger) *LessonService {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &LessonService{
		store:    store,
		sections: sections,
		groups:   groups,
		gate:     gate,
		tx:       tx,
		events:   emitter,
		logger:   logger,
	}
}

// FindLessons lists the live lessons of a course the actor can read. Items
// without read access are excluded silently.
func (s *LessonService) FindLessons(ctx context.Context, courseID primitive.ObjectID, actor access.Actor) (*Page[*models.Lesson], error) {
	lessons, err := s.store.FindLessonsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	readable := make([]*models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		ok, err := s.gate.CanRead(ctx, lesson.Permissions, actor)
		if err != nil {
			return nil, err
		}
		if ok {
			readable = append(readable, sanitizeLesson(lesson))
		}
	}
	return newPage(readable), nil
}

func (s *LessonService) GetLesson(ctx context.Context, id primitive.ObjectID, actor access.Actor) (*models.Lesson, error) {
	lesson, err := s.store.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, lesson, actor, access.VerbGet); err != nil {
		return nil, err
	}
	return sanitizeLesson(lesson), nil
}

// CreateLesson creates a lesson in a course. The initial permission set is a
// snapshot of the course's sync groups; the creating user additionally gets a
// direct write entry so the lesson stays reachable when groups change later.
func (s *LessonService) CreateLesson(ctx context.Context, lesson *models.Lesson, actor access.Actor) (*models.Lesson, error) {
	if !actor.IsSystem() && actor.UserID() == "" {
		return nil, apperr.Forbidden(apperr.ReasonNoUser, "Can not resolve user information.")
	}

	groups, err := s.groups.FindGroupsByCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	lesson.Permissions = defaultPermissions(groups)
	if !actor.IsSystem() {
		lesson.Permissions = addUserPermission(lesson.Permissions, actor.UserID(), true)
	}
	lesson.Visible = false
	lesson.DeletedAt = nil

	if err := s.store.CreateLesson(ctx, lesson); err != nil {
		return nil, err
	}

	out := sanitizeLesson(lesson)
	s.events.Emit(ctx, events.Event{
		Type:       events.Created,
		Resource:   models.TypeLesson,
		ResourceID: out.ID.Hex(),
		Payload:    out,
	})
	return out, nil
}

// PatchLesson writes general fields. Visibility toggles with cascade
// semantics go through the VisibilityService instead.
func (s *LessonService) PatchLesson(ctx context.Context, id primitive.ObjectID, fields bson.M, actor access.Actor) (*models.Lesson, error) {
	if err := validatePatchFields(fields); err != nil {
		return nil, err
	}

	lesson, err := s.store.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, lesson, actor, access.VerbPatch); err != nil {
		return nil, err
	}

	outcome, err := s.store.PatchLesson(ctx, id, fields)
	if err := patchOutcomeErr(outcome, err, "lesson"); err != nil {
		return nil, err
	}

	patched, err := s.store.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := sanitizeLesson(patched)
	s.events.Emit(ctx, events.Event{
		Type:       events.Patched,
		Resource:   models.TypeLesson,
		ResourceID: out.ID.Hex(),
		Payload:    out,
	})
	return out, nil
}

// RemoveLesson tombstones a lesson together with its live sections. The
// record stays in storage; every later read or write reports NotFound.
func (s *LessonService) RemoveLesson(ctx context.Context, id primitive.ObjectID, actor access.Actor) (*models.RemoveResult, error) {
	lesson, err := s.store.GetLessonByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, lesson, actor, access.VerbRemove); err != nil {
		return nil, err
	}

	deletedAt := time.Now().UTC()
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		outcome, err := s.store.PatchLesson(ctx, id, bson.M{"deletedAt": deletedAt})
		if err := patchOutcomeErr(outcome, err, "lesson"); err != nil {
			return err
		}
		// Orphaned sections would stay readable forever, so they share the
		// lesson's tombstone.
		if _, err := s.sections.PatchSectionsByLesson(ctx, id, bson.M{"deletedAt": deletedAt}); err != nil {
			if command.IsWriteConflict(err) {
				return apperr.Conflict("Concurrent write on sections.", err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.RemoveResult{ID: id, DeletedAt: deletedAt}
	s.events.Emit(ctx, events.Event{
		Type:       events.Removed,
		Resource:   models.TypeLesson,
		ResourceID: id.Hex(),
		Payload:    result,
	})
	return result, nil
}

// patchOutcomeErr converts the tri-state patch result into the boundary
// error the caller should see. No-match means the record vanished between the
// authorization read and the write, which still reads as NotFound.
func patchOutcomeErr(outcome command.PatchOutcome, err error, kind string) error {
	switch outcome {
	case command.PatchApplied:
		return nil
	case command.PatchNoSuchRecord:
		if err != nil {
			return err
		}
		return apperr.NotFound(fmt.Sprintf("Resource %s not found.", kind))
	case command.PatchConflict:
		return apperr.Conflict(fmt.Sprintf("Concurrent write on %s.", kind), err)
	default:
		return err
	}
}
