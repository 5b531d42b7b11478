package content

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/events"
)

type SectionService struct {
	store   SectionStore
	lessons LessonStore
	groups  GroupStore
	gate    *access.Gate
	events  events.Emitter
	logger  *logrus.Logger
}

func NewSectionService(store SectionStore, lessons LessonStore, groups GroupStore, gate *access.Gate, emitter events.Emitter, logger *logrus.Logger) *SectionService {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &SectionService{
		store:   store,
		lessons: lessons,
		groups:  groups,
		gate:    gate,
		events:  emitter,
		logger:  logger,
	}
}

func (s *SectionService) FindSections(ctx context.Context, lessonID primitive.ObjectID, actor access.Actor) (*Page[*models.Section], error) {
	sections, err := s.store.FindSectionsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	readable := make([]*models.Section, 0, len(sections))
	for _, section := range sections {
		ok, err := s.gate.CanRead(ctx, section.Permissions, actor)
		if err != nil {
			return nil, err
		}
		if ok {
			readable = append(readable, sanitizeSection(section))
		}
	}
	return newPage(readable), nil
}

func (s *SectionService) GetSection(ctx context.Context, id primitive.ObjectID, actor access.Actor) (*models.Section, error) {
	section, err := s.store.GetSectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, section, actor, access.VerbGet); err != nil {
		return nil, err
	}
	return sanitizeSection(section), nil
}

// CreateSection creates a section inside a lesson. The check runs against the
// enclosing lesson: creating needs write there. The section's own permission
// set is snapshot from the sync groups registered for that lesson.
func (s *SectionService) CreateSection(ctx context.Context, lessonID primitive.ObjectID, section *models.Section, actor access.Actor) (*models.Section, error) {
	lesson, err := s.lessons.GetLessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, lesson, actor, access.VerbCreate); err != nil {
		return nil, err
	}

	groups, err := s.groups.FindGroupsByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	section.Lesson = lessonID
	section.Permissions = defaultPermissions(groups)
	if !actor.IsSystem() {
		section.Permissions = addUserPermission(section.Permissions, actor.UserID(), true)
	}
	section.Visible = false
	section.DeletedAt = nil

	if err := s.store.CreateSection(ctx, section); err != nil {
		return nil, err
	}

	out := sanitizeSection(section)
	s.events.Emit(ctx, events.Event{
		Type:       events.Created,
		Resource:   models.TypeSection,
		ResourceID: out.ID.Hex(),
		Payload:    out,
	})
	return out, nil
}

func (s *SectionService) PatchSection(ctx context.Context, id primitive.ObjectID, fields bson.M, actor access.Actor) (*models.Section, error) {
	if err := validatePatchFields(fields); err != nil {
		return nil, err
	}

	section, err := s.store.GetSectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, section, actor, access.VerbPatch); err != nil {
		return nil, err
	}

	outcome, err := s.store.PatchSection(ctx, id, fields)
	if err := patchOutcomeErr(outcome, err, "section"); err != nil {
		return nil, err
	}

	patched, err := s.store.GetSectionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := sanitizeSection(patched)
	s.events.Emit(ctx, events.Event{
		Type:       events.Patched,
		Resource:   models.TypeSection,
		ResourceID: out.ID.Hex(),
		Payload:    out,
	})
	return out, nil
}

// RemoveSection tombstones one section. A second remove finds no live record
// and reports NotFound; the stored deletedAt keeps its first value.
func (s *SectionService) RemoveSection(ctx context.Context, id primitive.ObjectID, actor access.Actor) (*models.RemoveResult, error) {
	section, err := s.store.GetSectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, section, actor, access.VerbRemove); err != nil {
		return nil, err
	}

	deletedAt := time.Now().UTC()
	outcome, err := s.store.PatchSection(ctx, id, bson.M{"deletedAt": deletedAt})
	if err := patchOutcomeErr(outcome, err, "section"); err != nil {
		return nil, err
	}

	result := &models.RemoveResult{ID: id, DeletedAt: deletedAt}
	s.events.Emit(ctx, events.Event{
		Type:       events.Removed,
		Resource:   models.TypeSection,
		ResourceID: id.Hex(),
		Payload:    result,
	})
	return result, nil
}
