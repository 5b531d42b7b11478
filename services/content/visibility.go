package content

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/events"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
)

// SetVisibilityRequest is the one operation the visibility service handles.
// Cascade only applies to lessons and defaults to true at the boundary.
type SetVisibilityRequest struct {
	ID      primitive.ObjectID
	Type    models.ResourceType
	Visible bool
	Cascade bool
}

// VisibilityService toggles visibility on a lesson or section. A lesson
// toggle cascades to its live sections in the same transaction; the cascade
// is covered by the lesson-level write grant, the sections' own permission
// sets are not re-checked for the derived writes.
type VisibilityService struct {
	lessons  LessonStore
	sections SectionStore
	gate     *access.Gate
	tx       Transactor
	events   events.Emitter
	logger   *logrus.Logger
}

func NewVisibilityService(lessons LessonStore, sections SectionStore, gate *access.Gate, tx Transactor, emitter events.Emitter, logger *logrus.Logger) *VisibilityService {
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &VisibilityService{
		lessons:  lessons,
		sections: sections,
		gate:     gate,
		tx:       tx,
		events:   emitter,
		logger:   logger,
	}
}

func (s *VisibilityService) SetVisibility(ctx context.Context, req SetVisibilityRequest, actor access.Actor) (*models.VisibilityResult, error) {
	switch req.Type {
	case models.TypeLesson:
		return s.setLessonVisibility(ctx, req, actor)
	case models.TypeSection:
		return s.setSectionVisibility(ctx, req, actor)
	default:
		return nil, apperr.BadRequest("Unknown resource type " + string(req.Type) + ".")
	}
}

func (s *VisibilityService) setLessonVisibility(ctx context.Context, req SetVisibilityRequest, actor access.Actor) (*models.VisibilityResult, error) {
	lesson, err := s.lessons.GetLessonByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	// Only the lesson's own grant is checked; a failure here aborts before
	// any write.
	if err := s.gate.Authorize(ctx, lesson, actor, access.VerbPatch); err != nil {
		return nil, err
	}

	var cascaded []models.SectionVisibility
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		outcome, err := s.lessons.PatchLesson(ctx, req.ID, bson.M{"visible": req.Visible})
		if err := patchOutcomeErr(outcome, err, "lesson"); err != nil {
			return err
		}

		if !req.Cascade {
			return nil
		}

		sections, err := s.sections.FindSectionsByLesson(ctx, req.ID)
		if err != nil {
			return err
		}
		cascaded = make([]models.SectionVisibility, 0, len(sections))
		if len(sections) > 0 {
			modified, err := s.sections.PatchSectionsByLesson(ctx, req.ID, bson.M{"visible": req.Visible})
			if err != nil {
				if command.IsWriteConflict(err) {
					return apperr.Conflict("Concurrent write on sections.", err)
				}
				return err
			}
			alreadySet := int64(0)
			for _, section := range sections {
				if section.Visible == req.Visible {
					alreadySet++
				}
			}
			if modified+alreadySet < int64(len(sections)) {
				return apperr.Conflict(
					fmt.Sprintf("Cascade reached %d of %d sections.", modified+alreadySet, len(sections)), nil)
			}
		}
		for _, section := range sections {
			cascaded = append(cascaded, models.SectionVisibility{ID: section.ID, Visible: req.Visible})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.VisibilityResult{
		ID:       req.ID,
		Type:     models.TypeLesson,
		Visible:  req.Visible,
		Sections: cascaded,
	}
	s.events.Emit(ctx, events.Event{
		Type:       events.Patched,
		Resource:   models.TypeLesson,
		ResourceID: req.ID.Hex(),
		Payload:    result,
	})
	return result, nil
}

func (s *VisibilityService) setSectionVisibility(ctx context.Context, req SetVisibilityRequest, actor access.Actor) (*models.VisibilityResult, error) {
	section, err := s.sections.GetSectionByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, section, actor, access.VerbPatch); err != nil {
		return nil, err
	}

	outcome, err := s.sections.PatchSection(ctx, req.ID, bson.M{"visible": req.Visible})
	if err := patchOutcomeErr(outcome, err, "section"); err != nil {
		return nil, err
	}

	result := &models.VisibilityResult{
		ID:      req.ID,
		Type:    models.TypeSection,
		Visible: req.Visible,
	}
	s.events.Emit(ctx, events.Event{
		Type:       events.Patched,
		Resource:   models.TypeSection,
		ResourceID: req.ID.Hex(),
		Payload:    result,
	})
	return result, nil
}
