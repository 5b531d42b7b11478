package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/middleware"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/content"
	"github.com/schul-cloud/schulcloud-editor/services/mongo"
)

func (s *Server) actorFrom(r *http.Request) (access.Actor, error) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		return access.Actor{}, apperr.Forbidden(apperr.ReasonNoUser, "Can not resolve user information.")
	}
	return access.User(userID), nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := mongo.ObjectIDFromString(r.PathValue(name))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("Invalid id.")
	}
	return id, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	e := apperr.AsError(err)
	if e.Code >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
		// Internals stay out of the response body.
		e = apperr.GeneralError("server error", nil)
	}
	s.writeJSON(w, e.Code, e)
}

type createLessonBody struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
	State    bson.M `json:"state"`
}

type createSectionBody struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
	State    bson.M `json:"state"`
}

type setVisibilityBody struct {
	Visible bool                `json:"visible"`
	Type    models.ResourceType `json:"type"`
	Cascade *bool               `json:"cascade"`
}

func (s *Server) handleFindLessons(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.lessons.FindLessons(r.Context(), courseID, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	courseID, err := pathID(r, "courseId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body createLessonBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperr.BadRequest("Invalid request body."))
		return
	}

	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    body.Title,
		Position: body.Position,
		State:    body.State,
	}
	created, err := s.lessons.CreateLesson(r.Context(), lesson, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	lesson, err := s.lessons.GetLesson(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handlePatchLesson(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	fields, visibility, err := decodePatch(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Visibility toggles have cascade semantics; they belong to the
	// visibility service, not the plain patch path.
	if visibility != nil {
		visibility.ID = id
		visibility.Type = models.TypeLesson
		result, err := s.visibility.SetVisibility(r.Context(), *visibility, actor)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	lesson, err := s.lessons.PatchLesson(r.Context(), id, fields, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleRemoveLesson(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.lessons.RemoveLesson(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFindSections(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	lessonID, err := pathID(r, "lessonId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.sections.FindSections(r.Context(), lessonID, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	lessonID, err := pathID(r, "lessonId")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body createSectionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperr.BadRequest("Invalid request body."))
		return
	}

	section := &models.Section{
		Title:    body.Title,
		Position: body.Position,
		State:    body.State,
	}
	created, err := s.sections.CreateSection(r.Context(), lessonID, section, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	section, err := s.sections.GetSection(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, section)
}

func (s *Server) handlePatchSection(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	fields, visibility, err := decodePatch(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if visibility != nil {
		visibility.ID = id
		visibility.Type = models.TypeSection
		result, err := s.visibility.SetVisibility(r.Context(), *visibility, actor)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	section, err := s.sections.PatchSection(r.Context(), id, fields, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, section)
}

func (s *Server) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.sections.RemoveSection(r.Context(), id, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFrom(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body setVisibilityBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperr.BadRequest("Invalid request body."))
		return
	}

	req := content.SetVisibilityRequest{
		ID:      id,
		Type:    body.Type,
		Visible: body.Visible,
		Cascade: body.Cascade == nil || *body.Cascade,
	}
	result, err := s.visibility.SetVisibility(r.Context(), req, actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// Replace-update is structurally disabled for every resource kind,
// independent of who asks.
func (s *Server) handleUpdateDisallowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, apperr.MethodNotAllowed("Method update is not allowed, use patch."))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, apperr.MethodNotAllowed("Method "+strings.ToLower(r.Method)+" is not allowed on this path."))
}

// decodePatch splits a patch body into general fields or, when the body is
// exactly a visibility toggle, a visibility request. Visible and cascade are
// control fields and must be booleans wherever they appear.
func decodePatch(r *http.Request) (bson.M, *content.SetVisibilityRequest, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, nil, apperr.BadRequest("Invalid request body.")
	}

	visibleRaw, hasVisible := raw["visible"]
	visible, visibleOK := visibleRaw.(bool)
	if hasVisible && !visibleOK {
		return nil, nil, apperr.BadRequest("Field visible must be a boolean.")
	}

	cascade := true
	if cascadeRaw, hasCascade := raw["cascade"]; hasCascade {
		c, ok := cascadeRaw.(bool)
		if !ok {
			return nil, nil, apperr.BadRequest("Field cascade must be a boolean.")
		}
		cascade = c
	}

	if hasVisible {
		rest := len(raw) - 1
		if _, ok := raw["cascade"]; ok {
			rest--
		}
		if rest == 0 {
			return nil, &content.SetVisibilityRequest{Visible: visible, Cascade: cascade}, nil
		}
	}

	fields := bson.M{}
	for key, value := range raw {
		fields[key] = value
	}
	return fields, nil, nil
}
