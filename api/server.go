package api

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/schul-cloud/schulcloud-editor/middleware"
	"github.com/schul-cloud/schulcloud-editor/services/content"
)

// Server maps external requests onto the content services. It resolves
// identity, translates typed errors to status codes and never constructs a
// trusted system actor from request data.
type Server struct {
	lessons    *content.LessonService
	sections   *content.SectionService
	visibility *content.VisibilityService
	identity   *middleware.Identity
	hub        *Hub
	logger     *logrus.Logger
}

func NewServer(lessons *content.LessonService, sections *content.SectionService, visibility *content.VisibilityService, identity *middleware.Identity, hub *Hub, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		lessons:    lessons,
		sections:   sections,
		visibility: visibility,
		identity:   identity,
		hub:        hub,
		logger:     logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /courses/{courseId}/lessons", s.handleFindLessons)
	mux.HandleFunc("POST /courses/{courseId}/lessons", s.handleCreateLesson)
	mux.HandleFunc("GET /lessons/{id}", s.handleGetLesson)
	mux.HandleFunc("PATCH /lessons/{id}", s.handlePatchLesson)
	mux.HandleFunc("DELETE /lessons/{id}", s.handleRemoveLesson)
	mux.HandleFunc("PUT /lessons/{id}", s.handleUpdateDisallowed)

	mux.HandleFunc("GET /lessons/{lessonId}/sections", s.handleFindSections)
	mux.HandleFunc("POST /lessons/{lessonId}/sections", s.handleCreateSection)
	mux.HandleFunc("GET /sections/{id}", s.handleGetSection)
	mux.HandleFunc("PATCH /sections/{id}", s.handlePatchSection)
	mux.HandleFunc("DELETE /sections/{id}", s.handleRemoveSection)
	mux.HandleFunc("PUT /sections/{id}", s.handleUpdateDisallowed)

	mux.HandleFunc("PATCH /helpers/setVisibility/{id}", s.handleSetVisibility)
	// Every other verb on the helper path answers with the same error shape
	// as the rest of the API, not the mux's plain-text 405.
	mux.HandleFunc("/helpers/setVisibility/{id}", s.handleMethodNotAllowed)

	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.HandleWS)
	}

	handler := http.Handler(mux)
	if s.identity != nil {
		handler = s.identity.Middleware(handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: false,
		AllowedHeaders:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "PUT", "OPTIONS"},
	})
	return c.Handler(handler)
}
