package content

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/events"
	"github.com/schul-cloud/schulcloud-editor/services/mongo/command"
)

// fakeStore backs all three store contracts plus the transactor with plain
// maps. WithTransaction snapshots state and restores it when fn fails, which
// is how the atomicity tests observe rollback.
type fakeStore struct {
	mu       sync.Mutex
	lessons  map[primitive.ObjectID]*models.Lesson
	sections map[primitive.ObjectID]*models.Section
	groups   map[primitive.ObjectID]*models.SyncGroup

	cascadeErr      error
	cascadeShortBy  int64
	conflictOnPatch bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lessons:  make(map[primitive.ObjectID]*models.Lesson),
		sections: make(map[primitive.ObjectID]*models.Section),
		groups:   make(map[primitive.ObjectID]*models.SyncGroup),
	}
}

func (f *fakeStore) addLesson(lesson *models.Lesson) *models.Lesson {
	if lesson.ID.IsZero() {
		lesson.ID = primitive.NewObjectID()
	}
	f.lessons[lesson.ID] = lesson
	return lesson
}

func (f *fakeStore) addSection(section *models.Section) *models.Section {
	if section.ID.IsZero() {
		section.ID = primitive.NewObjectID()
	}
	f.sections[section.ID] = section
	return section
}

func (f *fakeStore) addGroup(group *models.SyncGroup) *models.SyncGroup {
	if group.ID.IsZero() {
		group.ID = primitive.NewObjectID()
	}
	f.groups[group.ID] = group
	return group
}

func (f *fakeStore) GetLessonByID(_ context.Context, id primitive.ObjectID) (*models.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lesson, ok := f.lessons[id]
	if !ok || lesson.DeletedAt != nil {
		return nil, apperr.NotFound("Lesson not found.")
	}
	out := *lesson
	return &out, nil
}

func (f *fakeStore) FindLessonsByCourse(_ context.Context, courseID primitive.ObjectID) ([]*models.Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Lesson
	for _, lesson := range f.lessons {
		if lesson.CourseID == courseID && lesson.DeletedAt == nil {
			copied := *lesson
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateLesson(_ context.Context, lesson *models.Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lesson.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	copied := *lesson
	f.lessons[lesson.ID] = &copied
	return nil
}

func (f *fakeStore) PatchLesson(_ context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictOnPatch {
		return command.PatchConflict, apperr.Conflict("write conflict", nil)
	}
	lesson, ok := f.lessons[id]
	if !ok || lesson.DeletedAt != nil {
		return command.PatchNoSuchRecord, nil
	}
	applyLessonFields(lesson, fields)
	return command.PatchApplied, nil
}

func (f *fakeStore) GetSectionByID(_ context.Context, id primitive.ObjectID) (*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section, ok := f.sections[id]
	if !ok || section.DeletedAt != nil {
		return nil, apperr.NotFound("Section not found.")
	}
	out := *section
	return &out, nil
}

func (f *fakeStore) FindSectionsByLesson(_ context.Context, lessonID primitive.ObjectID) ([]*models.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Section
	for _, section := range f.sections {
		if section.Lesson == lessonID && section.DeletedAt == nil {
			copied := *section
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSection(_ context.Context, section *models.Section) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	section.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	copied := *section
	f.sections[section.ID] = &copied
	return nil
}

func (f *fakeStore) PatchSection(_ context.Context, id primitive.ObjectID, fields bson.M) (command.PatchOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section, ok := f.sections[id]
	if !ok || section.DeletedAt != nil {
		return command.PatchNoSuchRecord, nil
	}
	applySectionFields(section, fields)
	return command.PatchApplied, nil
}

func (f *fakeStore) PatchSectionsByLesson(_ context.Context, lessonID primitive.ObjectID, fields bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cascadeErr != nil {
		return 0, f.cascadeErr
	}
	var modified int64
	skip := f.cascadeShortBy
	for _, section := range f.sections {
		if section.Lesson != lessonID || section.DeletedAt != nil {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if changed := applySectionFields(section, fields); changed {
			modified++
		}
	}
	return modified, nil
}

func (f *fakeStore) GetGroupByID(_ context.Context, id primitive.ObjectID) (*models.SyncGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[id]
	if !ok {
		return nil, apperr.NotFound("Group not found.")
	}
	return group, nil
}

func (f *fakeStore) FindGroupsByCourse(_ context.Context, courseID primitive.ObjectID) ([]*models.SyncGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SyncGroup
	for _, group := range f.groups {
		if group.CourseID == courseID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (f *fakeStore) FindGroupsByLesson(_ context.Context, lessonID primitive.ObjectID) ([]*models.SyncGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.SyncGroup
	for _, group := range f.groups {
		if group.Lesson == lessonID {
			out = append(out, group)
		}
	}
	return out, nil
}

func (f *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	lessonSnap := make(map[primitive.ObjectID]*models.Lesson, len(f.lessons))
	for id, lesson := range f.lessons {
		copied := *lesson
		lessonSnap[id] = &copied
	}
	sectionSnap := make(map[primitive.ObjectID]*models.Section, len(f.sections))
	for id, section := range f.sections {
		copied := *section
		sectionSnap[id] = &copied
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.lessons = lessonSnap
		f.sections = sectionSnap
		f.mu.Unlock()
		return err
	}
	return nil
}

func applyLessonFields(lesson *models.Lesson, fields bson.M) {
	for key, value := range fields {
		switch key {
		case "visible":
			lesson.Visible = value.(bool)
		case "title":
			lesson.Title = value.(string)
		case "state":
			lesson.State = toBsonM(value)
		case "deletedAt":
			t := value.(time.Time)
			lesson.DeletedAt = &t
		}
	}
	lesson.UpdatedAt = time.Now().UTC()
}

func applySectionFields(section *models.Section, fields bson.M) bool {
	changed := false
	for key, value := range fields {
		switch key {
		case "visible":
			v := value.(bool)
			if section.Visible != v {
				changed = true
			}
			section.Visible = v
		case "title":
			section.Title = value.(string)
			changed = true
		case "state":
			section.State = toBsonM(value)
			changed = true
		case "deletedAt":
			t := value.(time.Time)
			if section.DeletedAt == nil {
				changed = true
				section.DeletedAt = &t
			}
		}
	}
	section.UpdatedAt = time.Now().UTC()
	return changed
}

func toBsonM(value interface{}) bson.M {
	switch v := value.(type) {
	case bson.M:
		return v
	case map[string]interface{}:
		return bson.M(v)
	default:
		return nil
	}
}

// fakeEmitter records events synchronously.
type fakeEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakeEmitter) Emit(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEmitter) byType(t events.Type) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	store      *fakeStore
	emitter    *fakeEmitter
	gate       *access.Gate
	lessons    *LessonService
	sections   *SectionService
	visibility *VisibilityService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	gate := access.NewGate(access.NewEvaluator(store))
	return &testEnv{
		store:      store,
		emitter:    emitter,
		gate:       gate,
		lessons:    NewLessonService(store, store, store, gate, store, emitter, nil),
		sections:   NewSectionService(store, store, store, gate, emitter, nil),
		visibility: NewVisibilityService(store, store, gate, store, emitter, nil),
	}
}

func userPermission(userID primitive.ObjectID, read, write bool) models.Permission {
	return models.Permission{
		Subject:  models.Subject{Type: models.SubjectUser, ID: userID},
		CanRead:  read,
		CanWrite: write,
	}
}

func groupPermission(groupID primitive.ObjectID, read, write bool) models.Permission {
	return models.Permission{
		Subject:  models.Subject{Type: models.SubjectGroup, ID: groupID},
		CanRead:  read,
		CanWrite: write,
	}
}
