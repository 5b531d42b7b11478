package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
	"github.com/schul-cloud/schulcloud-editor/services/access"
	"github.com/schul-cloud/schulcloud-editor/services/events"
)

func TestCreateSectionChecksLessonGrant(t *testing.T) {
	env := newTestEnv()
	writerID := primitive.NewObjectID()
	readerID := primitive.NewObjectID()
	lesson := env.store.addLesson(&models.Lesson{
		Permissions: []models.Permission{
			userPermission(writerID, true, true),
			userPermission(readerID, true, false),
		},
	})

	created, err := env.sections.CreateSection(context.Background(), lesson.ID,
		&models.Section{Title: "Intro"}, access.User(writerID.Hex()))
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, created.Lesson)
	assert.False(t, created.Visible)
	assert.Nil(t, created.Permissions)

	// Read on the lesson is not enough to add content to it.
	_, err = env.sections.CreateSection(context.Background(), lesson.ID,
		&models.Section{Title: "Denied"}, access.User(readerID.Hex()))
	require.True(t, apperr.IsForbidden(err))
}

func TestCreateSectionInMissingLesson(t *testing.T) {
	env := newTestEnv()
	_, err := env.sections.CreateSection(context.Background(), primitive.NewObjectID(),
		&models.Section{}, access.User(primitive.NewObjectID().Hex()))
	require.True(t, apperr.IsNotFound(err))
}

func TestCreateSectionSnapshotsLessonGroups(t *testing.T) {
	env := newTestEnv()
	userID := primitive.NewObjectID()
	lesson := env.store.addLesson(&models.Lesson{
		Permissions: []models.Permission{userPermission(userID, true, true)},
	})
	group := env.store.addGroup(&models.SyncGroup{
		Lesson:     lesson.ID,
		Users:      []primitive.ObjectID{primitive.NewObjectID()},
		Permission: models.GroupRead,
	})

	created, err := env.sections.CreateSection(context.Background(), lesson.ID,
		&models.Section{}, access.User(userID.Hex()))
	require.NoError(t, err)

	stored := env.store.sections[created.ID]
	require.Len(t, stored.Permissions, 2)
	byID := map[primitive.ObjectID]models.Permission{}
	for _, p := range stored.Permissions {
		byID[p.Subject.ID] = p
	}
	assert.True(t, byID[group.ID].CanRead)
	assert.False(t, byID[group.ID].CanWrite)
	assert.True(t, byID[userID].CanWrite)
}

func TestPatchSectionParentRefReadsAsNotFound(t *testing.T) {
	env := newTestEnv()
	userID := primitive.NewObjectID()
	lesson := env.store.addLesson(&models.Lesson{
		Permissions: []models.Permission{userPermission(userID, true, true)},
	})
	section := env.store.addSection(&models.Section{
		Lesson:      lesson.ID,
		Permissions: []models.Permission{userPermission(userID, true, true)},
	})

	// A section never moves between lessons; the patch reads as targeting a
	// record that does not exist.
	_, err := env.sections.PatchSection(context.Background(), section.ID,
		bson.M{"lesson": primitive.NewObjectID()}, access.User(userID.Hex()))
	require.True(t, apperr.IsNotFound(err))
	assert.Equal(t, lesson.ID, env.store.sections[section.ID].Lesson)
}

func TestPatchSectionState(t *testing.T) {
	env := newTestEnv()
	userID := primitive.NewObjectID()
	section := env.store.addSection(&models.Section{
		Lesson:      primitive.NewObjectID(),
		Permissions: []models.Permission{userPermission(userID, true, true)},
	})

	patched, err := env.sections.PatchSection(context.Background(), section.ID,
		bson.M{"state": bson.M{"blocks": bson.A{"a", "b"}}}, access.User(userID.Hex()))
	require.NoError(t, err)
	assert.Equal(t, bson.A{"a", "b"}, patched.State["blocks"])
}

func TestFindSectionsFiltersByReadGrant(t *testing.T) {
	env := newTestEnv()
	lessonID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	mine := env.store.addSection(&models.Section{
		Lesson:      lessonID,
		Permissions: []models.Permission{userPermission(userID, true, false)},
	})
	env.store.addSection(&models.Section{
		Lesson:      lessonID,
		Permissions: []models.Permission{userPermission(primitive.NewObjectID(), true, true)},
	})

	page, err := env.sections.FindSections(context.Background(), lessonID, access.User(userID.Hex()))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)
	assert.Nil(t, page.Data[0].Permissions)
}

func TestRemoveSectionTwiceIsNotFound(t *testing.T) {
	env := newTestEnv()
	userID := primitive.NewObjectID()
	section := env.store.addSection(&models.Section{
		Lesson:      primitive.NewObjectID(),
		Permissions: []models.Permission{userPermission(userID, true, true)},
	})
	actor := access.User(userID.Hex())

	first, err := env.sections.RemoveSection(context.Background(), section.ID, actor)
	require.NoError(t, err)

	_, err = env.sections.RemoveSection(context.Background(), section.ID, actor)
	require.True(t, apperr.IsNotFound(err))
	assert.Equal(t, first.DeletedAt, *env.store.sections[section.ID].DeletedAt)

	removed := env.emitter.byType(events.Removed)
	assert.Len(t, removed, 1)
}

func TestSystemActorBypassesSectionPermissions(t *testing.T) {
	env := newTestEnv()
	section := env.store.addSection(&models.Section{
		Lesson:      primitive.NewObjectID(),
		Permissions: nil,
	})

	got, err := env.sections.GetSection(context.Background(), section.ID, access.System())
	require.NoError(t, err)
	assert.Equal(t, section.ID, got.ID)

	// The bypass does not extend past the tombstone gate.
	_, err = env.sections.RemoveSection(context.Background(), section.ID, access.System())
	require.NoError(t, err)
	_, err = env.sections.GetSection(context.Background(), section.ID, access.System())
	assert.True(t, apperr.IsNotFound(err))
}
