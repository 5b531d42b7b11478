package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
)

func newTestGate() *Gate {
	return NewGate(NewEvaluator(&stubGroups{}))
}

func lessonFor(userID primitive.ObjectID, read, write bool) *models.Lesson {
	return &models.Lesson{
		ID:          primitive.NewObjectID(),
		Permissions: []models.Permission{userEntry(userID, read, write)},
	}
}

func TestAuthorizeUpdateAlwaysDisallowed(t *testing.T) {
	userID := primitive.NewObjectID()
	gate := newTestGate()
	lesson := lessonFor(userID, true, true)

	err := gate.Authorize(context.Background(), lesson, User(userID.Hex()), VerbUpdate)
	assert.True(t, apperr.IsMethodNotAllowed(err), "full access must not enable update")

	err = gate.Authorize(context.Background(), lesson, System(), VerbUpdate)
	assert.True(t, apperr.IsMethodNotAllowed(err), "even the system actor cannot update")
}

func TestAuthorizeTombstoneIsNotFound(t *testing.T) {
	userID := primitive.NewObjectID()
	gate := newTestGate()
	deletedAt := time.Now()
	lesson := lessonFor(userID, true, true)
	lesson.DeletedAt = &deletedAt

	// A prior write grant changes nothing: the tombstone is invisible.
	for _, verb := range []Verb{VerbGet, VerbPatch, VerbRemove} {
		err := gate.Authorize(context.Background(), lesson, User(userID.Hex()), verb)
		assert.True(t, apperr.IsNotFound(err), "verb %s on tombstone should be NotFound", verb)
		assert.False(t, apperr.IsForbidden(err))
	}
}

func TestAuthorizeMissingResourceIsNotFound(t *testing.T) {
	gate := newTestGate()

	err := gate.Authorize(context.Background(), nil, User(primitive.NewObjectID().Hex()), VerbGet)
	assert.True(t, apperr.IsNotFound(err))
}

func TestAuthorizeDeniedIsForbidden(t *testing.T) {
	userID := primitive.NewObjectID()
	gate := newTestGate()
	lesson := lessonFor(primitive.NewObjectID(), true, true)

	err := gate.Authorize(context.Background(), lesson, User(userID.Hex()), VerbGet)
	require.True(t, apperr.IsForbidden(err))
	assert.Equal(t, apperr.ReasonNoAccess, apperr.AsError(err).Reason)
}

func TestAuthorizeReadOnlyCannotWrite(t *testing.T) {
	userID := primitive.NewObjectID()
	gate := newTestGate()
	lesson := lessonFor(userID, true, false)

	assert.NoError(t, gate.Authorize(context.Background(), lesson, User(userID.Hex()), VerbGet))

	for _, verb := range []Verb{VerbCreate, VerbPatch, VerbRemove} {
		err := gate.Authorize(context.Background(), lesson, User(userID.Hex()), verb)
		assert.True(t, apperr.IsForbidden(err), "verb %s needs write", verb)
	}
}

func TestAuthorizeWriteGrantCoversReadVerbs(t *testing.T) {
	userID := primitive.NewObjectID()
	gate := newTestGate()
	lesson := lessonFor(userID, false, true)

	assert.NoError(t, gate.Authorize(context.Background(), lesson, User(userID.Hex()), VerbGet))
	assert.NoError(t, gate.Authorize(context.Background(), lesson, User(userID.Hex()), VerbPatch))
}

func TestIsLive(t *testing.T) {
	lesson := &models.Lesson{ID: primitive.NewObjectID()}
	assert.True(t, IsLive(lesson))

	deletedAt := time.Now()
	lesson.DeletedAt = &deletedAt
	assert.False(t, IsLive(lesson))
	assert.False(t, IsLive(nil))
}
