package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/models"
)

func TestIsMember(t *testing.T) {
	member := primitive.NewObjectID()
	other := primitive.NewObjectID()
	group := &models.SyncGroup{
		ID:    primitive.NewObjectID(),
		Users: []primitive.ObjectID{member, other},
	}

	assert.True(t, IsMember(group, member.Hex()))
	assert.True(t, IsMember(group, other.Hex()))
	assert.False(t, IsMember(group, primitive.NewObjectID().Hex()))
}

func TestIsMemberFailsClosed(t *testing.T) {
	member := primitive.NewObjectID()

	assert.False(t, IsMember(nil, member.Hex()), "nil group should never match")
	assert.False(t, IsMember(&models.SyncGroup{}, member.Hex()), "group without members should never match")
	assert.False(t, IsMember(&models.SyncGroup{Users: []primitive.ObjectID{member}}, ""), "empty user id should never match")
}
