package command

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestUpdateBuilderSetAndCurrentDate(t *testing.T) {
	update := NewUpdateBuilder().
		SetAll(bson.M{"title": "x", "visible": true}).
		CurrentDate("updatedAt").
		Build()

	assert.Equal(t, bson.M{"title": "x", "visible": true}, update["$set"])
	assert.Equal(t, bson.M{"updatedAt": true}, update["$currentDate"])
}

func TestUpdateBuilderUnset(t *testing.T) {
	update := NewUpdateBuilder().
		Set("visible", false).
		Unset("deletedAt").
		Build()

	assert.Equal(t, bson.M{"visible": false}, update["$set"])
	assert.Equal(t, bson.M{"deletedAt": ""}, update["$unset"])
}

func TestIsWriteConflict(t *testing.T) {
	conflict := mongo.CommandError{Code: writeConflictCode, Name: "WriteConflict"}
	assert.True(t, IsWriteConflict(conflict))
	assert.True(t, IsWriteConflict(fmt.Errorf("failed to patch: %w", conflict)))

	writeConflict := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: writeConflictCode}},
	}
	assert.True(t, IsWriteConflict(writeConflict))

	assert.False(t, IsWriteConflict(nil))
	assert.False(t, IsWriteConflict(errors.New("boom")))
	assert.False(t, IsWriteConflict(mongo.CommandError{Code: 11000}))
}
