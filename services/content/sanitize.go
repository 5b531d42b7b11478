package content

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
)

// The permission set is an internal control field. No representation that
// leaves the service carries it, for any caller.

func sanitizeLesson(lesson *models.Lesson) *models.Lesson {
	if lesson == nil {
		return nil
	}
	out := *lesson
	out.Permissions = nil
	return &out
}

func sanitizeSection(section *models.Section) *models.Section {
	if section == nil {
		return nil
	}
	out := *section
	out.Permissions = nil
	return &out
}

func primitiveIDFromHex(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// Fields a patch may never touch. Reference fields report NotFound so an
// invalid reference is indistinguishable from a missing record; control
// fields report a validation error.
var (
	refFields     = map[string]struct{}{"lesson": {}, "courseId": {}, "_id": {}}
	controlFields = map[string]struct{}{"permissions": {}, "deletedAt": {}, "createdAt": {}, "updatedAt": {}}
)

func validatePatchFields(fields bson.M) error {
	if len(fields) == 0 {
		return apperr.BadRequest("No patch data.")
	}
	for key := range fields {
		if _, ok := refFields[key]; ok {
			return apperr.NotFound("Resource not found.")
		}
		if _, ok := controlFields[key]; ok {
			return apperr.BadRequest("Field " + key + " can not be patched.")
		}
	}
	return nil
}
