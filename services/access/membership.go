package access

import (
	"github.com/schul-cloud/schulcloud-editor/models"
)

// IsMember reports whether userID appears in the group's member list. Ids are
// compared by canonical hex form, so ids from different sources match as long
// as they name the same document. A nil group or a group without members never
// matches; membership fails closed instead of erroring.
func IsMember(group *models.SyncGroup, userID string) bool {
	if group == nil || userID == "" {
		return false
	}
	for _, member := range group.Users {
		if member.Hex() == userID {
			return true
		}
	}
	return false
}
