package content

import (
	"github.com/schul-cloud/schulcloud-editor/models"
)

// defaultPermissions snapshots sync groups into the initial permission set of
// a new resource. One entry per group; a write-level group also reads. The
// snapshot is taken once at creation time, it is not a live link to the
// groups.
func defaultPermissions(groups []*models.SyncGroup) []models.Permission {
	permissions := make([]models.Permission, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		if group == nil {
			continue
		}
		key := group.ID.Hex()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		permissions = append(permissions, models.Permission{
			Subject:  models.Subject{Type: models.SubjectGroup, ID: group.ID},
			CanRead:  true,
			CanWrite: group.Permission == models.GroupWrite,
		})
	}
	return permissions
}

// addUserPermission appends a direct user entry unless the subject already
// has one; subject identity is unique within a resource.
func addUserPermission(permissions []models.Permission, userID string, canWrite bool) []models.Permission {
	for _, entry := range permissions {
		if entry.Subject.Type == models.SubjectUser && entry.Subject.ID.Hex() == userID {
			return permissions
		}
	}
	id, err := primitiveIDFromHex(userID)
	if err != nil {
		return permissions
	}
	return append(permissions, models.Permission{
		Subject:  models.Subject{Type: models.SubjectUser, ID: id},
		CanRead:  true,
		CanWrite: canWrite,
	})
}
