package access

import (
	"github.com/schul-cloud/schulcloud-editor/models"
)

// IsLive reports whether the resource has not been tombstoned. Setting
// deletedAt is the only transition out of the live state; it is never unset.
func IsLive(r models.Resource) bool {
	return r != nil && r.Tombstoned() == nil
}
