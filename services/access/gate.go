package access

import (
	"context"

	"github.com/schul-cloud/schulcloud-editor/apperr"
	"github.com/schul-cloud/schulcloud-editor/models"
)

type Verb string

const (
	VerbFind   Verb = "find"
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbPatch  Verb = "patch"
	VerbRemove Verb = "remove"
	VerbUpdate Verb = "update"
)

// Required level per verb. Update is missing on purpose: replace-update is
// structurally disabled for every resource kind.
var verbNeedsWrite = map[Verb]bool{
	VerbFind:   false,
	VerbGet:    false,
	VerbCreate: true,
	VerbPatch:  true,
	VerbRemove: true,
}

const msgNoAccess = "You have not the permission to access this ressource."

// Gate is the pre-operation authorization check run before every store call.
type Gate struct {
	eval *Evaluator
}

func NewGate(eval *Evaluator) *Gate {
	return &Gate{eval: eval}
}

// Authorize checks one verb against one resource. A tombstoned or missing
// resource reports NotFound before permissions are consulted, so a caller
// without access cannot tell a tombstone from a record that never existed. A
// live resource with a denied level reports Forbidden. For create the caller
// passes the parent context resource (the enclosing lesson for sections).
func (g *Gate) Authorize(ctx context.Context, resource models.Resource, actor Actor, verb Verb) error {
	if verb == VerbUpdate {
		return apperr.MethodNotAllowed("Method update is not allowed, use patch.")
	}
	needsWrite, ok := verbNeedsWrite[verb]
	if !ok {
		return apperr.MethodNotAllowed("Method " + string(verb) + " is not allowed.")
	}

	if !IsLive(resource) {
		return apperr.NotFound("Resource not found.")
	}

	level, err := g.eval.Level(ctx, resource.ResourcePermissions(), actor)
	if err != nil {
		return err
	}
	if needsWrite && !level.CanWrite {
		return apperr.Forbidden(apperr.ReasonNoAccess, msgNoAccess)
	}
	if !needsWrite && !level.CanRead {
		return apperr.Forbidden(apperr.ReasonNoAccess, msgNoAccess)
	}
	return nil
}

// CanRead is the non-throwing read check used to filter find results; items
// the actor cannot read are silently excluded, never an error.
func (g *Gate) CanRead(ctx context.Context, permissions []models.Permission, actor Actor) (bool, error) {
	level, err := g.eval.Level(ctx, permissions, actor)
	if err != nil {
		return false, err
	}
	return level.CanRead, nil
}
