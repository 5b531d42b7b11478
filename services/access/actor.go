package access

// Actor is the resolved identity an operation runs as. The transport resolves
// a user id and builds a user actor; the system actor is a trusted internal
// credential for server-to-server calls and must never be constructed from
// request data.
type Actor struct {
	userID string
	system bool
}

// User returns an actor for a resolved end user. The id must already be in
// canonical (hex) form.
func User(userID string) Actor {
	return Actor{userID: userID}
}

// System returns the trusted internal credential. It bypasses permission
// evaluation entirely.
func System() Actor {
	return Actor{system: true}
}

func (a Actor) UserID() string { return a.userID }

func (a Actor) IsSystem() bool { return a.system }
