package domain

// ActorRole distinguishes administrators from requesting users.
type ActorRole string

const (
	ActorRoleAdmin ActorRole = "admin"
	ActorRoleUser  ActorRole = "user"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID   string
	Name string
	Role ActorRole
}

// IsAdmin reports whether the actor may triage tickets and manage inventory.
func (a Actor) IsAdmin() bool {
	return a.Role == ActorRoleAdmin
}
