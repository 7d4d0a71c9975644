package types

// PrincipalID identifies any identity subject to access control.
// It is opaque to the engine: binding an ID to a real user or service
// is the caller's responsibility.
type PrincipalID string

// GroupID identifies a group principal.
type GroupID string

// Kind tells what a principal is.
type Kind string

// principal kinds
const (
	KindUser    Kind = "user"
	KindService Kind = "service"
	KindGroup   Kind = "group"
)

// Principal is a user, a service, or a group.
// Group membership state is owned by the engine's registry;
// a Principal value carries identity only.
type Principal struct {
	ID   PrincipalID
	Kind Kind
}
