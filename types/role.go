package types

// Role is a named, inheritable bundle of permissions.
// Inherits names other roles whose effective permission sets are
// absorbed transitively. Well-formed catalogs keep the inherits
// relation acyclic; the engine tolerates cycles and resolves them
// as no-ops instead of looping.
type Role struct {
	Name        string
	Permissions []string
	Inherits    []string
}
