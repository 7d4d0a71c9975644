package types

// Engine is the top level interface for end use. It decides whether a
// principal may perform an action, with knowledge of group
// memberships, role inheritance, resource-scoped grants, explicit
// denials, and runtime conditions.
type Engine interface {
	PrincipalManager
	RoleManager
	Decider
	AuditSubscriber

	// Close stops audit event delivery and waits for in-flight
	// handlers. The engine must not be used afterwards.
	Close() error
}

// PrincipalManager manages principals, groups, and the membership
// graph between them.
type PrincipalManager interface {
	// AddPrincipal registers a principal. Re-adding an id is a no-op.
	AddPrincipal(Principal) error

	// RemovePrincipal removes a principal and every policy about it:
	// memberships, role assignments, denials, and condition checkers.
	RemovePrincipal(PrincipalID) error

	// CreateGroup registers a group under id. The group is also a
	// principal: it can hold role assignments and be a member of
	// other groups.
	CreateGroup(id GroupID, name string) error

	// AddToGroup makes a principal a member of a group.
	AddToGroup(GroupID, PrincipalID) error

	// RemoveFromGroup removes a principal from a group's members.
	RemoveFromGroup(GroupID, PrincipalID) error

	// AddSubgroup nests child under parent. The parent absorbs the
	// child's role assignments, not the other way around.
	AddSubgroup(parent, child GroupID) error
}

// RoleManager manages the role catalog and everything attached to it.
type RoleManager interface {
	// AddRole defines or redefines a role.
	AddRole(Role) error

	// RemoveRole deletes a role and cascades: it is stripped from
	// every principal's assignments and every other role's inherits
	// list. It reports whether anything was removed.
	RemoveRole(name string) (bool, error)

	// AssignRole gives a principal a role. The role need not be
	// defined yet; an undefined role contributes no permissions.
	AssignRole(PrincipalID, string) error

	// RevokeRole removes a direct role assignment.
	RevokeRole(PrincipalID, string) error

	// AssignResourcePermission attaches a resource-scoped grant to a
	// role. The grant's scoping fields form the pattern matched
	// against queried resources.
	AssignResourcePermission(role string, grant Permission) error

	// DenyPermission records an explicit denial outranking any grant.
	DenyPermission(pid PrincipalID, action string) error

	// RemoveDeniedPermission lifts an explicit denial. Lifting an
	// absent denial is a no-op.
	RemoveDeniedPermission(pid PrincipalID, action string) error

	// AddConditionChecker gates the (principal, action) pair with a
	// runtime predicate. Checkers accumulate and are ANDed.
	AddConditionChecker(pid PrincipalID, action string, checker ConditionChecker) error

	// PrincipalRoles returns the principal's effective roles,
	// including those absorbed through the membership graph.
	PrincipalRoles(PrincipalID) ([]string, error)

	// RolePermissions returns the role's effective permission actions,
	// including inherited ones.
	RolePermissions(name string) ([]string, error)
}

// Decider answers permission queries. Evaluation never fails: an
// unknown principal or role simply leads to a denial.
type Decider interface {
	// HasPermission decides the resource-free form of the query.
	HasPermission(principal PrincipalID, action string, ctx *Context) bool

	// HasPermissionOn decides the resource-scoped form, matching
	// grants against res.
	HasPermissionOn(principal PrincipalID, action string, res ResourceID, ctx *Context) bool
}

// AuditSubscriber exposes the audit bus.
type AuditSubscriber interface {
	// Subscribe registers a handler for one event type. Handlers run
	// on their own goroutine and never block the engine.
	Subscribe(EventType, Handler)
}
