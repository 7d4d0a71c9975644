package types

import "time"

// EventType discriminates audit events.
type EventType string

// audit event vocabulary: one type per state mutation plus the
// permission check itself
const (
	EventPermissionCheck              EventType = "permissionCheck"
	EventRoleAssignment               EventType = "roleAssignment"
	EventRoleRevocation               EventType = "roleRevocation"
	EventPrincipalAddition            EventType = "principalAddition"
	EventPrincipalRemoval             EventType = "principalRemoval"
	EventRoleCreation                 EventType = "roleCreation"
	EventRoleRemoval                  EventType = "roleRemoval"
	EventGroupCreation                EventType = "groupCreation"
	EventGroupAddition                EventType = "groupAddition"
	EventGroupRemoval                 EventType = "groupRemoval"
	EventPermissionDenial             EventType = "permissionDenial"
	EventPermissionDenialRemoval      EventType = "permissionDenialRemoval"
	EventConditionAddition            EventType = "conditionAddition"
	EventResourcePermissionAssignment EventType = "resourcePermissionAssignment"
)

// Event is one entry on the audit bus. Payload holds one of the
// *Payload structs below, keyed by Type.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// Handler receives audit events. Delivery is asynchronous and
// best-effort; a slow handler loses events instead of slowing the
// engine down.
type Handler func(Event)

// AuditLevel controls how much a permission check reveals on the bus.
type AuditLevel string

// audit levels
const (
	// AuditNone suppresses permission check events entirely.
	AuditNone AuditLevel = "none"
	// AuditBasic publishes checks without the caller context.
	AuditBasic AuditLevel = "basic"
	// AuditDetailed includes the raw caller context. The context can
	// carry sensitive fields, so this is opt-in.
	AuditDetailed AuditLevel = "detailed"
)

// CheckPayload rides on EventPermissionCheck.
type CheckPayload struct {
	Principal PrincipalID
	Action    string
	Resource  *ResourceID
	Granted   bool
	Reason    string
	// Context is set only at AuditDetailed.
	Context *Context
}

// RolePayload rides on EventRoleAssignment and EventRoleRevocation.
type RolePayload struct {
	Principal PrincipalID
	Role      string
}

// PrincipalPayload rides on EventPrincipalAddition and
// EventPrincipalRemoval.
type PrincipalPayload struct {
	Principal Principal
}

// RoleDefinitionPayload rides on EventRoleCreation.
type RoleDefinitionPayload struct {
	Role Role
}

// RoleRemovalPayload rides on EventRoleRemoval. From names the role
// whose inherits list lost the edge; it is empty for the event
// announcing the definition's own removal.
type RoleRemovalPayload struct {
	Role string
	From string
}

// GroupPayload rides on EventGroupCreation.
type GroupPayload struct {
	Group GroupID
	Name  string
}

// MembershipPayload rides on EventGroupAddition and EventGroupRemoval.
// For subgroup edges, Member is the child group's principal id.
type MembershipPayload struct {
	Group  GroupID
	Member PrincipalID
}

// DenialPayload rides on EventPermissionDenial and
// EventPermissionDenialRemoval.
type DenialPayload struct {
	Principal PrincipalID
	Action    string
}

// ConditionPayload rides on EventConditionAddition.
type ConditionPayload struct {
	Principal PrincipalID
	Action    string
	Kind      string
}

// GrantPayload rides on EventResourcePermissionAssignment.
type GrantPayload struct {
	Role  string
	Grant Permission
}
