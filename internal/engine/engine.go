// Package engine assembles the registry, catalog, denial set,
// condition registry, and audit bus into the policy evaluator.
package engine

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/gatewright/rbac/internal/audit"
	"github.com/gatewright/rbac/internal/condition"
	"github.com/gatewright/rbac/internal/denial"
	"github.com/gatewright/rbac/internal/grouping"
	"github.com/gatewright/rbac/internal/role"
	"github.com/gatewright/rbac/types"
)

// decision reasons quoted in audit events
const (
	reasonExplicitlyDenied = "explicitly denied"
	reasonNoMatchingRole   = "no matching role found"
	reasonDeniedByGrant    = "denied by grant"
)

type engine struct {
	reg   *grouping.Registry
	cat   *role.Catalog
	den   *denial.Set
	cond  *condition.Registry
	bus   *audit.Bus
	level types.AuditLevel
	log   logr.Logger
}

// New assembles an engine and wraps it for concurrent use.
func New(reg *grouping.Registry, cat *role.Catalog, den *denial.Set,
	cond *condition.Registry, bus *audit.Bus, level types.AuditLevel, l logr.Logger) types.Engine {
	return newSynced(&engine{
		reg:   reg,
		cat:   cat,
		den:   den,
		cond:  cond,
		bus:   bus,
		level: level,
		log:   l,
	})
}

func (e *engine) AddPrincipal(p types.Principal) error {
	e.log.V(4).Info("add principal", "principal", p.ID, "kind", p.Kind)

	e.reg.AddPrincipal(p)
	e.bus.Publish(types.EventPrincipalAddition, types.PrincipalPayload{Principal: p})
	return nil
}

func (e *engine) RemovePrincipal(id types.PrincipalID) error {
	e.log.V(4).Info("remove principal", "principal", id)

	p, ok := e.reg.Principal(id)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, id)
	}
	if err := e.reg.RemovePrincipal(id); err != nil {
		return err
	}

	for _, r := range e.cat.RemoveAssignments(id) {
		e.bus.Publish(types.EventRoleRevocation, types.RolePayload{Principal: id, Role: r})
	}
	e.den.RemoveAll(id)
	e.cond.RemoveAll(id)

	e.bus.Publish(types.EventPrincipalRemoval, types.PrincipalPayload{Principal: p})
	return nil
}

func (e *engine) CreateGroup(id types.GroupID, name string) error {
	e.log.V(4).Info("create group", "group", id, "name", name)

	e.reg.CreateGroup(id, name)
	e.bus.Publish(types.EventGroupCreation, types.GroupPayload{Group: id, Name: name})
	return nil
}

func (e *engine) AddToGroup(gid types.GroupID, pid types.PrincipalID) error {
	e.log.V(4).Info("add to group", "group", gid, "principal", pid)

	if err := e.reg.AddToGroup(gid, pid); err != nil {
		return err
	}
	e.bus.Publish(types.EventGroupAddition, types.MembershipPayload{Group: gid, Member: pid})
	return nil
}

func (e *engine) RemoveFromGroup(gid types.GroupID, pid types.PrincipalID) error {
	e.log.V(4).Info("remove from group", "group", gid, "principal", pid)

	if err := e.reg.RemoveFromGroup(gid, pid); err != nil {
		return err
	}
	e.bus.Publish(types.EventGroupRemoval, types.MembershipPayload{Group: gid, Member: pid})
	return nil
}

func (e *engine) AddSubgroup(parent, child types.GroupID) error {
	e.log.V(4).Info("add subgroup", "parent", parent, "child", child)

	if err := e.reg.AddSubgroup(parent, child); err != nil {
		return err
	}
	e.bus.Publish(types.EventGroupAddition, types.MembershipPayload{
		Group:  parent,
		Member: types.PrincipalID(child),
	})
	return nil
}

func (e *engine) AddRole(r types.Role) error {
	e.log.V(4).Info("add role", "role", r.Name)

	e.cat.AddRole(r)
	e.bus.Publish(types.EventRoleCreation, types.RoleDefinitionPayload{Role: r})
	return nil
}

func (e *engine) RemoveRole(name string) (bool, error) {
	e.log.V(4).Info("remove role", "role", name)

	removed, assignees, inheritors := e.cat.RemoveRole(name)
	if !removed {
		return false, nil
	}

	for _, pid := range assignees {
		e.bus.Publish(types.EventRoleRevocation, types.RolePayload{Principal: pid, Role: name})
	}
	for _, in := range inheritors {
		e.bus.Publish(types.EventRoleRemoval, types.RoleRemovalPayload{Role: name, From: in})
	}
	e.bus.Publish(types.EventRoleRemoval, types.RoleRemovalPayload{Role: name})
	return true, nil
}

func (e *engine) AssignRole(pid types.PrincipalID, r string) error {
	e.log.V(4).Info("assign role", "principal", pid, "role", r)

	if !e.reg.Has(pid) {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}
	e.cat.Assign(pid, r)
	e.bus.Publish(types.EventRoleAssignment, types.RolePayload{Principal: pid, Role: r})
	return nil
}

func (e *engine) RevokeRole(pid types.PrincipalID, r string) error {
	e.log.V(4).Info("revoke role", "principal", pid, "role", r)

	if err := e.cat.Revoke(pid, r); err != nil {
		return err
	}
	e.bus.Publish(types.EventRoleRevocation, types.RolePayload{Principal: pid, Role: r})
	return nil
}

func (e *engine) AssignResourcePermission(r string, grant types.Permission) error {
	e.log.V(4).Info("assign resource permission", "role", r, "action", grant.Action)

	if err := e.cat.AddGrant(r, grant); err != nil {
		return err
	}
	e.bus.Publish(types.EventResourcePermissionAssignment, types.GrantPayload{Role: r, Grant: grant})
	return nil
}

func (e *engine) DenyPermission(pid types.PrincipalID, action string) error {
	e.log.V(4).Info("deny permission", "principal", pid, "action", action)

	if !e.reg.Has(pid) {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}
	e.den.Deny(pid, action)
	e.bus.Publish(types.EventPermissionDenial, types.DenialPayload{Principal: pid, Action: action})
	return nil
}

func (e *engine) RemoveDeniedPermission(pid types.PrincipalID, action string) error {
	e.log.V(4).Info("remove denied permission", "principal", pid, "action", action)

	if e.den.Allow(pid, action) {
		e.bus.Publish(types.EventPermissionDenialRemoval, types.DenialPayload{Principal: pid, Action: action})
	}
	return nil
}

func (e *engine) AddConditionChecker(pid types.PrincipalID, action string, c types.ConditionChecker) error {
	e.log.V(4).Info("add condition checker", "principal", pid, "action", action, "kind", c.Kind())

	if !e.reg.Has(pid) {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}
	e.cond.Add(pid, action, c)
	e.bus.Publish(types.EventConditionAddition, types.ConditionPayload{
		Principal: pid,
		Action:    action,
		Kind:      c.Kind(),
	})
	return nil
}

func (e *engine) PrincipalRoles(pid types.PrincipalID) ([]string, error) {
	if !e.reg.Has(pid) {
		return nil, fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}
	return e.effectiveRoles(pid), nil
}

func (e *engine) RolePermissions(name string) ([]string, error) {
	return e.cat.EffectivePermissions(name)
}

func (e *engine) HasPermission(pid types.PrincipalID, action string, ctx *types.Context) bool {
	return e.evaluate(pid, action, nil, ctx)
}

func (e *engine) HasPermissionOn(pid types.PrincipalID, action string, res types.ResourceID, ctx *types.Context) bool {
	return e.evaluate(pid, action, &res, ctx)
}

// evaluate runs the decision pipeline: explicit denial, role
// resolution over the membership graph, grant matching, then runtime
// conditions. Every outcome lands on the audit bus.
func (e *engine) evaluate(pid types.PrincipalID, action string, res *types.ResourceID, ctx *types.Context) bool {
	granted := false
	var reason string

	if e.den.Denied(pid, action) {
		reason = reasonExplicitlyDenied
	} else {
		verdict := e.cat.Resolve(e.effectiveRoles(pid), action, res)
		switch {
		case verdict.DeniedByGrant:
			reason = reasonDeniedByGrant
		case verdict.Granted:
			granted = true
			reason = "granted by role: " + verdict.Role
		default:
			reason = reasonNoMatchingRole
		}

		if granted {
			if ok, kind := e.cond.Check(pid, action, res, ctx); !ok {
				granted = false
				reason = "denied by condition: " + kind
			}
		}
	}

	e.log.V(6).Info("permission check",
		"principal", pid, "action", action, "granted", granted, "reason", reason)

	if e.level != types.AuditNone {
		payload := types.CheckPayload{
			Principal: pid,
			Action:    action,
			Resource:  res,
			Granted:   granted,
			Reason:    reason,
		}
		if e.level == types.AuditDetailed {
			payload.Context = ctx
		}
		e.bus.Publish(types.EventPermissionCheck, payload)
	}

	return granted
}

// effectiveRoles unions the direct assignments of everything in the
// principal's membership closure, sorted for deterministic evaluation.
func (e *engine) effectiveRoles(pid types.PrincipalID) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)
	for _, id := range e.reg.Closure(pid) {
		for _, r := range e.cat.RolesOf(id) {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (e *engine) Subscribe(t types.EventType, h types.Handler) {
	e.bus.Subscribe(t, h)
}

func (e *engine) Close() error {
	e.bus.Close()
	return nil
}
