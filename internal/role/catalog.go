package role

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/gatewright/rbac/types"
)

// Catalog owns role definitions, the inherits DAG between them, direct
// role assignments, and resource-scoped grants. It is not safe for
// concurrent use; the engine serializes access to it.
type Catalog struct {
	roles       map[string]*definition
	assignments map[types.PrincipalID]map[string]struct{}
	log         logr.Logger
}

type definition struct {
	permissions map[string]struct{}
	inherits    []string
	// grants keep insertion order so evaluation is deterministic
	grants []types.Permission
}

// New creates an empty catalog.
func New(l logr.Logger) *Catalog {
	return &Catalog{
		roles:       make(map[string]*definition),
		assignments: make(map[types.PrincipalID]map[string]struct{}),
		log:         l,
	}
}

// AddRole defines a role. Redefining a role replaces its permissions
// and inherits list but keeps its grants and assignments, so adding
// the same definition twice changes nothing.
func (c *Catalog) AddRole(r types.Role) {
	perms := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		perms[p] = struct{}{}
	}

	def := c.roles[r.Name]
	if def == nil {
		def = &definition{}
		c.roles[r.Name] = def
	}
	def.permissions = perms
	def.inherits = append([]string(nil), r.Inherits...)

	c.log.V(4).Info("role added", "role", r.Name, "permissions", len(perms), "inherits", r.Inherits)
}

// Defined reports whether the role has a definition.
func (c *Catalog) Defined(name string) bool {
	_, ok := c.roles[name]
	return ok
}

// RemoveRole deletes a role definition and cascades: the role is
// stripped from every principal's assignment set and from every other
// role's inherits list. It returns the principals and roles that lost
// an edge, so the caller can emit one removal event per edge.
func (c *Catalog) RemoveRole(name string) (removed bool, assignees []types.PrincipalID, inheritors []string) {
	if _, ok := c.roles[name]; ok {
		delete(c.roles, name)
		removed = true
	}

	for pid, roles := range c.assignments {
		if _, ok := roles[name]; ok {
			delete(roles, name)
			if len(roles) == 0 {
				delete(c.assignments, pid)
			}
			assignees = append(assignees, pid)
			removed = true
		}
	}
	sort.Slice(assignees, func(i, j int) bool { return assignees[i] < assignees[j] })

	for rn, def := range c.roles {
		kept := def.inherits[:0]
		for _, in := range def.inherits {
			if in == name {
				inheritors = append(inheritors, rn)
				removed = true
			} else {
				kept = append(kept, in)
			}
		}
		def.inherits = kept
	}
	sort.Strings(inheritors)

	if removed {
		c.log.V(4).Info("role removed", "role", name,
			"assignees", len(assignees), "inheritors", len(inheritors))
	}
	return removed, assignees, inheritors
}

// Assign gives a principal a role. The role need not be defined:
// an undefined role simply contributes no permissions.
func (c *Catalog) Assign(pid types.PrincipalID, role string) {
	if c.assignments[pid] == nil {
		c.assignments[pid] = make(map[string]struct{}, 1)
	}
	c.assignments[pid][role] = struct{}{}
}

// Revoke removes a direct assignment. An absent assignment is an
// error so callers can tell a typo from a successful revocation.
func (c *Catalog) Revoke(pid types.PrincipalID, role string) error {
	roles := c.assignments[pid]
	if _, ok := roles[role]; !ok {
		return fmt.Errorf("%w: assignment %s -> %s", types.ErrRoleNotFound, pid, role)
	}
	delete(roles, role)
	if len(roles) == 0 {
		delete(c.assignments, pid)
	}
	return nil
}

// RemoveAssignments drops every assignment a principal holds and
// returns the roles it lost, sorted.
func (c *Catalog) RemoveAssignments(pid types.PrincipalID) []string {
	roles := c.assignments[pid]
	if len(roles) == 0 {
		return nil
	}
	delete(c.assignments, pid)

	out := make([]string, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// RolesOf returns the roles directly assigned to a principal, sorted.
func (c *Catalog) RolesOf(pid types.PrincipalID) []string {
	roles := c.assignments[pid]
	if len(roles) == 0 {
		return nil
	}
	out := make([]string, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// EffectivePermissions returns the actions a role carries, own and
// inherited, sorted. Grants are not included: they only apply to a
// concrete queried resource.
func (c *Catalog) EffectivePermissions(name string) ([]string, error) {
	if _, ok := c.roles[name]; !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrRoleNotFound, name)
	}

	set := make(map[string]struct{})
	for _, rn := range c.expand(name) {
		def := c.roles[rn]
		if def == nil {
			continue
		}
		for p := range def.permissions {
			set[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// expand returns the role plus everything it inherits, transitively.
// The walk is an iterative depth-first traversal with a visited set:
// a malformed inherits cycle terminates on already-visited roles
// instead of hanging.
func (c *Catalog) expand(name string) []string {
	out := make([]string, 0, 4)
	visited := make(map[string]struct{}, 4)
	stack := []string{name}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)

		if def := c.roles[cur]; def != nil {
			for i := len(def.inherits) - 1; i >= 0; i-- {
				stack = append(stack, def.inherits[i])
			}
		}
	}
	return out
}
