package role

import (
	"fmt"

	"github.com/gatewright/rbac/types"
)

// AddGrant attaches a resource-scoped grant to a defined role.
// Grants accumulate; attaching the same grant twice is harmless since
// resolution takes a set union over matches.
func (c *Catalog) AddGrant(role string, grant types.Permission) error {
	def, ok := c.roles[role]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrRoleNotFound, role)
	}
	def.grants = append(def.grants, grant)
	c.log.V(4).Info("resource permission assigned",
		"role", role, "action", grant.Action, "effect", grant.Effect)
	return nil
}

// Verdict is the catalog's contribution to a permission decision.
type Verdict struct {
	// Granted is true when some effective role carries the action.
	Granted bool
	// Role names the first role that granted the action, in sorted
	// role order.
	Role string
	// DeniedByGrant is true when an explicit deny grant suppressed
	// every allow. It outranks Granted.
	DeniedByGrant bool
}

// Resolve tests whether any of the given roles carries the action.
// Each role is inheritance-expanded; its effective permission set is
// its unscoped permissions plus, when res is non-nil, every grant
// whose pattern matches res.
//
// Deny grants override allows: a matching deny suppresses the action
// unless an allow grant strictly more specific than every matching
// deny also matches. Unscoped role permissions count as less specific
// than any matching grant.
func (c *Catalog) Resolve(roles []string, action string, res *types.ResourceID) Verdict {
	var v Verdict
	bestAllow, bestDeny := -1, -1

	for _, role := range roles {
		for _, name := range c.expand(role) {
			def := c.roles[name]
			if def == nil {
				continue
			}

			if _, ok := def.permissions[action]; ok {
				if v.Role == "" {
					v.Role = role
				}
				v.Granted = true
			}

			if res == nil {
				continue
			}
			for _, g := range def.grants {
				if g.Action != action || !g.Matches(*res) {
					continue
				}
				spec := g.Specificity()
				if g.Denies() {
					if spec > bestDeny {
						bestDeny = spec
					}
				} else {
					if spec > bestAllow {
						bestAllow = spec
					}
					if v.Role == "" {
						v.Role = role
					}
					v.Granted = true
				}
			}
		}
	}

	if bestDeny >= 0 && bestAllow <= bestDeny {
		return Verdict{DeniedByGrant: true}
	}
	return v
}
