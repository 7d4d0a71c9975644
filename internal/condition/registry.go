// Package condition implements runtime predicates gating otherwise
// granted permissions, and the registry binding them to
// (principal, action) pairs.
package condition

import "github.com/gatewright/rbac/types"

type key struct {
	principal types.PrincipalID
	action    string
}

// Registry keeps ordered checker lists per (principal, action) pair.
// It is not safe for concurrent use; the engine serializes access.
type Registry struct {
	checkers map[key][]types.ConditionChecker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[key][]types.ConditionChecker)}
}

// Add appends a checker for the pair. Checkers accumulate in
// registration order.
func (r *Registry) Add(pid types.PrincipalID, action string, c types.ConditionChecker) {
	k := key{principal: pid, action: action}
	r.checkers[k] = append(r.checkers[k], c)
}

// Check runs every checker attached to the pair and ANDs the results,
// short-circuiting on the first failure. It returns the failing
// checker's kind so the evaluator can name it in the audit reason.
// A pair with no checkers passes.
func (r *Registry) Check(pid types.PrincipalID, action string, res *types.ResourceID, ctx *types.Context) (bool, string) {
	for _, c := range r.checkers[key{principal: pid, action: action}] {
		if !c.Check(pid, action, res, ctx) {
			return false, c.Kind()
		}
	}
	return true, ""
}

// RemoveAll drops every checker attached to a principal.
func (r *Registry) RemoveAll(pid types.PrincipalID) {
	for k := range r.checkers {
		if k.principal == pid {
			delete(r.checkers, k)
		}
	}
}
