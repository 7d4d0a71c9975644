// Package denial holds per-principal negative permission overrides.
// A denial outranks every role grant and is consulted before any
// graph walk.
package denial

import "github.com/gatewright/rbac/types"

// Set maps principals to the actions explicitly denied to them.
// It is not safe for concurrent use; the engine serializes access.
type Set struct {
	denied map[types.PrincipalID]map[string]struct{}
}

// New creates an empty set.
func New() *Set {
	return &Set{denied: make(map[types.PrincipalID]map[string]struct{})}
}

// Deny records an explicit denial. Denying twice is a no-op.
func (s *Set) Deny(pid types.PrincipalID, action string) {
	if s.denied[pid] == nil {
		s.denied[pid] = make(map[string]struct{}, 1)
	}
	s.denied[pid][action] = struct{}{}
}

// Allow lifts a denial and reports whether one was present.
func (s *Set) Allow(pid types.PrincipalID, action string) bool {
	actions := s.denied[pid]
	if _, ok := actions[action]; !ok {
		return false
	}
	delete(actions, action)
	if len(actions) == 0 {
		delete(s.denied, pid)
	}
	return true
}

// Denied reports whether the action is explicitly denied to the
// principal.
func (s *Set) Denied(pid types.PrincipalID, action string) bool {
	_, ok := s.denied[pid][action]
	return ok
}

// RemoveAll drops every denial a principal holds.
func (s *Set) RemoveAll(pid types.PrincipalID) {
	delete(s.denied, pid)
}
