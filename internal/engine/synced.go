package engine

import (
	"sync"

	"github.com/gatewright/rbac/types"
)

var _ types.Engine = (*syncedEngine)(nil)

// syncedEngine makes the inner engine safe for concurrent use. A
// single reader/writer lock guards all engine state: mutations cross
// several stores (registry, catalog, denials, checkers) and must be
// atomic across them, so per-store locks would not do.
type syncedEngine struct {
	e types.Engine
	sync.RWMutex
}

func newSynced(e types.Engine) *syncedEngine {
	return &syncedEngine{e: e}
}

func (s *syncedEngine) AddPrincipal(p types.Principal) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AddPrincipal(p)
}

func (s *syncedEngine) RemovePrincipal(id types.PrincipalID) error {
	s.Lock()
	defer s.Unlock()
	return s.e.RemovePrincipal(id)
}

func (s *syncedEngine) CreateGroup(id types.GroupID, name string) error {
	s.Lock()
	defer s.Unlock()
	return s.e.CreateGroup(id, name)
}

func (s *syncedEngine) AddToGroup(gid types.GroupID, pid types.PrincipalID) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AddToGroup(gid, pid)
}

func (s *syncedEngine) RemoveFromGroup(gid types.GroupID, pid types.PrincipalID) error {
	s.Lock()
	defer s.Unlock()
	return s.e.RemoveFromGroup(gid, pid)
}

func (s *syncedEngine) AddSubgroup(parent, child types.GroupID) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AddSubgroup(parent, child)
}

func (s *syncedEngine) AddRole(r types.Role) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AddRole(r)
}

func (s *syncedEngine) RemoveRole(name string) (bool, error) {
	s.Lock()
	defer s.Unlock()
	return s.e.RemoveRole(name)
}

func (s *syncedEngine) AssignRole(pid types.PrincipalID, r string) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AssignRole(pid, r)
}

func (s *syncedEngine) RevokeRole(pid types.PrincipalID, r string) error {
	s.Lock()
	defer s.Unlock()
	return s.e.RevokeRole(pid, r)
}

func (s *syncedEngine) AssignResourcePermission(r string, grant types.Permission) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AssignResourcePermission(r, grant)
}

func (s *syncedEngine) DenyPermission(pid types.PrincipalID, action string) error {
	s.Lock()
	defer s.Unlock()
	return s.e.DenyPermission(pid, action)
}

func (s *syncedEngine) RemoveDeniedPermission(pid types.PrincipalID, action string) error {
	s.Lock()
	defer s.Unlock()
	return s.e.RemoveDeniedPermission(pid, action)
}

func (s *syncedEngine) AddConditionChecker(pid types.PrincipalID, action string, c types.ConditionChecker) error {
	s.Lock()
	defer s.Unlock()
	return s.e.AddConditionChecker(pid, action, c)
}

func (s *syncedEngine) PrincipalRoles(pid types.PrincipalID) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	return s.e.PrincipalRoles(pid)
}

func (s *syncedEngine) RolePermissions(name string) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	return s.e.RolePermissions(name)
}

func (s *syncedEngine) HasPermission(pid types.PrincipalID, action string, ctx *types.Context) bool {
	s.RLock()
	defer s.RUnlock()
	return s.e.HasPermission(pid, action, ctx)
}

func (s *syncedEngine) HasPermissionOn(pid types.PrincipalID, action string, res types.ResourceID, ctx *types.Context) bool {
	s.RLock()
	defer s.RUnlock()
	return s.e.HasPermissionOn(pid, action, res, ctx)
}

func (s *syncedEngine) Subscribe(t types.EventType, h types.Handler) {
	// the bus carries its own lock
	s.e.Subscribe(t, h)
}

func (s *syncedEngine) Close() error {
	s.Lock()
	defer s.Unlock()
	return s.e.Close()
}
