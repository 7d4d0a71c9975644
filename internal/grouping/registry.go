package grouping

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/gatewright/rbac/types"
)

// Registry owns the principal set and the group membership graph.
// Groups nest arbitrarily deep in two directions: a group contains
// member principals (which may themselves be groups) and subgroups.
// The registry is not safe for concurrent use; the engine serializes
// access to it.
type Registry struct {
	principals map[types.PrincipalID]types.Principal
	groups     map[types.GroupID]*group

	// memberOf is the reverse member index: principal => groups that
	// list it as a member
	memberOf map[types.PrincipalID]map[types.GroupID]struct{}

	log logr.Logger
}

type group struct {
	name      string
	members   map[types.PrincipalID]struct{}
	subgroups map[types.GroupID]struct{}
	// parents is the reverse subgroup index
	parents map[types.GroupID]struct{}
}

// New creates an empty registry.
func New(l logr.Logger) *Registry {
	return &Registry{
		principals: make(map[types.PrincipalID]types.Principal),
		groups:     make(map[types.GroupID]*group),
		memberOf:   make(map[types.PrincipalID]map[types.GroupID]struct{}),
		log:        l,
	}
}

// AddPrincipal registers a principal. Registering an existing id again
// is a no-op.
func (r *Registry) AddPrincipal(p types.Principal) {
	if _, ok := r.principals[p.ID]; ok {
		return
	}
	r.principals[p.ID] = p
	r.log.V(4).Info("principal added", "principal", p.ID, "kind", p.Kind)
}

// Principal looks a principal up by id.
func (r *Registry) Principal(id types.PrincipalID) (types.Principal, bool) {
	p, ok := r.principals[id]
	return p, ok
}

// Has reports whether the principal exists.
func (r *Registry) Has(id types.PrincipalID) bool {
	_, ok := r.principals[id]
	return ok
}

// RemovePrincipal removes a principal and all membership edges about
// it. Removing a group principal also removes its group node.
func (r *Registry) RemovePrincipal(id types.PrincipalID) error {
	if _, ok := r.principals[id]; !ok {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, id)
	}
	delete(r.principals, id)

	for gid := range r.memberOf[id] {
		if g := r.groups[gid]; g != nil {
			delete(g.members, id)
		}
	}
	delete(r.memberOf, id)

	if g, ok := r.groups[types.GroupID(id)]; ok {
		r.unlinkGroup(types.GroupID(id), g)
	}

	r.log.V(4).Info("principal removed", "principal", id)
	return nil
}

func (r *Registry) unlinkGroup(gid types.GroupID, g *group) {
	for m := range g.members {
		delete(r.memberOf[m], gid)
	}
	for sub := range g.subgroups {
		if child := r.groups[sub]; child != nil {
			delete(child.parents, gid)
		}
	}
	for p := range g.parents {
		if parent := r.groups[p]; parent != nil {
			delete(parent.subgroups, gid)
		}
	}
	delete(r.groups, gid)
}

// CreateGroup registers a group and, at the same time, a principal of
// kind group, so the group can hold role assignments and join other
// groups. Creating an existing group again is a no-op.
func (r *Registry) CreateGroup(id types.GroupID, name string) {
	if _, ok := r.groups[id]; ok {
		return
	}
	r.groups[id] = &group{
		name:      name,
		members:   make(map[types.PrincipalID]struct{}),
		subgroups: make(map[types.GroupID]struct{}),
		parents:   make(map[types.GroupID]struct{}),
	}
	r.principals[types.PrincipalID(id)] = types.Principal{ID: types.PrincipalID(id), Kind: types.KindGroup}
	r.log.V(4).Info("group created", "group", id, "name", name)
}

// GroupName returns the display name a group was created with.
func (r *Registry) GroupName(id types.GroupID) (string, bool) {
	g, ok := r.groups[id]
	if !ok {
		return "", false
	}
	return g.name, true
}

// AddToGroup makes a principal a member of a group. Both must already
// exist, otherwise nothing changes.
func (r *Registry) AddToGroup(gid types.GroupID, pid types.PrincipalID) error {
	g, ok := r.groups[gid]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrGroupNotFound, gid)
	}
	if _, ok := r.principals[pid]; !ok {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}

	g.members[pid] = struct{}{}
	if r.memberOf[pid] == nil {
		r.memberOf[pid] = make(map[types.GroupID]struct{}, 1)
	}
	r.memberOf[pid][gid] = struct{}{}
	return nil
}

// RemoveFromGroup removes a principal from a group's members. The
// group and the principal must exist; an absent membership edge is a
// no-op.
func (r *Registry) RemoveFromGroup(gid types.GroupID, pid types.PrincipalID) error {
	g, ok := r.groups[gid]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrGroupNotFound, gid)
	}
	if _, ok := r.principals[pid]; !ok {
		return fmt.Errorf("%w: %s", types.ErrPrincipalNotFound, pid)
	}

	delete(g.members, pid)
	delete(r.memberOf[pid], gid)
	return nil
}

// AddSubgroup nests child under parent. Both groups must exist.
func (r *Registry) AddSubgroup(parent, child types.GroupID) error {
	pg, ok := r.groups[parent]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrGroupNotFound, parent)
	}
	cg, ok := r.groups[child]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrGroupNotFound, child)
	}

	pg.subgroups[child] = struct{}{}
	cg.parents[parent] = struct{}{}
	return nil
}

// Closure returns the principal itself plus every group whose role
// assignments apply to it: groups reached upward through membership
// edges (transitively), each expanded downward through its subgroup
// tree. A group principal is expanded downward as well. Subgroup
// containment propagates roles upward only: nesting child under parent
// gives the parent the child's roles, never the reverse.
//
// Both walks are iterative over an explicit work list with a visited
// set, so membership or subgroup cycles terminate instead of looping.
func (r *Registry) Closure(id types.PrincipalID) []types.PrincipalID {
	expand := make([]types.GroupID, 0, 4)
	queued := make(map[types.GroupID]struct{}, 4)

	enqueue := func(gid types.GroupID) {
		if _, ok := queued[gid]; !ok {
			queued[gid] = struct{}{}
			expand = append(expand, gid)
		}
	}

	if _, ok := r.groups[types.GroupID(id)]; ok {
		enqueue(types.GroupID(id))
	}

	// upward through member edges
	up := []types.PrincipalID{id}
	visited := map[types.PrincipalID]struct{}{id: {}}
	for len(up) > 0 {
		cur := up[len(up)-1]
		up = up[:len(up)-1]
		for gid := range r.memberOf[cur] {
			enqueue(gid)
			gp := types.PrincipalID(gid)
			if _, ok := visited[gp]; !ok {
				visited[gp] = struct{}{}
				up = append(up, gp)
			}
		}
	}

	// downward through subgroup edges; expand grows as we go
	for i := 0; i < len(expand); i++ {
		g := r.groups[expand[i]]
		if g == nil {
			continue
		}
		for sub := range g.subgroups {
			enqueue(sub)
		}
	}

	out := make([]types.PrincipalID, 0, len(expand)+1)
	out = append(out, id)
	for _, gid := range expand {
		if types.PrincipalID(gid) != id {
			out = append(out, types.PrincipalID(gid))
		}
	}
	sort.Slice(out[1:], func(i, j int) bool { return out[i+1] < out[j+1] })
	return out
}
