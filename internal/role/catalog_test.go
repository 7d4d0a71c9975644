package role_test

import (
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/gatewright/rbac/internal/role"
	"github.com/gatewright/rbac/types"
)

func TestRole(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "role test suit")
}

var _ = Describe("catalog", func() {
	var cat *Catalog

	BeforeEach(func() {
		cat = New(logr.Discard())
		cat.AddRole(types.Role{Name: "viewer", Permissions: []string{"read"}})
		cat.AddRole(types.Role{Name: "editor", Permissions: []string{"write"}, Inherits: []string{"viewer"}})
	})

	Describe("inheritance", func() {
		It("resolves inherited permissions transitively", func() {
			cat.AddRole(types.Role{Name: "manager", Permissions: []string{"delete"}, Inherits: []string{"editor"}})

			perms, err := cat.EffectivePermissions("manager")
			Expect(err).To(Succeed())
			Expect(perms).To(Equal([]string{"delete", "read", "write"}))
		})

		It("skips undefined inherited roles", func() {
			cat.AddRole(types.Role{Name: "odd", Permissions: []string{"x"}, Inherits: []string{"ghost"}})

			perms, err := cat.EffectivePermissions("odd")
			Expect(err).To(Succeed())
			Expect(perms).To(Equal([]string{"x"}))
		})

		It("terminates on an inherits cycle", func() {
			cat.AddRole(types.Role{Name: "a", Permissions: []string{"pa"}, Inherits: []string{"b"}})
			cat.AddRole(types.Role{Name: "b", Permissions: []string{"pb"}, Inherits: []string{"a"}})

			perms, err := cat.EffectivePermissions("a")
			Expect(err).To(Succeed())
			Expect(perms).To(Equal([]string{"pa", "pb"}))
		})

		It("errors on an unknown role", func() {
			_, err := cat.EffectivePermissions("ghost")
			Expect(err).To(MatchError(types.ErrRoleNotFound))
		})
	})

	Describe("assignments", func() {
		It("deduplicates", func() {
			cat.Assign("user1", "viewer")
			cat.Assign("user1", "viewer")
			Expect(cat.RolesOf("user1")).To(Equal([]string{"viewer"}))
		})

		It("revokes", func() {
			cat.Assign("user1", "viewer")
			Expect(cat.Revoke("user1", "viewer")).To(Succeed())
			Expect(cat.RolesOf("user1")).To(BeEmpty())
			Expect(cat.Revoke("user1", "viewer")).To(MatchError(types.ErrRoleNotFound))
		})

		It("allows assigning an undefined role", func() {
			cat.Assign("user1", "owner")
			Expect(cat.RolesOf("user1")).To(Equal([]string{"owner"}))
			v := cat.Resolve([]string{"owner"}, "read", nil)
			Expect(v.Granted).To(BeFalse())
		})
	})

	Describe("removal cascade", func() {
		It("strips assignments and inherits edges", func() {
			cat.Assign("user1", "viewer")
			cat.Assign("user2", "viewer")

			removed, assignees, inheritors := cat.RemoveRole("viewer")
			Expect(removed).To(BeTrue())
			Expect(assignees).To(Equal([]types.PrincipalID{"user1", "user2"}))
			Expect(inheritors).To(Equal([]string{"editor"}))

			Expect(cat.RolesOf("user1")).To(BeEmpty())
			perms, err := cat.EffectivePermissions("editor")
			Expect(err).To(Succeed())
			Expect(perms).To(Equal([]string{"write"}))
		})

		It("reports nothing removed for an unknown role", func() {
			removed, assignees, inheritors := cat.RemoveRole("ghost")
			Expect(removed).To(BeFalse())
			Expect(assignees).To(BeEmpty())
			Expect(inheritors).To(BeEmpty())
		})
	})

	Describe("resolution", func() {
		It("grants through an inherited role", func() {
			v := cat.Resolve([]string{"editor"}, "read", nil)
			Expect(v.Granted).To(BeTrue())
			Expect(v.Role).To(Equal("editor"))
		})

		It("records the first granting role in sorted order", func() {
			cat.Assign("user1", "viewer")
			v := cat.Resolve([]string{"editor", "viewer"}, "read", nil)
			Expect(v.Role).To(Equal("editor"))
		})

		It("denies when nothing matches", func() {
			v := cat.Resolve([]string{"viewer"}, "write", nil)
			Expect(v.Granted).To(BeFalse())
			Expect(v.DeniedByGrant).To(BeFalse())
		})
	})

	Describe("grants", func() {
		res := types.ResourceID{TenantID: "t1", NamespaceID: "ns1", ResourceTypeID: "counter", ResourceID: "counter1"}

		It("requires a defined role", func() {
			Expect(cat.AddGrant("ghost", types.Permission{Action: "increment"})).To(MatchError(types.ErrRoleNotFound))
		})

		It("applies only when the pattern matches the queried resource", func() {
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "increment", TenantID: "t1", NamespaceID: types.Wildcard,
				ResourceTypeID: "counter", ResourceID: types.Wildcard, Effect: types.EffectAllow,
			})).To(Succeed())

			v := cat.Resolve([]string{"viewer"}, "increment", &res)
			Expect(v.Granted).To(BeTrue())

			other := res
			other.TenantID = "t2"
			v = cat.Resolve([]string{"viewer"}, "increment", &other)
			Expect(v.Granted).To(BeFalse())
		})

		It("ignores grants for resource-free queries", func() {
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "increment", TenantID: types.Wildcard, NamespaceID: types.Wildcard,
				ResourceTypeID: types.Wildcard, ResourceID: types.Wildcard, Effect: types.EffectAllow,
			})).To(Succeed())

			v := cat.Resolve([]string{"viewer"}, "increment", nil)
			Expect(v.Granted).To(BeFalse())
		})

		It("lets a matching deny grant override an unscoped permission", func() {
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "read", TenantID: types.Wildcard, NamespaceID: types.Wildcard,
				ResourceTypeID: types.Wildcard, ResourceID: types.Wildcard, Effect: types.EffectDeny,
			})).To(Succeed())

			v := cat.Resolve([]string{"viewer"}, "read", &res)
			Expect(v.Granted).To(BeFalse())
			Expect(v.DeniedByGrant).To(BeTrue())

			// the unscoped permission still applies elsewhere
			v = cat.Resolve([]string{"viewer"}, "read", nil)
			Expect(v.Granted).To(BeTrue())
		})

		It("lets a strictly more specific allow beat a deny", func() {
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "read", TenantID: "t1", NamespaceID: types.Wildcard,
				ResourceTypeID: types.Wildcard, ResourceID: types.Wildcard, Effect: types.EffectDeny,
			})).To(Succeed())
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "read", TenantID: "t1", NamespaceID: "ns1",
				ResourceTypeID: "counter", ResourceID: "counter1", Effect: types.EffectAllow,
			})).To(Succeed())

			v := cat.Resolve([]string{"viewer"}, "read", &res)
			Expect(v.Granted).To(BeTrue())
			Expect(v.DeniedByGrant).To(BeFalse())
		})

		It("lets an equally specific deny beat an allow", func() {
			Expect(cat.AddGrant("viewer", types.Permission{
				Action: "sign", TenantID: "t1", NamespaceID: "ns1",
				ResourceTypeID: "counter", ResourceID: "counter1", Effect: types.EffectAllow,
			})).To(Succeed())
			Expect(cat.AddGrant("editor", types.Permission{
				Action: "sign", TenantID: "t1", NamespaceID: "ns1",
				ResourceTypeID: "counter", ResourceID: "counter1", Effect: types.EffectDeny,
			})).To(Succeed())

			v := cat.Resolve([]string{"editor", "viewer"}, "sign", &res)
			Expect(v.DeniedByGrant).To(BeTrue())
		})
	})
})
