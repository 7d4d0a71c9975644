package engine_test

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gatewright/rbac/internal/audit"
	"github.com/gatewright/rbac/internal/condition"
	"github.com/gatewright/rbac/internal/denial"
	. "github.com/gatewright/rbac/internal/engine"
	"github.com/gatewright/rbac/internal/grouping"
	"github.com/gatewright/rbac/internal/role"
	"github.com/gatewright/rbac/types"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "engine test suit")
}

func newEngine(level types.AuditLevel) types.Engine {
	l := logr.Discard()
	return New(
		grouping.New(l),
		role.New(l),
		denial.New(),
		condition.NewRegistry(),
		audit.New(16, l),
		level,
		l,
	)
}

var _ = Describe("evaluator", func() {
	var (
		eng    types.Engine
		checks chan types.CheckPayload
	)

	BeforeEach(func() {
		eng = newEngine(types.AuditBasic)
		checks = make(chan types.CheckPayload, 16)
		eng.Subscribe(types.EventPermissionCheck, func(ev types.Event) {
			checks <- ev.Payload.(types.CheckPayload)
		})

		Expect(eng.AddRole(types.Role{Name: "viewer", Permissions: []string{"read"}})).To(Succeed())
		Expect(eng.AddPrincipal(types.Principal{ID: "user1", Kind: types.KindUser})).To(Succeed())
		Expect(eng.AssignRole("user1", "viewer")).To(Succeed())
	})

	AfterEach(func() {
		Expect(eng.Close()).To(Succeed())
	})

	lastCheck := func() types.CheckPayload {
		var p types.CheckPayload
		EventuallyWithOffset(1, checks).Should(Receive(&p))
		return p
	}

	It("reports the granting role", func() {
		Expect(eng.HasPermission("user1", "read", nil)).To(BeTrue())

		p := lastCheck()
		Expect(p.Granted).To(BeTrue())
		Expect(p.Reason).To(Equal("granted by role: viewer"))
	})

	It("default-denies an unknown principal instead of failing", func() {
		Expect(eng.HasPermission("ghost", "read", nil)).To(BeFalse())

		p := lastCheck()
		Expect(p.Granted).To(BeFalse())
		Expect(p.Reason).To(Equal("no matching role found"))
	})

	It("short-circuits on an explicit denial", func() {
		Expect(eng.DenyPermission("user1", "read")).To(Succeed())
		Expect(eng.HasPermission("user1", "read", nil)).To(BeFalse())
		Expect(lastCheck().Reason).To(Equal("explicitly denied"))

		Expect(eng.RemoveDeniedPermission("user1", "read")).To(Succeed())
		Expect(eng.HasPermission("user1", "read", nil)).To(BeTrue())
	})

	It("names the failing condition in the reason", func() {
		Expect(eng.AddConditionChecker("user1", "read", condition.NewTimeOfDay(9, 17))).To(Succeed())

		night := &types.Context{CurrentTime: time.Date(2023, 6, 15, 22, 0, 0, 0, time.UTC)}
		Expect(eng.HasPermission("user1", "read", night)).To(BeFalse())
		Expect(lastCheck().Reason).To(Equal("denied by condition: time-of-day"))
	})

	It("skips conditions when no role grants the action", func() {
		Expect(eng.AddConditionChecker("user1", "write", condition.NewTimeOfDay(0, 24))).To(Succeed())
		Expect(eng.HasPermission("user1", "write", nil)).To(BeFalse())
		Expect(lastCheck().Reason).To(Equal("no matching role found"))
	})

	It("omits the caller context at the basic audit level", func() {
		ctx := &types.Context{IP: "192.168.1.100"}
		eng.HasPermission("user1", "read", ctx)
		Expect(lastCheck().Context).To(BeNil())
	})

	It("reports grant denials distinctly", func() {
		Expect(eng.AssignResourcePermission("viewer", types.Permission{
			Action: "read", TenantID: types.Wildcard, NamespaceID: types.Wildcard,
			ResourceTypeID: types.Wildcard, ResourceID: types.Wildcard, Effect: types.EffectDeny,
		})).To(Succeed())

		res := types.ResourceID{TenantID: "t1", NamespaceID: "ns1", ResourceTypeID: "doc", ResourceID: "doc1"}
		Expect(eng.HasPermissionOn("user1", "read", res, nil)).To(BeFalse())
		Expect(lastCheck().Reason).To(Equal("denied by grant"))
	})

	It("rejects mutations on unknown principals", func() {
		Expect(eng.AssignRole("ghost", "viewer")).To(MatchError(types.ErrPrincipalNotFound))
		Expect(eng.DenyPermission("ghost", "read")).To(MatchError(types.ErrPrincipalNotFound))
		Expect(eng.AddConditionChecker("ghost", "read", condition.NewTimeOfDay(9, 17))).To(MatchError(types.ErrPrincipalNotFound))
		Expect(eng.RemovePrincipal("ghost")).To(MatchError(types.ErrPrincipalNotFound))
	})

	It("cascades principal removal", func() {
		Expect(eng.DenyPermission("user1", "write")).To(Succeed())
		Expect(eng.RemovePrincipal("user1")).To(Succeed())

		_, err := eng.PrincipalRoles("user1")
		Expect(err).To(MatchError(types.ErrPrincipalNotFound))

		// a re-added principal starts clean
		Expect(eng.AddPrincipal(types.Principal{ID: "user1", Kind: types.KindUser})).To(Succeed())
		roles, err := eng.PrincipalRoles("user1")
		Expect(err).To(Succeed())
		Expect(roles).To(BeEmpty())
		Expect(eng.HasPermission("user1", "read", nil)).To(BeFalse())
	})
})

var _ = Describe("audit levels", func() {
	It("includes the caller context only when detailed", func() {
		eng := newEngine(types.AuditDetailed)
		defer eng.Close()

		checks := make(chan types.CheckPayload, 1)
		eng.Subscribe(types.EventPermissionCheck, func(ev types.Event) {
			checks <- ev.Payload.(types.CheckPayload)
		})

		ctx := &types.Context{IP: "192.168.1.100"}
		eng.HasPermission("user1", "read", ctx)

		var p types.CheckPayload
		Eventually(checks).Should(Receive(&p))
		Expect(p.Context).To(Equal(ctx))
	})

	It("publishes no check events when disabled", func() {
		eng := newEngine(types.AuditNone)
		defer eng.Close()

		checks := make(chan types.CheckPayload, 1)
		eng.Subscribe(types.EventPermissionCheck, func(ev types.Event) {
			checks <- ev.Payload.(types.CheckPayload)
		})

		eng.HasPermission("user1", "read", nil)
		Consistently(checks).ShouldNot(Receive())
	})
})

var _ = Describe("mutation events", func() {
	It("publishes one event per affected edge on role removal", func() {
		eng := newEngine(types.AuditBasic)
		defer eng.Close()

		revoked := make(chan types.RolePayload, 4)
		removed := make(chan types.RoleRemovalPayload, 4)
		eng.Subscribe(types.EventRoleRevocation, func(ev types.Event) {
			revoked <- ev.Payload.(types.RolePayload)
		})
		eng.Subscribe(types.EventRoleRemoval, func(ev types.Event) {
			removed <- ev.Payload.(types.RoleRemovalPayload)
		})

		Expect(eng.AddRole(types.Role{Name: "custom", Permissions: []string{"x"}})).To(Succeed())
		Expect(eng.AddRole(types.Role{Name: "super", Permissions: []string{"y"}, Inherits: []string{"custom"}})).To(Succeed())
		Expect(eng.AddPrincipal(types.Principal{ID: "user1", Kind: types.KindUser})).To(Succeed())
		Expect(eng.AssignRole("user1", "custom")).To(Succeed())

		ok, err := eng.RemoveRole("custom")
		Expect(err).To(Succeed())
		Expect(ok).To(BeTrue())

		Eventually(revoked).Should(Receive(Equal(types.RolePayload{Principal: "user1", Role: "custom"})))
		Eventually(removed).Should(Receive(Equal(types.RoleRemovalPayload{Role: "custom", From: "super"})))
		Eventually(removed).Should(Receive(Equal(types.RoleRemovalPayload{Role: "custom"})))

		ok, err = eng.RemoveRole("custom")
		Expect(err).To(Succeed())
		Expect(ok).To(BeFalse())
	})
})
