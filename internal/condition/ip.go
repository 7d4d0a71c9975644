package condition

import (
	"fmt"
	"net/netip"

	"github.com/gatewright/rbac/types"
)

var (
	_ types.ConditionChecker = (*IPAllowList)(nil)
	_ types.ConditionChecker = (*IPFilter)(nil)
)

// IPAllowList grants only to an exact set of caller addresses.
// A context without an IP always denies.
type IPAllowList struct {
	allowed map[string]struct{}
}

// NewIPAllowList creates an exact-IP checker.
func NewIPAllowList(ips ...string) *IPAllowList {
	allowed := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		allowed[ip] = struct{}{}
	}
	return &IPAllowList{allowed: allowed}
}

// Kind implements ConditionChecker.
func (c *IPAllowList) Kind() string { return "ip-allow-list" }

// Check implements ConditionChecker.
func (c *IPAllowList) Check(_ types.PrincipalID, _ string, _ *types.ResourceID, ctx *types.Context) bool {
	ip := ctx.ClientIP()
	if ip == "" {
		return false
	}
	_, ok := c.allowed[ip]
	return ok
}

// IPFilter combines explicit and subnet allow/block lists. Evaluation
// order is strict: blocked IP, then blocked subnet, then default-allow
// when no allow list is configured, then allowed IP, then allowed
// subnet, otherwise deny.
type IPFilter struct {
	allowIPs  map[string]struct{}
	allowNets []netip.Prefix
	blockIPs  map[string]struct{}
	blockNets []netip.Prefix
}

// NewIPFilter creates an advanced IP checker. Malformed subnet strings
// are rejected here, at configuration time; a constructed filter never
// errors at evaluation time, it fails closed instead.
func NewIPFilter(allowIPs, allowSubnets, blockIPs, blockSubnets []string) (*IPFilter, error) {
	allowNets, err := parsePrefixes(allowSubnets)
	if err != nil {
		return nil, err
	}
	blockNets, err := parsePrefixes(blockSubnets)
	if err != nil {
		return nil, err
	}
	return &IPFilter{
		allowIPs:  toSet(allowIPs),
		allowNets: allowNets,
		blockIPs:  toSet(blockIPs),
		blockNets: blockNets,
	}, nil
}

// Kind implements ConditionChecker.
func (c *IPFilter) Kind() string { return "ip-filter" }

// Check implements ConditionChecker.
func (c *IPFilter) Check(_ types.PrincipalID, _ string, _ *types.ResourceID, ctx *types.Context) bool {
	raw := ctx.ClientIP()
	if raw == "" {
		return false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		// unparseable caller address fails closed
		return false
	}

	if _, ok := c.blockIPs[raw]; ok {
		return false
	}
	for _, n := range c.blockNets {
		if n.Contains(addr) {
			return false
		}
	}

	if len(c.allowIPs) == 0 && len(c.allowNets) == 0 {
		return true
	}
	if _, ok := c.allowIPs[raw]; ok {
		return true
	}
	for _, n := range c.allowNets {
		if n.Contains(addr) {
			return true
		}
	}
	return false
}

func parsePrefixes(subnets []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(subnets))
	for _, s := range subnets {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", types.ErrInvalidCIDR, s)
		}
		out = append(out, p)
	}
	return out, nil
}

func toSet(ips []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	return set
}
