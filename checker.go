package rbac

import (
	"github.com/gatewright/rbac/internal/condition"
	"github.com/gatewright/rbac/types"
)

// NewTimeOfDayChecker grants only during the daily hour window
// [start, end). start > end wraps the window past midnight.
func NewTimeOfDayChecker(start, end int) types.ConditionChecker {
	return condition.NewTimeOfDay(start, end)
}

// NewIPAllowListChecker grants only to the given caller addresses.
// A check without an IP in its context always denies.
func NewIPAllowListChecker(ips ...string) types.ConditionChecker {
	return condition.NewIPAllowList(ips...)
}

// NewIPFilterChecker builds an advanced IP checker from explicit and
// subnet allow/block lists. Block rules win over allow rules; with no
// allow rules configured, anything not blocked passes. Malformed
// subnets are rejected here rather than at evaluation time.
func NewIPFilterChecker(allowIPs, allowSubnets, blockIPs, blockSubnets []string) (types.ConditionChecker, error) {
	return condition.NewIPFilter(allowIPs, allowSubnets, blockIPs, blockSubnets)
}
