package condition

import "github.com/gatewright/rbac/types"

var _ types.ConditionChecker = (*TimeOfDay)(nil)

// TimeOfDay grants a permission only during a daily hour window.
// The window is [start, end) in whole hours. When start > end the
// window wraps past midnight: NewTimeOfDay(20, 4) covers hours 20
// through 23 and 0 through 3. Equal bounds make an empty window that
// denies every hour.
type TimeOfDay struct {
	start, end int
}

// NewTimeOfDay creates a time-of-day checker. Hours are taken from
// the context's CurrentTime, or the wall clock when absent.
func NewTimeOfDay(start, end int) *TimeOfDay {
	return &TimeOfDay{start: start, end: end}
}

// Kind implements ConditionChecker.
func (c *TimeOfDay) Kind() string { return "time-of-day" }

// Check implements ConditionChecker.
func (c *TimeOfDay) Check(_ types.PrincipalID, _ string, _ *types.ResourceID, ctx *types.Context) bool {
	h := ctx.Time().Hour()
	switch {
	case c.start < c.end:
		return h >= c.start && h < c.end
	case c.start > c.end:
		return h >= c.start || h < c.end
	default:
		return false
	}
}
