package types

// ConditionChecker is a runtime predicate gating an otherwise granted
// permission. All checkers attached to a (principal, action) pair must
// pass for the permission to stand.
//
// Check must fail closed: on missing or malformed context it returns
// false rather than an error, so a broken condition can never widen
// access.
type ConditionChecker interface {
	// Kind names the checker variant. It is quoted verbatim in audit
	// reasons, so it should be a short stable tag like "time-of-day".
	Kind() string

	// Check decides whether the condition holds. res is nil for
	// resource-free permission checks.
	Check(principal PrincipalID, action string, res *ResourceID, ctx *Context) bool
}
