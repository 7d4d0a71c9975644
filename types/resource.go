package types

// Wildcard matches any value in a resource pattern field.
const Wildcard = "*"

// Effect tells whether a matching grant allows or denies its action.
type Effect string

// grant effects
const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// ResourceID is the concrete tuple identifying the object an action
// targets. It is built by the calling application from its routing
// context.
type ResourceID struct {
	TenantID       string
	NamespaceID    string
	ResourceTypeID string
	ResourceID     string
}

// Permission is an action identifier, optionally scoped to a resource
// pattern. Each scoping field is a concrete value or Wildcard.
// A zero Effect is treated as EffectAllow.
type Permission struct {
	Action         string
	TenantID       string
	NamespaceID    string
	ResourceTypeID string
	ResourceID     string
	Effect         Effect
}

// Matches reports whether the permission's resource pattern covers res.
// Every field must match: a pattern field matches iff it is Wildcard or
// equals the query field exactly.
func (p Permission) Matches(res ResourceID) bool {
	return matchField(p.TenantID, res.TenantID) &&
		matchField(p.NamespaceID, res.NamespaceID) &&
		matchField(p.ResourceTypeID, res.ResourceTypeID) &&
		matchField(p.ResourceID, res.ResourceID)
}

// Specificity counts the concrete (non-wildcard) fields of the pattern.
// A fully concrete pattern scores 4, an all-wildcard pattern 0.
func (p Permission) Specificity() int {
	n := 0
	for _, f := range []string{p.TenantID, p.NamespaceID, p.ResourceTypeID, p.ResourceID} {
		if f != Wildcard {
			n++
		}
	}
	return n
}

// Denies reports whether the grant carries an explicit deny effect.
func (p Permission) Denies() bool {
	return p.Effect == EffectDeny
}

func matchField(pattern, value string) bool {
	return pattern == Wildcard || pattern == value
}
