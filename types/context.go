package types

import "time"

// Context carries the runtime facts condition checkers evaluate
// against. Checkers recognize CurrentTime and IP; anything else goes
// through Extra. A nil *Context is valid everywhere one is accepted.
type Context struct {
	// CurrentTime is the evaluation instant. Zero means "now".
	CurrentTime time.Time

	// IP is the caller's address in textual form.
	IP string

	// Extra holds caller-defined fields for custom checkers.
	Extra map[string]interface{}
}

// Time returns the evaluation instant, falling back to the wall clock
// when the context is nil or carries no time.
func (c *Context) Time() time.Time {
	if c == nil || c.CurrentTime.IsZero() {
		return time.Now()
	}
	return c.CurrentTime
}

// ClientIP returns the caller address, or "" when none is known.
func (c *Context) ClientIP() string {
	if c == nil {
		return ""
	}
	return c.IP
}
