// Package rbac is an embeddable, in-memory access control policy
// engine. It models principals, nested groups, inheritable roles,
// resource-scoped grants with wildcard matching, explicit per-principal
// denials, and pluggable runtime conditions, and publishes every
// mutation and evaluation on an audit bus.
package rbac

import (
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"

	"github.com/gatewright/rbac/internal/audit"
	"github.com/gatewright/rbac/internal/condition"
	"github.com/gatewright/rbac/internal/denial"
	"github.com/gatewright/rbac/internal/engine"
	"github.com/gatewright/rbac/internal/grouping"
	"github.com/gatewright/rbac/internal/role"
	"github.com/gatewright/rbac/types"
)

// New creates a policy evaluation Engine.
func New(opts ...EngineOption) (types.Engine, error) {
	cfg := &EngineConfig{
		level:      types.AuditBasic,
		auditQueue: 64,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log.GetSink() == nil {
		cfg.log = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	}

	bus := audit.New(cfg.auditQueue, cfg.log.WithName("audit"))
	eng := engine.New(
		grouping.New(cfg.log.WithName("grouping")),
		role.New(cfg.log.WithName("role")),
		denial.New(),
		condition.NewRegistry(),
		bus,
		cfg.level,
		cfg.log.WithName("engine"),
	)

	for _, r := range cfg.presets {
		if err := eng.AddRole(r); err != nil {
			bus.Close()
			return nil, fmt.Errorf("add preset role %q: %w", r.Name, err)
		}
	}

	return eng, nil
}

// WithLogger sets the logger for all engine components.
func WithLogger(l logr.Logger) EngineOption {
	return func(cfg *EngineConfig) {
		cfg.log = l
	}
}

// WithAuditLevel controls what permission checks reveal on the audit
// bus. The default is AuditBasic; AuditDetailed additionally includes
// the raw caller context.
func WithAuditLevel(level types.AuditLevel) EngineOption {
	return func(cfg *EngineConfig) {
		cfg.level = level
	}
}

// WithPresetRoles defines roles at construction time, before any
// subscriber can observe the engine.
func WithPresetRoles(roles ...types.Role) EngineOption {
	return func(cfg *EngineConfig) {
		cfg.presets = append(cfg.presets, roles...)
	}
}

// WithDefaultRoles loads the stock viewer/editor/manager/admin table.
func WithDefaultRoles() EngineOption {
	return func(cfg *EngineConfig) {
		cfg.presets = append(cfg.presets, DefaultRoles()...)
	}
}

// WithAuditQueueSize sets the per-subscriber audit queue depth. Events
// beyond it are dropped for the lagging subscriber.
func WithAuditQueueSize(n int) EngineOption {
	return func(cfg *EngineConfig) {
		cfg.auditQueue = n
	}
}

// EngineConfig works together with EngineOption to control the
// initialization of an engine.
type EngineConfig struct {
	log        logr.Logger
	level      types.AuditLevel
	presets    []types.Role
	auditQueue int
}

// EngineOption controls how to init an engine.
type EngineOption func(*EngineConfig)
