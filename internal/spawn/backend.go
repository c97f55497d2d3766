// Package spawn turns wave definitions into live entities through pluggable
// backends and keeps the provenance side-table that correlates death events
// back to the wave that spawned the mob.
package spawn

import (
	"context"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
)

//go:generate mockgen -destination=mock/mock.go -package=spawnmock github.com/bixgamer707/hordes/internal/spawn Backend

// Request describes one mob to spawn. CorrelationID is assigned by the
// coordinator before the request reaches a backend; the engine tags the
// spawned entity with it so later death events can be attributed.
type Request struct {
	CorrelationID    string
	MobType          string
	Location         entities.Location
	HealthMultiplier float64
	DamageMultiplier float64
	DisplayName      string
}

// Backend spawns and removes entities for one backend type tag. Spawn
// failures are expected and non-fatal; callers log and skip them.
type Backend interface {
	// Spawn creates an entity tagged with the request's correlation id.
	Spawn(ctx context.Context, req *Request) error

	// Remove forcibly destroys the entity with the correlation id.
	Remove(ctx context.Context, correlationID string) error
}

// MythicBackend fronts the optional third-party mob framework. When the
// framework is not present on the engine side it degrades to always
// failing, which wave spawning tolerates as a skipped spawn.
type MythicBackend struct {
	delegate  Backend
	available func() bool
}

// NewMythicBackend wraps the delegate. availability is polled per call so
// the framework can appear or vanish with engine reconnects; nil means
// never available.
func NewMythicBackend(delegate Backend, available func() bool) *MythicBackend {
	if available == nil {
		available = func() bool { return false }
	}
	return &MythicBackend{delegate: delegate, available: available}
}

// Spawn delegates to the framework when available.
func (b *MythicBackend) Spawn(ctx context.Context, req *Request) error {
	if b.delegate == nil || !b.available() {
		return errors.Unavailable("mob framework is not available")
	}
	return b.delegate.Spawn(ctx, req)
}

// Remove delegates to the framework when available.
func (b *MythicBackend) Remove(ctx context.Context, correlationID string) error {
	if b.delegate == nil || !b.available() {
		return errors.Unavailable("mob framework is not available")
	}
	return b.delegate.Remove(ctx, correlationID)
}
