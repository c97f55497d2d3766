package spawn

import (
	"context"
	"sync"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/pkg/idgen"
)

// Provenance records which arena and wave a live entity belongs to.
type Provenance struct {
	ArenaID string
	Wave    int
	Backend entities.SpawnBackend
}

// Config holds the dependencies for the coordinator.
type Config struct {
	Backends    map[entities.SpawnBackend]Backend
	IDGenerator idgen.Generator
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if len(c.Backends) == 0 {
		vb.RequiredField("Backends")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// Coordinator routes mob entries to the backend declared by their type tag
// and owns the correlation-id side table. Mutated from the event path and
// from scheduled spawn cycles, so it synchronizes internally.
type Coordinator struct {
	backends map[entities.SpawnBackend]Backend
	idGen    idgen.Generator

	mu      sync.Mutex
	tracked map[string]Provenance
}

// NewCoordinator creates a coordinator with the provided backends.
func NewCoordinator(cfg *Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Coordinator{
		backends: cfg.Backends,
		idGen:    cfg.IDGenerator,
		tracked:  make(map[string]Provenance),
	}, nil
}

// Spawn creates one mob from the entry at the location and tags it with the
// owning (arena, wave). Returns the correlation id of the new entity.
func (c *Coordinator) Spawn(ctx context.Context, arenaID string, wave int, entry entities.MobEntry, loc entities.Location) (string, error) {
	backend, ok := c.backends[entry.Backend]
	if !ok {
		return "", errors.Unavailablef("no spawn backend registered for %q", entry.Backend)
	}

	correlationID := c.idGen.Generate()
	req := &Request{
		CorrelationID:    correlationID,
		MobType:          entry.MobType,
		Location:         loc,
		HealthMultiplier: entry.HealthMultiplier,
		DamageMultiplier: entry.DamageMultiplier,
		DisplayName:      entry.DisplayName,
	}

	if err := backend.Spawn(ctx, req); err != nil {
		return "", errors.Wrapf(err, "spawn %s via %s", entry.MobType, entry.Backend)
	}

	c.mu.Lock()
	c.tracked[correlationID] = Provenance{ArenaID: arenaID, Wave: wave, Backend: entry.Backend}
	c.mu.Unlock()

	return correlationID, nil
}

// Lookup returns the provenance of a tracked entity. The second return is
// false for unknown ids, which callers treat as stray events and drop.
func (c *Coordinator) Lookup(correlationID string) (Provenance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.tracked[correlationID]
	return p, ok
}

// Forget drops an entity from the side table without touching the engine.
// Used when the entity already died.
func (c *Coordinator) Forget(correlationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tracked, correlationID)
}

// Destroy removes the live entity from the world and forgets it. Idempotent:
// unknown ids are a no-op so repeated cleanups stay safe.
func (c *Coordinator) Destroy(ctx context.Context, correlationID string) error {
	c.mu.Lock()
	p, ok := c.tracked[correlationID]
	if ok {
		delete(c.tracked, correlationID)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}

	backend, found := c.backends[p.Backend]
	if !found {
		return errors.Unavailablef("no spawn backend registered for %q", p.Backend)
	}
	return backend.Remove(ctx, correlationID)
}

// TrackedCount reports how many live entities the side table holds, for the
// admin debug surface.
func (c *Coordinator) TrackedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracked)
}
