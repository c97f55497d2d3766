// Package registry owns the set of loaded arenas, the player to arena index
// and the region to arena index. All join and leave traffic is routed through
// it so the one-arena-per-player rule has a single enforcement point.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/bixgamer707/hordes/internal/arena"
	"github.com/bixgamer707/hordes/internal/cooldown"
	"github.com/bixgamer707/hordes/internal/engine"
	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/messages"
	"github.com/bixgamer707/hordes/internal/pkg/clock"
	"github.com/bixgamer707/hordes/internal/pkg/scheduler"
	"github.com/bixgamer707/hordes/internal/spawn"
	"github.com/bixgamer707/hordes/internal/stats"
)

// Config holds the shared dependencies handed to every arena the registry
// builds.
type Config struct {
	Engine      engine.Adapter
	Messenger   engine.Messenger
	Permissions engine.PermissionChecker
	Rewards     engine.RewardDispatcher
	Renderer    messages.Renderer
	Spawner     *spawn.Coordinator
	Cooldowns   *cooldown.Ledger
	Stats       stats.Recorder
	Scheduler   scheduler.Scheduler
	Clock       clock.Clock
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.Messenger == nil {
		vb.RequiredField("Messenger")
	}
	if c.Permissions == nil {
		vb.RequiredField("Permissions")
	}
	if c.Rewards == nil {
		vb.RequiredField("Rewards")
	}
	if c.Renderer == nil {
		vb.RequiredField("Renderer")
	}
	if c.Spawner == nil {
		vb.RequiredField("Spawner")
	}
	if c.Cooldowns == nil {
		vb.RequiredField("Cooldowns")
	}
	if c.Stats == nil {
		vb.RequiredField("Stats")
	}
	if c.Scheduler == nil {
		vb.RequiredField("Scheduler")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

// Registry routes players to arenas.
//
// Locking: r.mu guards only the registry's own maps and is never held while
// calling into an arena; arenas call back into the registry (release
// notifications) while holding their own lock, so nesting the other way
// would deadlock.
type Registry struct {
	cfg *Config

	mu      sync.Mutex
	arenas  map[string]*arena.Arena
	players map[string]string
	regions map[string]string
}

// New creates an empty registry.
func New(cfg *Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Registry{
		cfg:     cfg,
		arenas:  make(map[string]*arena.Arena),
		players: make(map[string]string),
		regions: make(map[string]string),
	}, nil
}

// Load replaces the arena set with arenas built from the definitions.
// Invalid definitions are logged and skipped so one bad arena cannot take
// down the rest. Returns how many arenas loaded.
func (r *Registry) Load(defs []*entities.ArenaDefinition) int {
	arenas := make(map[string]*arena.Arena, len(defs))
	regions := make(map[string]string)

	for _, def := range defs {
		if _, dup := arenas[def.ID]; dup {
			slog.Warn("skipping duplicate arena id", "arena_id", def.ID)
			continue
		}
		a, err := r.buildArena(def)
		if err != nil {
			slog.Warn("skipping invalid arena",
				"arena_id", def.ID,
				"error", err,
			)
			continue
		}
		arenas[def.ID] = a
		if def.Region != "" {
			regions[def.Region] = def.ID
		}
	}

	r.mu.Lock()
	r.arenas = arenas
	r.regions = regions
	r.mu.Unlock()

	slog.Info("arenas loaded", "count", len(arenas), "skipped", len(defs)-len(arenas))
	return len(arenas)
}

func (r *Registry) buildArena(def *entities.ArenaDefinition) (*arena.Arena, error) {
	arenaID := def.ID
	return arena.New(&arena.Config{
		Definition:  def,
		Engine:      r.cfg.Engine,
		Messenger:   r.cfg.Messenger,
		Permissions: r.cfg.Permissions,
		Rewards:     r.cfg.Rewards,
		Renderer:    r.cfg.Renderer,
		Spawner:     r.cfg.Spawner,
		Cooldowns:   r.cfg.Cooldowns,
		Stats:       r.cfg.Stats,
		Scheduler:   r.cfg.Scheduler,
		Clock:       r.cfg.Clock,
		OnPlayerReleased: func(playerID string) {
			r.release(arenaID, playerID)
		},
	})
}

// release clears the player index entry when an arena lets a player go.
func (r *Registry) release(arenaID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players[playerID] == arenaID {
		delete(r.players, playerID)
	}
}

// Join routes the player into the arena. The player index entry is reserved
// before the arena runs its own checks, which makes concurrent joins to
// different arenas mutually exclusive; the reservation is rolled back when
// the arena rejects. Returns whether the player was admitted.
func (r *Registry) Join(playerID, arenaID string) (bool, error) {
	r.mu.Lock()
	a, ok := r.arenas[arenaID]
	if !ok {
		r.mu.Unlock()
		return false, errors.NotFoundf("arena %q not found", arenaID)
	}
	if current, busy := r.players[playerID]; busy && current != arenaID {
		r.mu.Unlock()
		r.cfg.Messenger.Send(playerID, r.cfg.Renderer.Render("join.already-in"))
		return false, nil
	}
	r.players[playerID] = arenaID
	r.mu.Unlock()

	if !a.Join(playerID) {
		r.mu.Lock()
		// only roll back our reservation; an earlier successful join to
		// the same arena keeps its entry
		if r.players[playerID] == arenaID && !a.HasParticipant(playerID) {
			delete(r.players, playerID)
		}
		r.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Leave removes the player from whichever arena holds them. Unknown players
// are a no-op.
func (r *Registry) Leave(playerID string) {
	r.mu.Lock()
	arenaID, ok := r.players[playerID]
	a := r.arenas[arenaID]
	r.mu.Unlock()

	if ok && a != nil {
		a.Leave(playerID)
	}
}

// ArenaFor returns the id of the arena currently holding the player.
func (r *Registry) ArenaFor(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	arenaID, ok := r.players[playerID]
	return arenaID, ok
}

// Get returns the arena with the given id.
func (r *Registry) Get(arenaID string) (*arena.Arena, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.arenas[arenaID]
	if !ok {
		return nil, errors.NotFoundf("arena %q not found", arenaID)
	}
	return a, nil
}

// List returns a snapshot of every loaded arena, sorted by id.
func (r *Registry) List() []arena.Snapshot {
	r.mu.Lock()
	arenas := make([]*arena.Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		arenas = append(arenas, a)
	}
	r.mu.Unlock()

	snaps := make([]arena.Snapshot, 0, len(arenas))
	for _, a := range arenas {
		snaps = append(snaps, a.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	return snaps
}

// HandleRegions reacts to a player's current geofence set, reported by the
// engine on movement. Entering a region mapped to an arena auto-joins;
// leaving the owning arena's region auto-leaves. Unknown regions are
// ignored.
func (r *Registry) HandleRegions(playerID string, regionIDs []string) {
	r.mu.Lock()
	if arenaID, ok := r.players[playerID]; ok {
		a := r.arenas[arenaID]
		r.mu.Unlock()
		if a == nil {
			return
		}
		region := a.Definition().Region
		if region == "" {
			return
		}
		for _, id := range regionIDs {
			if id == region {
				return
			}
		}
		a.Leave(playerID)
		return
	}

	var target string
	for _, id := range regionIDs {
		if arenaID, ok := r.regions[id]; ok {
			target = arenaID
			break
		}
	}
	r.mu.Unlock()

	if target != "" {
		if _, err := r.Join(playerID, target); err != nil {
			slog.Warn("region auto-join failed",
				"player_id", playerID,
				"arena_id", target,
				"error", err,
			)
		}
	}
}

// OnPlayerDeath routes a death event to the arena holding the player.
// Players outside any arena are a no-op.
func (r *Registry) OnPlayerDeath(playerID string) {
	r.mu.Lock()
	arenaID, ok := r.players[playerID]
	a := r.arenas[arenaID]
	r.mu.Unlock()

	if ok && a != nil {
		a.OnPlayerDeath(playerID)
	}
}

// TriggerNextWave advances a manually progressed arena on behalf of the
// player. Returns false when the player is outside any arena or no wave
// advance is pending.
func (r *Registry) TriggerNextWave(playerID string) bool {
	r.mu.Lock()
	arenaID, ok := r.players[playerID]
	a := r.arenas[arenaID]
	r.mu.Unlock()

	if !ok || a == nil {
		return false
	}
	return a.TriggerNextWave()
}

// OnMobDeath routes a mob death to the arena that spawned it, resolved
// through the spawn coordinator's provenance table. Stray ids are dropped.
func (r *Registry) OnMobDeath(correlationID, killerID string) {
	prov, ok := r.cfg.Spawner.Lookup(correlationID)
	if !ok {
		return
	}

	r.mu.Lock()
	a := r.arenas[prov.ArenaID]
	r.mu.Unlock()

	if a != nil {
		a.OnMobDeath(correlationID, killerID)
	}
}

// OnSpawnFailed routes an asynchronous spawn failure to the owning arena.
func (r *Registry) OnSpawnFailed(correlationID string) {
	prov, ok := r.cfg.Spawner.Lookup(correlationID)
	if !ok {
		return
	}

	r.mu.Lock()
	a := r.arenas[prov.ArenaID]
	r.mu.Unlock()

	if a != nil {
		a.OnSpawnFailed(correlationID)
	}
}

// Reload force-ends every arena as a defeat, evicts all players and swaps in
// arenas built from the new definitions. Returns how many arenas loaded.
func (r *Registry) Reload(defs []*entities.ArenaDefinition) int {
	r.sweep()
	return r.Load(defs)
}

// Shutdown force-ends every arena and evicts all players. The registry is
// left empty.
func (r *Registry) Shutdown() {
	r.sweep()

	r.mu.Lock()
	r.arenas = make(map[string]*arena.Arena)
	r.regions = make(map[string]string)
	r.mu.Unlock()
}

func (r *Registry) sweep() {
	r.mu.Lock()
	arenas := make([]*arena.Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		arenas = append(arenas, a)
	}
	r.mu.Unlock()

	for _, a := range arenas {
		if err := a.ForceStop(); err != nil {
			slog.Warn("failed to stop arena",
				"arena_id", a.ID(),
				"error", err,
			)
		}
	}
}

// DebugCounts is the admin debug view of the registry.
type DebugCounts struct {
	Arenas      int `json:"arenas"`
	Active      int `json:"active"`
	Players     int `json:"players"`
	TrackedMobs int `json:"tracked_mobs"`
}

// Counts reports aggregate sizes for the admin debug surface.
func (r *Registry) Counts() DebugCounts {
	snaps := r.List()

	r.mu.Lock()
	players := len(r.players)
	r.mu.Unlock()

	counts := DebugCounts{
		Arenas:      len(snaps),
		Players:     players,
		TrackedMobs: r.cfg.Spawner.TrackedCount(),
	}
	for _, s := range snaps {
		if s.State == entities.ArenaStateActive {
			counts.Active++
		}
	}
	return counts
}
