package arena

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/pkg/clock"
	"github.com/bixgamer707/hordes/internal/pkg/scheduler"
	"github.com/bixgamer707/hordes/internal/spawn"
)

// WaveState is the lifecycle state of one wave instance.
type WaveState string

// Wave lifecycle states
const (
	WavePending   WaveState = "pending"
	WaveSpawning  WaveState = "spawning"
	WaveActive    WaveState = "active"
	WaveCompleted WaveState = "completed"
	WaveCancelled WaveState = "cancelled"
)

// Wave owns the spawn schedule and live-mob census for one wave instance.
// It is created by its arena when the wave number advances and dropped when
// the wave completes or the arena resets.
//
// Locking: Wave has its own mutex and must never be called while holding the
// owning arena's lock; the completion callback runs with no wave lock held
// and is free to re-enter the arena.
type Wave struct {
	arenaID    string
	def        entities.WaveDefinition
	fallback   entities.Location
	spawner    *spawn.Coordinator
	sched      scheduler.Scheduler
	clock      clock.Clock
	onComplete func(*Wave)

	mu          sync.Mutex
	state       WaveState
	queue       []entities.MobEntry
	live        map[string]struct{}
	alive       int
	total       int
	failures    int
	spawnCursor int
	cycleTask   scheduler.Task
	startedAt   time.Time
}

func newWave(arenaID string, def entities.WaveDefinition, fallback entities.Location,
	spawner *spawn.Coordinator, sched scheduler.Scheduler, clk clock.Clock, onComplete func(*Wave)) *Wave {
	// Flatten the ordered mob list into single spawns so cycles can stop
	// mid-entry when mobs-per-cycle is smaller than an entry's count.
	var queue []entities.MobEntry
	for _, entry := range def.Mobs {
		single := entry
		single.Count = 1
		for i := 0; i < entry.Count; i++ {
			queue = append(queue, single)
		}
	}

	return &Wave{
		arenaID:    arenaID,
		def:        def,
		fallback:   fallback,
		spawner:    spawner,
		sched:      sched,
		clock:      clk,
		onComplete: onComplete,
		state:      WavePending,
		queue:      queue,
		live:       make(map[string]struct{}),
		total:      len(queue),
	}
}

// Start begins the spawn schedule. Valid only from pending; anything else is
// a no-op.
func (w *Wave) Start() {
	w.mu.Lock()
	if w.state != WavePending {
		w.mu.Unlock()
		return
	}
	w.state = WaveSpawning
	w.startedAt = w.clock.Now()
	interval := w.def.SpawnInterval
	w.mu.Unlock()

	if interval <= 0 {
		// degenerate cadence: release everything now so the wave still
		// reaches its active state deterministically
		for w.runCycle() {
		}
		return
	}

	if w.runCycle() {
		w.mu.Lock()
		if w.state == WaveSpawning {
			w.cycleTask = w.sched.Every(interval, func() { w.runCycle() })
		}
		w.mu.Unlock()
	}
}

// runCycle spawns up to mobs-per-cycle entries. Returns true while more
// spawning remains.
func (w *Wave) runCycle() bool {
	w.mu.Lock()
	if w.state != WaveSpawning {
		w.mu.Unlock()
		return false
	}

	perCycle := w.def.MobsPerCycle
	if perCycle <= 0 {
		perCycle = 1
	}

	for i := 0; i < perCycle && len(w.queue) > 0; i++ {
		entry := w.queue[0]
		w.queue = w.queue[1:]
		w.spawnOne(entry)
	}

	if len(w.queue) > 0 {
		w.mu.Unlock()
		return true
	}

	// spawning finished; combat continues until the census empties
	if w.cycleTask != nil {
		w.cycleTask.Cancel()
		w.cycleTask = nil
	}
	w.state = WaveActive
	fire := w.alive == 0
	if fire {
		w.state = WaveCompleted
	}
	w.mu.Unlock()

	if fire {
		// every spawn failed (or the wave was empty); completing here
		// keeps the arena from waiting on mobs that never existed
		w.onComplete(w)
	}
	return false
}

// spawnOne spawns a single mob. Caller holds w.mu. A backend failure is
// logged and skipped: the nominal total stays fixed, the failure only
// shrinks the live census.
func (w *Wave) spawnOne(entry entities.MobEntry) {
	loc := w.fallback
	if len(w.def.SpawnPoints) > 0 {
		loc = w.def.SpawnPoints[w.spawnCursor%len(w.def.SpawnPoints)]
		w.spawnCursor++
	}

	correlationID, err := w.spawner.Spawn(context.Background(), w.arenaID, w.def.Number, entry, loc)
	if err != nil {
		w.failures++
		slog.Warn("mob spawn failed",
			"arena_id", w.arenaID,
			"wave", w.def.Number,
			"mob_type", entry.MobType,
			"error", err,
		)
		return
	}

	w.live[correlationID] = struct{}{}
	w.alive++
}

// OnMobDeath attributes a death event to this wave. Returns false for ids
// the wave does not track, which callers drop as stray events. Reaching an
// empty census while active completes the wave and fires the completion
// callback exactly once.
func (w *Wave) OnMobDeath(correlationID string) bool {
	w.mu.Lock()
	if _, ok := w.live[correlationID]; !ok {
		w.mu.Unlock()
		return false
	}
	delete(w.live, correlationID)
	w.alive--
	w.spawner.Forget(correlationID)

	fire := w.alive == 0 && w.state == WaveActive
	if fire {
		w.state = WaveCompleted
	}
	w.mu.Unlock()

	if fire {
		w.onComplete(w)
	}
	return true
}

// OnSpawnFailed handles an asynchronous backend failure reported after the
// spawn was optimistically tracked. Unknown ids are ignored.
func (w *Wave) OnSpawnFailed(correlationID string) {
	w.mu.Lock()
	if _, ok := w.live[correlationID]; !ok {
		w.mu.Unlock()
		return
	}
	delete(w.live, correlationID)
	w.alive--
	w.failures++
	w.spawner.Forget(correlationID)

	fire := w.alive == 0 && w.state == WaveActive
	if fire {
		w.state = WaveCompleted
	}
	w.mu.Unlock()

	if fire {
		w.onComplete(w)
	}
}

// Cleanup is the forced termination path. It cancels the spawn cycle,
// destroys every still-tracked entity and zeroes the census. Idempotent and
// safe from any state.
func (w *Wave) Cleanup() {
	w.mu.Lock()
	if w.cycleTask != nil {
		w.cycleTask.Cancel()
		w.cycleTask = nil
	}
	if w.state != WaveCompleted {
		w.state = WaveCancelled
	}
	leftovers := make([]string, 0, len(w.live))
	for id := range w.live {
		leftovers = append(leftovers, id)
	}
	w.live = make(map[string]struct{})
	w.alive = 0
	w.mu.Unlock()

	for _, id := range leftovers {
		if err := w.spawner.Destroy(context.Background(), id); err != nil {
			slog.Warn("failed to remove wave entity",
				"arena_id", w.arenaID,
				"wave", w.def.Number,
				"correlation_id", id,
				"error", err,
			)
		}
	}
}

// Number returns the 1-based wave number.
func (w *Wave) Number() int {
	return w.def.Number
}

// State returns the wave's lifecycle state.
func (w *Wave) State() WaveState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// MobsAlive returns the current live census.
func (w *Wave) MobsAlive() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alive
}

// TotalMobs returns the nominal total fixed from the definition. Spawn
// failures do not reduce it.
func (w *Wave) TotalMobs() int {
	return w.total
}

// SpawnFailures returns how many spawns were skipped.
func (w *Wave) SpawnFailures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}
