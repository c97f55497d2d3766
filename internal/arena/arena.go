// Package arena implements the per-arena game lifecycle: membership,
// countdown, wave progression, death handling, rewards and reset. One Arena
// instance owns all mutable state for one configured arena and serializes it
// behind a single mutex; scheduled callbacks re-check state under that mutex
// when they fire so cancelled or superseded timers degrade to no-ops.
package arena

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

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

// countdown seconds that get a broadcast
var announceSeconds = map[int]bool{
	60: true, 45: true, 30: true, 15: true, 10: true,
	5: true, 4: true, 3: true, 2: true, 1: true,
}

// Config holds the dependencies for one arena instance.
type Config struct {
	Definition  *entities.ArenaDefinition
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

	// OnPlayerReleased is invoked after a player leaves the arena for any
	// reason, so the registry can clear its player index. Optional.
	OnPlayerReleased func(playerID string)
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Definition == nil {
		vb.RequiredField("Definition")
	}
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

// Arena is the lifecycle state machine for one configured arena.
//
// Locking: a.mu guards all mutable fields. Wave methods are never called
// while holding a.mu (the wave completion callback re-enters the arena);
// public methods that need to start or clean up a wave collect the work
// under the lock and perform it after releasing it.
type Arena struct {
	def         *entities.ArenaDefinition
	engine      engine.Adapter
	messenger   engine.Messenger
	permissions engine.PermissionChecker
	rewards     engine.RewardDispatcher
	renderer    messages.Renderer
	spawner     *spawn.Coordinator
	cooldowns   *cooldown.Ledger
	stats       stats.Recorder
	sched       scheduler.Scheduler
	clock       clock.Clock
	onReleased  func(playerID string)

	mu           sync.Mutex
	state        entities.ArenaState
	participants map[string]*entities.Participant
	alive        map[string]struct{}
	dead         map[string]struct{}

	currentWave  int
	wave         *Wave
	awaitingNext bool
	startedAt    time.Time

	countdownTask scheduler.Task
	countdownLeft int
	waveTask      scheduler.Task
	endTask       scheduler.Task
	deathTasks    map[string]scheduler.Task
}

// New creates an arena in the waiting state, or disabled when the definition
// says so.
func New(cfg *Config) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := cfg.Definition.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid arena definition %q", cfg.Definition.ID)
	}

	state := entities.ArenaStateWaiting
	if !cfg.Definition.Enabled {
		state = entities.ArenaStateDisabled
	}

	return &Arena{
		def:          cfg.Definition,
		engine:       cfg.Engine,
		messenger:    cfg.Messenger,
		permissions:  cfg.Permissions,
		rewards:      cfg.Rewards,
		renderer:     cfg.Renderer,
		spawner:      cfg.Spawner,
		cooldowns:    cfg.Cooldowns,
		stats:        cfg.Stats,
		sched:        cfg.Scheduler,
		clock:        cfg.Clock,
		onReleased:   cfg.OnPlayerReleased,
		state:        state,
		participants: make(map[string]*entities.Participant),
		alive:        make(map[string]struct{}),
		dead:         make(map[string]struct{}),
		deathTasks:   make(map[string]scheduler.Task),
	}, nil
}

// ID returns the arena's configured id.
func (a *Arena) ID() string {
	return a.def.ID
}

// State returns the arena's lifecycle state.
func (a *Arena) State() entities.ArenaState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Definition returns the immutable configuration snapshot.
func (a *Arena) Definition() *entities.ArenaDefinition {
	return a.def
}

// Join admits the player if every precondition passes. On rejection the
// player receives the rendered reason and the arena is left untouched.
// Returns true on admission.
func (a *Arena) Join(playerID string) bool {
	a.mu.Lock()

	if _, ok := a.participants[playerID]; ok {
		a.rejectLocked(playerID, "join.already-in")
		a.mu.Unlock()
		return false
	}
	if !a.state.Joinable() && a.state != entities.ArenaStateDisabled {
		a.rejectLocked(playerID, "join.not-joinable")
		a.mu.Unlock()
		return false
	}
	if a.state == entities.ArenaStateDisabled {
		a.rejectLocked(playerID, "join.disabled")
		a.mu.Unlock()
		return false
	}
	if len(a.participants) >= a.def.MaxPlayers {
		a.rejectLocked(playerID, "join.full")
		a.mu.Unlock()
		return false
	}
	if a.cooldowns.HasCooldown(playerID, a.def.ID) {
		remaining := a.cooldowns.Remaining(playerID, a.def.ID)
		a.rejectLocked(playerID, "join.cooldown", formatDuration(remaining))
		a.mu.Unlock()
		return false
	}
	if !a.permissions.HasPermission(playerID, "hordes.join."+a.def.ID) {
		a.rejectLocked(playerID, "join.no-permission")
		a.mu.Unlock()
		return false
	}

	p := &entities.Participant{
		PlayerID: playerID,
		Status:   entities.StatusLobby,
		JoinedAt: a.clock.Now(),
	}

	if a.def.SaveInventory {
		if err := a.engine.SaveState(playerID); err != nil {
			slog.Warn("failed to save player state",
				"arena_id", a.def.ID,
				"player_id", playerID,
				"error", err,
			)
		} else {
			p.StateSaved = true
			if err := a.engine.ClearInventory(playerID); err != nil {
				slog.Warn("failed to clear inventory",
					"arena_id", a.def.ID,
					"player_id", playerID,
					"error", err,
				)
			}
		}
	}

	a.participants[playerID] = p
	a.alive[playerID] = struct{}{}

	if err := a.engine.Heal(playerID); err != nil {
		slog.Warn("failed to reset player health",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}
	if err := a.engine.Teleport(playerID, a.def.Lobby); err != nil {
		slog.Warn("failed to teleport player to lobby",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}

	a.sendLocked(playerID, "join.joined", a.def.ID)
	a.broadcastLocked("join.player-joined", playerID, len(a.participants), a.def.MaxPlayers)

	activated := false
	if a.def.AutoStart && a.state == entities.ArenaStateWaiting && len(a.participants) >= a.def.MinPlayers {
		activated = a.startCountdownLocked()
	}
	a.mu.Unlock()

	if activated {
		a.kickoffWave()
	}
	return true
}

// Leave removes the player voluntarily. Their saved state is restored and
// membership invariants are re-evaluated. Unknown players are a no-op.
func (a *Arena) Leave(playerID string) {
	a.Remove(playerID, true)
}

// Remove takes the player out of the arena for any reason. When restore is
// true the engine restores the pre-join snapshot and the player is moved to
// the exit. Re-evaluates countdown and defeat conditions afterwards.
func (a *Arena) Remove(playerID string, restore bool) {
	a.mu.Lock()
	p, ok := a.participants[playerID]
	if !ok {
		a.mu.Unlock()
		return
	}

	delete(a.participants, playerID)
	delete(a.alive, playerID)
	delete(a.dead, playerID)
	if task, found := a.deathTasks[playerID]; found {
		task.Cancel()
		delete(a.deathTasks, playerID)
	}

	a.releaseLocked(p, restore)
	a.broadcastLocked("leave.player-left", playerID, len(a.participants), a.def.MaxPlayers)

	var endedWave *Wave
	switch a.state {
	case entities.ArenaStateStarting:
		if len(a.participants) < a.def.MinPlayers {
			a.cancelCountdownLocked()
		}
	case entities.ArenaStateActive:
		if len(a.alive) == 0 {
			endedWave, _ = a.endLocked(false)
		}
	}
	a.mu.Unlock()

	if endedWave != nil {
		endedWave.Cleanup()
	}
}

// releaseLocked performs the engine-side teardown of one departing player
// and notifies the registry. Caller holds a.mu and has already removed the
// player from the membership maps.
func (a *Arena) releaseLocked(p *entities.Participant, restore bool) {
	playerID := p.PlayerID

	if restore && p.StateSaved {
		if err := a.engine.RestoreState(playerID); err != nil {
			slog.Warn("failed to restore player state",
				"arena_id", a.def.ID,
				"player_id", playerID,
				"error", err,
			)
		}
	}
	if err := a.engine.Teleport(playerID, a.def.Exit); err != nil {
		slog.Warn("failed to teleport player to exit",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}

	a.stats.Record(stats.Event{
		Type:     stats.EventPlaytime,
		PlayerID: playerID,
		ArenaID:  a.def.ID,
		Elapsed:  a.clock.Now().Sub(p.JoinedAt),
	})

	if a.onReleased != nil {
		a.onReleased(playerID)
	}
}

// rejectLocked sends a rendered join rejection. Caller holds a.mu.
func (a *Arena) rejectLocked(playerID, key string, args ...any) {
	a.messenger.Send(playerID, a.renderer.Render(key, args...))
}

// sendLocked renders and delivers a direct message. Caller holds a.mu.
func (a *Arena) sendLocked(playerID, key string, args ...any) {
	a.messenger.Send(playerID, a.renderer.Render(key, args...))
}

// broadcastLocked renders and delivers a message to every participant.
// Caller holds a.mu.
func (a *Arena) broadcastLocked(key string, args ...any) {
	if len(a.participants) == 0 {
		return
	}
	ids := make([]string, 0, len(a.participants))
	for id := range a.participants {
		ids = append(ids, id)
	}
	a.messenger.Broadcast(ids, a.renderer.Render(key, args...))
}

// startCountdownLocked transitions waiting -> starting and schedules the
// one-second countdown tick. A zero countdown activates immediately; the
// return value tells the caller to run kickoffWave once a.mu is released.
// Caller holds a.mu.
func (a *Arena) startCountdownLocked() bool {
	a.state = entities.ArenaStateStarting
	a.countdownLeft = int(a.def.Countdown / time.Second)
	a.broadcastLocked("countdown.started", a.countdownLeft)

	if a.countdownLeft <= 0 {
		a.activateLocked()
		return true
	}
	a.countdownTask = a.sched.Every(time.Second, a.countdownTick)
	return false
}

// countdownTick fires once per second while starting. Stale ticks after a
// cancel or state change are dropped.
func (a *Arena) countdownTick() {
	a.mu.Lock()
	if a.state != entities.ArenaStateStarting {
		a.mu.Unlock()
		return
	}

	a.countdownLeft--
	if a.countdownLeft > 0 {
		if announceSeconds[a.countdownLeft] {
			a.broadcastLocked("countdown.tick", a.countdownLeft)
		}
		a.mu.Unlock()
		return
	}

	if a.countdownTask != nil {
		a.countdownTask.Cancel()
		a.countdownTask = nil
	}
	a.activateLocked()
	a.mu.Unlock()

	a.kickoffWave()
}

// cancelCountdownLocked aborts the countdown and returns to waiting.
// Caller holds a.mu.
func (a *Arena) cancelCountdownLocked() {
	if a.countdownTask != nil {
		a.countdownTask.Cancel()
		a.countdownTask = nil
	}
	a.state = entities.ArenaStateWaiting
	a.countdownLeft = 0
	a.broadcastLocked("countdown.cancelled")
}

// activateLocked transitions starting -> active: every participant becomes a
// live combatant and wave 1 is prepared. Caller holds a.mu and must call
// kickoffWave after releasing it.
func (a *Arena) activateLocked() {
	a.state = entities.ArenaStateActive
	a.startedAt = a.clock.Now()

	for id, p := range a.participants {
		p.Status = entities.StatusPlaying
		if err := a.engine.Teleport(id, a.def.Spawn); err != nil {
			slog.Warn("failed to teleport player to spawn",
				"arena_id", a.def.ID,
				"player_id", id,
				"error", err,
			)
		}
		if a.def.GameMode != "" {
			if err := a.engine.SetGameMode(id, a.def.GameMode); err != nil {
				slog.Warn("failed to set game mode",
					"arena_id", a.def.ID,
					"player_id", id,
					"error", err,
				)
			}
		}
		a.stats.Record(stats.Event{
			Type:     stats.EventAttempt,
			PlayerID: id,
			ArenaID:  a.def.ID,
		})
	}

	a.broadcastLocked("game.started")
	a.prepareWaveLocked(1)
}

// prepareWaveLocked builds the wave instance for number n and announces it.
// Caller holds a.mu; the wave is started by kickoffWave once the lock is
// released.
func (a *Arena) prepareWaveLocked(n int) {
	a.currentWave = n
	a.awaitingNext = false
	def := a.def.Waves[n-1]
	def.Number = n
	a.wave = newWave(a.def.ID, def, a.def.Spawn, a.spawner, a.sched, a.clock, a.waveCompleted)
	a.broadcastLocked("wave.start", n, len(a.def.Waves), a.wave.TotalMobs())
}

// kickoffWave starts the prepared wave. Must be called without a.mu held;
// an empty or all-failed wave completes synchronously and re-enters the
// arena through the completion callback.
func (a *Arena) kickoffWave() {
	a.mu.Lock()
	w := a.wave
	active := a.state == entities.ArenaStateActive
	a.mu.Unlock()

	if active && w != nil {
		w.Start()
	}
}

// waveCompleted is the wave completion callback. Runs without any lock held.
func (a *Arena) waveCompleted(w *Wave) {
	var (
		startNext  bool
		endedWave  *Wave
		dispatches []rewardDispatch
	)

	a.mu.Lock()
	if a.wave != w || a.state != entities.ArenaStateActive {
		a.mu.Unlock()
		return
	}

	waveNum := a.currentWave
	a.broadcastLocked("wave.complete", waveNum)

	for id := range a.alive {
		a.stats.Record(stats.Event{
			Type:     stats.EventWaveReached,
			PlayerID: id,
			ArenaID:  a.def.ID,
			Wave:     waveNum,
		})
	}

	if a.def.RewardMode == entities.RewardAllWaves {
		dispatches = a.collectRewardsLocked(a.def.WaveRewards, waveNum)
	}

	if waveNum >= len(a.def.Waves) {
		var victoryRewards []rewardDispatch
		endedWave, victoryRewards = a.endLocked(true)
		dispatches = append(dispatches, victoryRewards...)
	} else {
		switch a.def.Progression {
		case entities.ProgressionManual:
			a.awaitingNext = true
			a.broadcastLocked("wave.awaiting", waveNum+1)
		default:
			if a.def.WaveDelay <= 0 {
				a.prepareWaveLocked(waveNum + 1)
				startNext = true
			} else {
				a.waveTask = a.sched.After(a.def.WaveDelay, a.advanceWave)
			}
		}
	}
	a.mu.Unlock()

	a.dispatch(dispatches)
	if endedWave != nil {
		endedWave.Cleanup()
	}
	if startNext {
		a.kickoffWave()
	}
}

// advanceWave fires after the configured wave delay under automatic
// progression. Stale fires after a stop or reset are dropped.
func (a *Arena) advanceWave() {
	a.mu.Lock()
	a.waveTask = nil
	if a.state != entities.ArenaStateActive || a.currentWave >= len(a.def.Waves) {
		a.mu.Unlock()
		return
	}
	a.prepareWaveLocked(a.currentWave + 1)
	a.mu.Unlock()

	a.kickoffWave()
}

// TriggerNextWave advances a manually progressed arena that is waiting on
// the trigger. Returns false when no wave advance is pending.
func (a *Arena) TriggerNextWave() bool {
	a.mu.Lock()
	if a.state != entities.ArenaStateActive || !a.awaitingNext {
		a.mu.Unlock()
		return false
	}
	a.prepareWaveLocked(a.currentWave + 1)
	a.mu.Unlock()

	a.kickoffWave()
	return true
}

// TeleportTo sends a player to the arena's spawn point without joining.
// Used by the admin surface for inspection.
func (a *Arena) TeleportTo(playerID string) error {
	return a.engine.Teleport(playerID, a.def.Spawn)
}

// OnMobDeath routes a mob-death event into the current wave and attributes
// the kill. Stray correlation ids are dropped; an empty killer id records no
// kill.
func (a *Arena) OnMobDeath(correlationID, killerID string) {
	a.mu.Lock()
	w := a.wave
	a.mu.Unlock()

	if w == nil || !w.OnMobDeath(correlationID) {
		return
	}
	if killerID == "" {
		return
	}

	a.mu.Lock()
	if p, ok := a.participants[killerID]; ok {
		p.Kills++
		a.stats.Record(stats.Event{
			Type:     stats.EventKill,
			PlayerID: killerID,
			ArenaID:  a.def.ID,
		})
	}
	a.mu.Unlock()
}

// OnSpawnFailed routes an asynchronous spawn failure into the current wave.
func (a *Arena) OnSpawnFailed(correlationID string) {
	a.mu.Lock()
	w := a.wave
	a.mu.Unlock()

	if w != nil {
		w.OnSpawnFailed(correlationID)
	}
}

// OnPlayerDeath applies the configured death action to a live participant.
// Deaths of unknown or already-dead players are dropped. A death that empties
// the live set ends the game as a defeat, pre-empting any scheduled
// respawn.
func (a *Arena) OnPlayerDeath(playerID string) {
	a.mu.Lock()
	p, ok := a.participants[playerID]
	if !ok || a.state != entities.ArenaStateActive {
		a.mu.Unlock()
		return
	}
	if _, isAlive := a.alive[playerID]; !isAlive {
		a.mu.Unlock()
		return
	}

	delete(a.alive, playerID)
	a.dead[playerID] = struct{}{}
	p.Status = entities.StatusDead
	p.Deaths++

	a.stats.Record(stats.Event{
		Type:     stats.EventDeath,
		PlayerID: playerID,
		ArenaID:  a.def.ID,
	})
	a.broadcastLocked("player.death", playerID)

	var removeForRejoin bool
	switch a.def.DeathAction {
	case entities.DeathActionKick:
		a.deathTasks[playerID] = a.sched.After(a.def.DeathActionDelay, func() {
			a.Remove(playerID, true)
		})
	case entities.DeathActionSpectate:
		a.deathTasks[playerID] = a.sched.After(a.def.DeathActionDelay, func() {
			a.applySpectate(playerID)
		})
	case entities.DeathActionRejoin:
		if a.def.RejoinCooldown > 0 {
			a.cooldowns.SetTemporary(playerID, a.def.ID, a.def.RejoinCooldown)
		}
		removeForRejoin = true
	case entities.DeathActionRespawn:
		a.deathTasks[playerID] = a.sched.After(a.def.DeathActionDelay, func() {
			a.applyRespawn(playerID)
		})
	}

	var endedWave *Wave
	if len(a.alive) == 0 {
		endedWave, _ = a.endLocked(false)
	}
	a.mu.Unlock()

	if endedWave != nil {
		endedWave.Cleanup()
	} else if removeForRejoin {
		a.Remove(playerID, true)
	}
}

// applySpectate switches a dead participant into spectator mode. Dropped if
// the game ended while the delay was pending.
func (a *Arena) applySpectate(playerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.deathTasks, playerID)
	if a.state != entities.ArenaStateActive {
		return
	}
	p, ok := a.participants[playerID]
	if !ok {
		return
	}
	if _, isDead := a.dead[playerID]; !isDead {
		return
	}

	p.Status = entities.StatusSpectating
	if err := a.engine.SetSpectator(playerID); err != nil {
		slog.Warn("failed to set spectator mode",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}
	if err := a.engine.Teleport(playerID, a.def.Spawn); err != nil {
		slog.Warn("failed to teleport spectator",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}
	a.sendLocked(playerID, "player.spectating")
}

// applyRespawn returns a dead participant to combat. Dropped if the game
// ended while the delay was pending; the reset path owns cleanup then.
func (a *Arena) applyRespawn(playerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.deathTasks, playerID)
	if a.state != entities.ArenaStateActive {
		return
	}
	p, ok := a.participants[playerID]
	if !ok {
		return
	}
	if _, isDead := a.dead[playerID]; !isDead {
		return
	}

	delete(a.dead, playerID)
	a.alive[playerID] = struct{}{}
	p.Status = entities.StatusPlaying

	if err := a.engine.Heal(playerID); err != nil {
		slog.Warn("failed to heal respawned player",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}
	if err := a.engine.Teleport(playerID, a.def.Spawn); err != nil {
		slog.Warn("failed to teleport respawned player",
			"arena_id", a.def.ID,
			"player_id", playerID,
			"error", err,
		)
	}
	a.sendLocked(playerID, "player.respawn")
}

// rewardDispatch is one pending reward command for one player, collected
// under the lock and executed after it is released.
type rewardDispatch struct {
	playerID string
	command  string
}

// collectRewardsLocked expands reward command templates for every live
// participant. Caller holds a.mu.
func (a *Arena) collectRewardsLocked(commands []string, waveNum int) []rewardDispatch {
	if len(commands) == 0 {
		return nil
	}

	multiplier := a.def.RewardMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	out := make([]rewardDispatch, 0, len(commands)*len(a.alive))
	for id := range a.alive {
		for _, cmd := range commands {
			expanded := strings.ReplaceAll(cmd, "{player}", id)
			expanded = strings.ReplaceAll(expanded, "{wave}", fmt.Sprint(waveNum))
			expanded = strings.ReplaceAll(expanded, "{multiplier}", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", multiplier), "0"), "."))
			out = append(out, rewardDispatch{playerID: id, command: expanded})
		}
	}
	return out
}

// dispatch executes collected reward commands. Runs without a.mu held.
func (a *Arena) dispatch(dispatches []rewardDispatch) {
	for _, d := range dispatches {
		if err := a.rewards.Dispatch(d.playerID, d.command); err != nil {
			slog.Warn("reward dispatch failed",
				"arena_id", a.def.ID,
				"player_id", d.playerID,
				"command", d.command,
				"error", err,
			)
		}
	}
}

// endLocked transitions active -> ending, cancels every pending task and
// schedules the reset. Returns the wave that still needs Cleanup and the
// victory rewards to dispatch, both of which the caller handles after
// releasing a.mu. Caller holds a.mu.
func (a *Arena) endLocked(victory bool) (*Wave, []rewardDispatch) {
	if a.state != entities.ArenaStateActive {
		return nil, nil
	}
	a.state = entities.ArenaStateEnding
	a.awaitingNext = false

	if a.waveTask != nil {
		a.waveTask.Cancel()
		a.waveTask = nil
	}
	for id, task := range a.deathTasks {
		task.Cancel()
		delete(a.deathTasks, id)
	}

	w := a.wave
	a.wave = nil

	var victoryRewards []rewardDispatch
	if victory {
		elapsed := a.clock.Now().Sub(a.startedAt)
		a.broadcastLocked("game.victory", formatDuration(elapsed))

		for id := range a.alive {
			a.stats.Record(stats.Event{
				Type:     stats.EventCompletion,
				PlayerID: id,
				ArenaID:  a.def.ID,
				Elapsed:  elapsed,
			})
		}
		// victory rewards run for survivors regardless of reward mode
		victoryRewards = a.collectRewardsLocked(a.def.VictoryRewards, a.currentWave)

		if a.def.Cooldown > 0 {
			for id := range a.participants {
				if a.def.GlobalCooldown {
					a.cooldowns.SetGlobal(id, a.def.Cooldown)
				} else {
					a.cooldowns.SetArena(id, a.def.ID, a.def.Cooldown)
				}
			}
		}
	} else {
		a.broadcastLocked("game.defeat", a.currentWave)
	}

	if a.def.EndGrace <= 0 {
		a.resetLocked()
	} else {
		a.endTask = a.sched.After(a.def.EndGrace, a.resetAfterGrace)
	}
	return w, victoryRewards
}

// resetAfterGrace fires at the end of the ending grace period.
func (a *Arena) resetAfterGrace() {
	a.mu.Lock()
	a.endTask = nil
	if a.state != entities.ArenaStateEnding {
		a.mu.Unlock()
		return
	}
	a.resetLocked()
	a.mu.Unlock()
}

// resetLocked evicts every remaining participant and returns the arena to
// waiting (or disabled). Caller holds a.mu.
func (a *Arena) resetLocked() {
	for id, p := range a.participants {
		delete(a.participants, id)
		delete(a.alive, id)
		delete(a.dead, id)
		a.releaseLocked(p, true)
	}
	for id, task := range a.deathTasks {
		task.Cancel()
		delete(a.deathTasks, id)
	}

	a.currentWave = 0
	a.awaitingNext = false
	a.countdownLeft = 0
	if a.def.Enabled {
		a.state = entities.ArenaStateWaiting
	} else {
		a.state = entities.ArenaStateDisabled
	}
}

// ForceStart begins the countdown on admin request. Fails unless the arena
// is waiting with at least one participant.
func (a *Arena) ForceStart() error {
	a.mu.Lock()

	if a.state != entities.ArenaStateWaiting {
		a.mu.Unlock()
		return errors.FailedPreconditionf("arena %s is %s, expected waiting", a.def.ID, a.state)
	}
	if len(a.participants) == 0 {
		a.mu.Unlock()
		return errors.FailedPreconditionf("arena %s has no participants", a.def.ID)
	}

	activated := a.startCountdownLocked()
	a.mu.Unlock()

	if activated {
		a.kickoffWave()
	}
	return nil
}

// ForceStop terminates the arena immediately: the countdown is cancelled or
// the running game ends as a defeat with no grace period, and every
// participant is evicted. No-op when already waiting or disabled.
func (a *Arena) ForceStop() error {
	a.mu.Lock()

	var endedWave *Wave
	switch a.state {
	case entities.ArenaStateWaiting:
		// nothing running, but lobby players still need evicting
		a.resetLocked()
	case entities.ArenaStateStarting:
		a.cancelCountdownLocked()
		a.resetLocked()
	case entities.ArenaStateActive:
		a.broadcastLocked("game.defeat", a.currentWave)
		a.awaitingNext = false
		if a.waveTask != nil {
			a.waveTask.Cancel()
			a.waveTask = nil
		}
		for id, task := range a.deathTasks {
			task.Cancel()
			delete(a.deathTasks, id)
		}
		endedWave = a.wave
		a.wave = nil
		a.resetLocked()
	case entities.ArenaStateEnding:
		if a.endTask != nil {
			a.endTask.Cancel()
			a.endTask = nil
		}
		a.resetLocked()
	}
	a.mu.Unlock()

	if endedWave != nil {
		endedWave.Cleanup()
	}
	return nil
}

// Snapshot is a point-in-time read of the arena for the admin surface.
type Snapshot struct {
	ID           string              `json:"id"`
	State        entities.ArenaState `json:"state"`
	Players      int                 `json:"players"`
	PlayersAlive int                 `json:"players_alive"`
	MaxPlayers   int                 `json:"max_players"`
	CurrentWave  int                 `json:"current_wave"`
	TotalWaves   int                 `json:"total_waves"`
	MobsAlive    int                 `json:"mobs_alive"`
	AwaitingNext bool                `json:"awaiting_next_wave"`
}

// Snapshot returns the current lifecycle view of the arena.
func (a *Arena) Snapshot() Snapshot {
	a.mu.Lock()
	w := a.wave
	snap := Snapshot{
		ID:           a.def.ID,
		State:        a.state,
		Players:      len(a.participants),
		PlayersAlive: len(a.alive),
		MaxPlayers:   a.def.MaxPlayers,
		CurrentWave:  a.currentWave,
		TotalWaves:   len(a.def.Waves),
		AwaitingNext: a.awaitingNext,
	}
	a.mu.Unlock()

	if w != nil {
		snap.MobsAlive = w.MobsAlive()
	}
	return snap
}

// HasParticipant reports whether the player is currently in the arena.
func (a *Arena) HasParticipant(playerID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.participants[playerID]
	return ok
}

// Participants returns the current participant ids.
func (a *Arena) Participants() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.participants))
	for id := range a.participants {
		ids = append(ids, id)
	}
	return ids
}

// formatDuration renders a duration as a compact "2m30s" style string for
// player-facing messages.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm%ds", m, s)
}
