package entities

import (
	"time"

	"github.com/bixgamer707/hordes/internal/errors"
)

// ArenaState is the lifecycle state of an arena.
type ArenaState string

// Arena lifecycle states
const (
	// ArenaStateDisabled precludes all transitions; set administratively.
	ArenaStateDisabled ArenaState = "disabled"
	// ArenaStateWaiting accepts joins, no game running.
	ArenaStateWaiting ArenaState = "waiting"
	// ArenaStateStarting counts down toward the first wave.
	ArenaStateStarting ArenaState = "starting"
	// ArenaStateActive has waves in progress.
	ArenaStateActive ArenaState = "active"
	// ArenaStateEnding is the grace period between the last wave (or
	// defeat) and the reset back to waiting.
	ArenaStateEnding ArenaState = "ending"
)

// Joinable reports whether the arena accepts new participants in this state.
func (s ArenaState) Joinable() bool {
	return s == ArenaStateWaiting || s == ArenaStateStarting
}

// ArenaDefinition is the immutable configuration snapshot of one arena.
type ArenaDefinition struct {
	ID      string
	Enabled bool

	MinPlayers int
	MaxPlayers int

	// Countdown from the auto-start trigger to the first wave.
	Countdown time.Duration
	// AutoStart begins the countdown once MinPlayers is reached.
	AutoStart bool

	DeathAction DeathAction
	// DeathActionDelay applies to kick, spectate and respawn handling.
	DeathActionDelay time.Duration

	Progression ProgressionType
	// WaveDelay between waves under automatic progression. Zero means
	// advance immediately.
	WaveDelay time.Duration

	RewardMode RewardMode
	// RewardMultiplier scales progressive per-wave rewards.
	RewardMultiplier float64
	// WaveRewards are dispatcher commands run after each completed wave.
	WaveRewards []string
	// VictoryRewards are dispatcher commands run for each surviving
	// participant on victory.
	VictoryRewards []string

	// SaveInventory snapshots and restores the player's external state
	// around the playthrough.
	SaveInventory bool
	// GameMode forced on participants while playing (engine-specific).
	GameMode string

	Lobby Location
	Spawn Location
	Exit  Location

	// Region optionally links the arena to a geofenced region id.
	Region string

	// Cooldown applied on completion. GlobalCooldown extends it to every
	// arena; RejoinCooldown gates re-entry after a rejoin death action.
	Cooldown       time.Duration
	GlobalCooldown bool
	RejoinCooldown time.Duration

	// EndGrace is the Ending-state delay before the arena resets.
	EndGrace time.Duration

	// Waves in order; wave numbers are 1-based indexes into this slice.
	Waves []WaveDefinition
}

// Validate checks structural invariants of a loaded definition. Invalid
// arenas are skipped at load time rather than aborting the whole load.
func (d *ArenaDefinition) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("id", d.ID, vb)
	if d.MinPlayers < 1 {
		vb.Fieldf("min_players", "must be at least 1, got %d", d.MinPlayers)
	}
	if d.MaxPlayers < d.MinPlayers {
		vb.Fieldf("max_players", "must be >= min_players (%d), got %d", d.MinPlayers, d.MaxPlayers)
	}
	if len(d.Waves) == 0 {
		vb.RequiredField("waves")
	}
	if d.Lobby.IsZero() {
		vb.RequiredField("lobby")
	}
	if d.Spawn.IsZero() {
		vb.RequiredField("spawn")
	}
	if d.Exit.IsZero() {
		vb.RequiredField("exit")
	}
	for i, w := range d.Waves {
		if len(w.Mobs) == 0 {
			vb.Fieldf("waves", "wave %d has no mobs", i+1)
		}
		for _, m := range w.Mobs {
			if m.Count < 1 {
				vb.Fieldf("waves", "wave %d entry %q has count %d", i+1, m.MobType, m.Count)
			}
		}
	}

	return vb.Build()
}

// ParticipantStatus is a participant's per-arena status.
type ParticipantStatus string

// Participant statuses
const (
	StatusLobby      ParticipantStatus = "lobby"
	StatusPlaying    ParticipantStatus = "playing"
	StatusDead       ParticipantStatus = "dead"
	StatusSpectating ParticipantStatus = "spectating"
)

// Participant is one player's membership record within one arena for the
// duration of one playthrough attempt. Owned exclusively by its arena.
type Participant struct {
	PlayerID string
	Status   ParticipantStatus
	JoinedAt time.Time

	// Session counters, folded into statistics when the run ends.
	Kills  int
	Deaths int

	// StateSaved records that the engine snapshotted the player's
	// pre-join inventory/state and owes a restore on the way out.
	StateSaved bool
}
