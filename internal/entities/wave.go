package entities

import "time"

// SpawnBackend selects which mob-spawning implementation handles an entry.
type SpawnBackend string

// Spawn backends
const (
	// BackendVanilla spawns engine-native mobs.
	BackendVanilla SpawnBackend = "vanilla"
	// BackendMythic spawns mobs through the third-party mob framework.
	// Degrades to always-failing when the framework is unavailable.
	BackendMythic SpawnBackend = "mythic"
)

// MobEntry is one line of a wave's mob list.
type MobEntry struct {
	// Backend that spawns this entry.
	Backend SpawnBackend

	// MobType is the backend-specific mob type id (e.g. "ZOMBIE" or a
	// framework mob name).
	MobType string

	// Count of mobs to spawn for this entry.
	Count int

	// HealthMultiplier scales the mob's base health. 1.0 means unchanged.
	HealthMultiplier float64

	// DamageMultiplier scales the mob's dealt damage. 1.0 means unchanged.
	DamageMultiplier float64

	// DisplayName optionally overrides the mob's name tag.
	DisplayName string
}

// WaveDefinition is the immutable configuration for one (arena, wave) pair.
type WaveDefinition struct {
	// Number of this wave, 1-based.
	Number int

	// Mobs in spawn order. Entries are consumed sequentially.
	Mobs []MobEntry

	// SpawnInterval between spawn cycles.
	SpawnInterval time.Duration

	// MobsPerCycle is how many mobs each spawn cycle releases.
	MobsPerCycle int

	// SpawnPoints optionally pins spawns to explicit locations. Empty
	// means fall back to the arena spawn.
	SpawnPoints []Location
}

// TotalMobs returns the nominal mob count of the wave.
func (w *WaveDefinition) TotalMobs() int {
	total := 0
	for _, m := range w.Mobs {
		total += m.Count
	}
	return total
}
