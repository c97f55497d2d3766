package entities

import "time"

// StatCounters is the counter shape shared by lifetime totals and the
// per-arena breakdown.
type StatCounters struct {
	Kills       int64         `json:"kills"`
	Deaths      int64         `json:"deaths"`
	Completions int64         `json:"completions"`
	Attempts    int64         `json:"attempts"`
	HighestWave int           `json:"highest_wave"`
	// FastestCompletion is zero until the first victory.
	FastestCompletion time.Duration `json:"fastest_completion"`
	Playtime          time.Duration `json:"playtime"`
}

// PlayerStatistics is one player's full statistics record.
type PlayerStatistics struct {
	PlayerID string                   `json:"player_id"`
	Totals   StatCounters             `json:"totals"`
	PerArena map[string]*StatCounters `json:"per_arena,omitempty"`
}
