// Package statistics provides the repository interface and types for
// per-player lifetime counters and the kill/completion leaderboards.
package statistics

import (
	"context"
	"time"

	"github.com/bixgamer707/hordes/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=statisticsmock github.com/bixgamer707/hordes/internal/repositories/statistics Repository

// Metric selects a leaderboard.
type Metric string

// Leaderboard metrics
const (
	MetricKills       Metric = "kills"
	MetricCompletions Metric = "completions"
)

// IncrementInput applies counter deltas for one player. Counter fields add;
// WaveReached keeps the maximum; CompletionTime keeps the minimum (zero is
// ignored). When ArenaID is set the same deltas also land in that arena's
// breakdown.
type IncrementInput struct {
	PlayerID string
	ArenaID  string

	Kills       int64
	Deaths      int64
	Completions int64
	Attempts    int64

	WaveReached    int
	CompletionTime time.Duration
	Playtime       time.Duration
}

// IncrementOutput is the result of applying deltas.
type IncrementOutput struct {
	Totals *entities.StatCounters
}

// GetInput requests a player's statistics, optionally with per-arena
// breakdowns for the listed arenas.
type GetInput struct {
	PlayerID string
	ArenaIDs []string
}

// GetOutput carries the assembled record.
type GetOutput struct {
	Statistics *entities.PlayerStatistics
}

// TopInput requests the highest-scored players for a metric.
type TopInput struct {
	Metric Metric
	Limit  int
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	PlayerID string
	Score    int64
}

// TopOutput carries leaderboard rows in descending score order.
type TopOutput struct {
	Entries []LeaderboardEntry
}

// Repository defines the storage interface for player statistics.
type Repository interface {
	// Increment applies counter deltas for one player.
	Increment(ctx context.Context, input *IncrementInput) (*IncrementOutput, error)

	// Get retrieves a player's statistics record.
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Top returns the leaderboard for a metric.
	Top(ctx context.Context, input *TopInput) (*TopOutput, error)
}
