package statistics

import (
	"context"
	"sort"
	"sync"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
)

// InMemoryRepository implements Repository using in-memory storage. Used in
// tests and when the server runs without Redis.
type InMemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*entities.PlayerStatistics
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		store: make(map[string]*entities.PlayerStatistics),
	}
}

// Ensure InMemoryRepository implements Repository
var _ Repository = (*InMemoryRepository)(nil)

// Increment applies counter deltas for one player.
func (r *InMemoryRepository) Increment(ctx context.Context, input *IncrementInput) (*IncrementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.store[input.PlayerID]
	if !ok {
		stats = &entities.PlayerStatistics{
			PlayerID: input.PlayerID,
			PerArena: make(map[string]*entities.StatCounters),
		}
		r.store[input.PlayerID] = stats
	}

	apply(&stats.Totals, input)
	if input.ArenaID != "" {
		counters, ok := stats.PerArena[input.ArenaID]
		if !ok {
			counters = &entities.StatCounters{}
			stats.PerArena[input.ArenaID] = counters
		}
		apply(counters, input)
	}

	totals := stats.Totals
	return &IncrementOutput{Totals: &totals}, nil
}

// Get retrieves a player's statistics record.
func (r *InMemoryRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &entities.PlayerStatistics{PlayerID: input.PlayerID}
	stats, ok := r.store[input.PlayerID]
	if ok {
		out.Totals = stats.Totals
	}
	if len(input.ArenaIDs) > 0 {
		out.PerArena = make(map[string]*entities.StatCounters, len(input.ArenaIDs))
		for _, arenaID := range input.ArenaIDs {
			counters := &entities.StatCounters{}
			if ok {
				if existing, found := stats.PerArena[arenaID]; found {
					c := *existing
					counters = &c
				}
			}
			out.PerArena[arenaID] = counters
		}
	}

	return &GetOutput{Statistics: out}, nil
}

// Top returns the leaderboard for a metric.
func (r *InMemoryRepository) Top(ctx context.Context, input *TopInput) (*TopOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Metric != MetricKills && input.Metric != MetricCompletions {
		return nil, errors.InvalidArgumentf("unknown leaderboard metric %q", input.Metric)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]LeaderboardEntry, 0, len(r.store))
	for playerID, stats := range r.store {
		score := stats.Totals.Kills
		if input.Metric == MetricCompletions {
			score = stats.Totals.Completions
		}
		if score > 0 {
			entries = append(entries, LeaderboardEntry{PlayerID: playerID, Score: score})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].PlayerID < entries[j].PlayerID
		}
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return &TopOutput{Entries: entries}, nil
}

func apply(c *entities.StatCounters, input *IncrementInput) {
	c.Kills += input.Kills
	c.Deaths += input.Deaths
	c.Completions += input.Completions
	c.Attempts += input.Attempts
	c.Playtime += input.Playtime
	if input.WaveReached > c.HighestWave {
		c.HighestWave = input.WaveReached
	}
	if input.CompletionTime > 0 && (c.FastestCompletion == 0 || input.CompletionTime < c.FastestCompletion) {
		c.FastestCompletion = input.CompletionTime
	}
}
