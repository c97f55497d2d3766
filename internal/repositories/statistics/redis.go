package statistics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	redisclient "github.com/bixgamer707/hordes/internal/redis"
)

const (
	// Key patterns:
	//   stats:player:{player_id}                  hash of lifetime counters
	//   stats:player:{player_id}:arena:{arena_id} hash of per-arena counters
	//   stats:lb:{metric}                         leaderboard sorted set
	playerKeyPrefix      = "stats:player:"
	leaderboardKeyPrefix = "stats:lb:"

	fieldKills       = "kills"
	fieldDeaths      = "deaths"
	fieldCompletions = "completions"
	fieldAttempts    = "attempts"
	fieldHighestWave = "highest_wave"
	fieldFastestMS   = "fastest_ms"
	fieldPlaytimeMS  = "playtime_ms"

	errPlayerIDEmpty = "player ID cannot be empty"
)

// Config holds the configuration for the Redis repository
type Config struct {
	Client redisclient.Client
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis repository for player statistics
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{client: cfg.Client}, nil
}

// Ensure redisRepository implements Repository
var _ Repository = (*redisRepository)(nil)

// Increment applies counter deltas for one player.
func (r *redisRepository) Increment(ctx context.Context, input *IncrementInput) (*IncrementOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	keys := []string{playerKey(input.PlayerID)}
	if input.ArenaID != "" {
		keys = append(keys, arenaKey(input.PlayerID, input.ArenaID))
	}

	pipe := r.client.TxPipeline()
	for _, key := range keys {
		if input.Kills != 0 {
			pipe.HIncrBy(ctx, key, fieldKills, input.Kills)
		}
		if input.Deaths != 0 {
			pipe.HIncrBy(ctx, key, fieldDeaths, input.Deaths)
		}
		if input.Completions != 0 {
			pipe.HIncrBy(ctx, key, fieldCompletions, input.Completions)
		}
		if input.Attempts != 0 {
			pipe.HIncrBy(ctx, key, fieldAttempts, input.Attempts)
		}
		if input.Playtime > 0 {
			pipe.HIncrBy(ctx, key, fieldPlaytimeMS, input.Playtime.Milliseconds())
		}
	}
	if input.Kills != 0 {
		pipe.ZIncrBy(ctx, leaderboardKey(MetricKills), float64(input.Kills), input.PlayerID)
	}
	if input.Completions != 0 {
		pipe.ZIncrBy(ctx, leaderboardKey(MetricCompletions), float64(input.Completions), input.PlayerID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to apply statistics deltas")
	}

	// Max/min fields are applied read-compare-write. The recorder is the
	// single writer, so the non-atomic update is safe.
	for _, key := range keys {
		if input.WaveReached > 0 {
			if err := r.keepMax(ctx, key, fieldHighestWave, int64(input.WaveReached)); err != nil {
				return nil, err
			}
		}
		if input.CompletionTime > 0 {
			if err := r.keepMin(ctx, key, fieldFastestMS, input.CompletionTime.Milliseconds()); err != nil {
				return nil, err
			}
		}
	}

	totals, err := r.readCounters(ctx, playerKey(input.PlayerID))
	if err != nil {
		return nil, err
	}
	return &IncrementOutput{Totals: totals}, nil
}

// Get retrieves a player's statistics record.
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	totals, err := r.readCounters(ctx, playerKey(input.PlayerID))
	if err != nil {
		return nil, err
	}

	stats := &entities.PlayerStatistics{
		PlayerID: input.PlayerID,
		Totals:   *totals,
	}

	if len(input.ArenaIDs) > 0 {
		stats.PerArena = make(map[string]*entities.StatCounters, len(input.ArenaIDs))
		for _, arenaID := range input.ArenaIDs {
			counters, err := r.readCounters(ctx, arenaKey(input.PlayerID, arenaID))
			if err != nil {
				return nil, err
			}
			stats.PerArena[arenaID] = counters
		}
	}

	return &GetOutput{Statistics: stats}, nil
}

// Top returns the leaderboard for a metric.
func (r *redisRepository) Top(ctx context.Context, input *TopInput) (*TopOutput, error) {
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

	rows, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey(input.Metric), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read leaderboard")
	}

	out := &TopOutput{Entries: make([]LeaderboardEntry, 0, len(rows))}
	for _, row := range rows {
		player, _ := row.Member.(string)
		out.Entries = append(out.Entries, LeaderboardEntry{
			PlayerID: player,
			Score:    int64(row.Score),
		})
	}
	return out, nil
}

func (r *redisRepository) keepMax(ctx context.Context, key, field string, value int64) error {
	current, err := r.client.HGet(ctx, key, field).Int64()
	if err != nil && err != redis.Nil {
		return errors.Wrapf(err, "failed to read %s", field)
	}
	if err == redis.Nil || value > current {
		if err := r.client.HSet(ctx, key, field, value).Err(); err != nil {
			return errors.Wrapf(err, "failed to write %s", field)
		}
	}
	return nil
}

func (r *redisRepository) keepMin(ctx context.Context, key, field string, value int64) error {
	current, err := r.client.HGet(ctx, key, field).Int64()
	if err != nil && err != redis.Nil {
		return errors.Wrapf(err, "failed to read %s", field)
	}
	if err == redis.Nil || current == 0 || value < current {
		if err := r.client.HSet(ctx, key, field, value).Err(); err != nil {
			return errors.Wrapf(err, "failed to write %s", field)
		}
	}
	return nil
}

func (r *redisRepository) readCounters(ctx context.Context, key string) (*entities.StatCounters, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}

	counters := &entities.StatCounters{}
	for field, raw := range fields {
		n, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			continue
		}
		switch field {
		case fieldKills:
			counters.Kills = n
		case fieldDeaths:
			counters.Deaths = n
		case fieldCompletions:
			counters.Completions = n
		case fieldAttempts:
			counters.Attempts = n
		case fieldHighestWave:
			counters.HighestWave = int(n)
		case fieldFastestMS:
			counters.FastestCompletion = time.Duration(n) * time.Millisecond
		case fieldPlaytimeMS:
			counters.Playtime = time.Duration(n) * time.Millisecond
		}
	}
	return counters, nil
}

func playerKey(playerID string) string {
	return playerKeyPrefix + playerID
}

func arenaKey(playerID, arenaID string) string {
	return fmt.Sprintf("%s%s:arena:%s", playerKeyPrefix, playerID, arenaID)
}

func leaderboardKey(metric Metric) string {
	return leaderboardKeyPrefix + string(metric)
}
