// Package config loads and converts the YAML configuration documents:
// arenas.yaml (arena and wave definitions) and messages.yaml (player-facing
// message templates). Durations in arenas.yaml are written in engine ticks
// (20 per second) to match the numbers arena builders already know.
package config

import (
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/messages"
)

// TickDuration is the wall-clock length of one engine tick.
const TickDuration = 50 * time.Millisecond

func ticks(n int) time.Duration {
	return time.Duration(n) * TickDuration
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

type arenasDoc struct {
	Arenas map[string]arenaDTO `yaml:"arenas"`
}

type arenaDTO struct {
	Enabled               *bool         `yaml:"enabled"`
	MinPlayers            int           `yaml:"min_players"`
	MaxPlayers            int           `yaml:"max_players"`
	CountdownTicks        int           `yaml:"countdown_ticks"`
	AutoStart             *bool         `yaml:"auto_start"`
	DeathAction           string        `yaml:"death_action"`
	DeathActionDelayTicks int           `yaml:"death_action_delay_ticks"`
	Progression           string        `yaml:"progression"`
	WaveDelayTicks        int           `yaml:"wave_delay_ticks"`
	RewardMode            string        `yaml:"reward_mode"`
	RewardMultiplier      float64       `yaml:"reward_multiplier"`
	WaveRewards           []string      `yaml:"wave_rewards"`
	VictoryRewards        []string      `yaml:"victory_rewards"`
	SaveInventory         bool          `yaml:"save_inventory"`
	GameMode              string        `yaml:"game_mode"`
	Lobby                 locationDTO   `yaml:"lobby"`
	Spawn                 locationDTO   `yaml:"spawn"`
	Exit                  locationDTO   `yaml:"exit"`
	Region                string        `yaml:"region"`
	CooldownSeconds       int           `yaml:"cooldown_seconds"`
	GlobalCooldown        bool          `yaml:"global_cooldown"`
	RejoinCooldownSeconds int           `yaml:"rejoin_cooldown_seconds"`
	EndGraceTicks         int           `yaml:"end_grace_ticks"`
	Waves                 []waveDTO     `yaml:"waves"`
}

type waveDTO struct {
	SpawnIntervalTicks int           `yaml:"spawn_interval_ticks"`
	MobsPerCycle       int           `yaml:"mobs_per_cycle"`
	SpawnPoints        []locationDTO `yaml:"spawn_points"`
	Mobs               []mobDTO      `yaml:"mobs"`
}

type mobDTO struct {
	Backend          string  `yaml:"backend"`
	Type             string  `yaml:"type"`
	Count            int     `yaml:"count"`
	HealthMultiplier float64 `yaml:"health_multiplier"`
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	DisplayName      string  `yaml:"display_name"`
}

type locationDTO struct {
	World string  `yaml:"world"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
}

func (l locationDTO) toEntity() entities.Location {
	return entities.Location{World: l.World, X: l.X, Y: l.Y, Z: l.Z, Yaw: l.Yaw, Pitch: l.Pitch}
}

// LoadArenas parses arenas.yaml into definitions, sorted by id. Conversion
// errors (unknown enum values) skip the offending arena with a log entry
// left to the caller via the returned skip list; structural validation
// happens when the registry builds the arena.
func LoadArenas(path string) ([]*entities.ArenaDefinition, []error, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}

	var doc arenasDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "parse %s", path)
	}

	defs := make([]*entities.ArenaDefinition, 0, len(doc.Arenas))
	var skipped []error
	for id, dto := range doc.Arenas {
		def, err := dto.toEntity(id)
		if err != nil {
			skipped = append(skipped, errors.Wrapf(err, "arena %q", id))
			continue
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, skipped, nil
}

func (dto arenaDTO) toEntity(id string) (*entities.ArenaDefinition, error) {
	deathAction := entities.DeathActionRespawn
	if dto.DeathAction != "" {
		parsed, err := entities.ParseDeathAction(dto.DeathAction)
		if err != nil {
			return nil, err
		}
		deathAction = parsed
	}

	progression := entities.ProgressionAutomatic
	if dto.Progression != "" {
		parsed, err := entities.ParseProgressionType(dto.Progression)
		if err != nil {
			return nil, err
		}
		progression = parsed
	}

	rewardMode := entities.RewardAllWaves
	if dto.RewardMode != "" {
		parsed, err := entities.ParseRewardMode(dto.RewardMode)
		if err != nil {
			return nil, err
		}
		rewardMode = parsed
	}

	multiplier := dto.RewardMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	def := &entities.ArenaDefinition{
		ID:               id,
		Enabled:          boolOr(dto.Enabled, true),
		MinPlayers:       dto.MinPlayers,
		MaxPlayers:       dto.MaxPlayers,
		Countdown:        ticks(dto.CountdownTicks),
		AutoStart:        boolOr(dto.AutoStart, true),
		DeathAction:      deathAction,
		DeathActionDelay: ticks(dto.DeathActionDelayTicks),
		Progression:      progression,
		WaveDelay:        ticks(dto.WaveDelayTicks),
		RewardMode:       rewardMode,
		RewardMultiplier: multiplier,
		WaveRewards:      dto.WaveRewards,
		VictoryRewards:   dto.VictoryRewards,
		SaveInventory:    dto.SaveInventory,
		GameMode:         dto.GameMode,
		Lobby:            dto.Lobby.toEntity(),
		Spawn:            dto.Spawn.toEntity(),
		Exit:             dto.Exit.toEntity(),
		Region:           dto.Region,
		Cooldown:         seconds(dto.CooldownSeconds),
		GlobalCooldown:   dto.GlobalCooldown,
		RejoinCooldown:   seconds(dto.RejoinCooldownSeconds),
		EndGrace:         ticks(dto.EndGraceTicks),
	}

	for i, w := range dto.Waves {
		wave, err := w.toEntity(i + 1)
		if err != nil {
			return nil, errors.Wrapf(err, "wave %d", i+1)
		}
		def.Waves = append(def.Waves, wave)
	}
	return def, nil
}

func (dto waveDTO) toEntity(number int) (entities.WaveDefinition, error) {
	wave := entities.WaveDefinition{
		Number:        number,
		SpawnInterval: ticks(dto.SpawnIntervalTicks),
		MobsPerCycle:  dto.MobsPerCycle,
	}
	if wave.MobsPerCycle <= 0 {
		wave.MobsPerCycle = 1
	}
	for _, p := range dto.SpawnPoints {
		wave.SpawnPoints = append(wave.SpawnPoints, p.toEntity())
	}

	for _, m := range dto.Mobs {
		backend := entities.BackendVanilla
		switch m.Backend {
		case "", "vanilla":
		case "mythic":
			backend = entities.BackendMythic
		default:
			return entities.WaveDefinition{}, errors.InvalidArgumentf("unknown spawn backend %q", m.Backend)
		}

		entry := entities.MobEntry{
			Backend:          backend,
			MobType:          m.Type,
			Count:            m.Count,
			HealthMultiplier: floatOr(m.HealthMultiplier, 1),
			DamageMultiplier: floatOr(m.DamageMultiplier, 1),
			DisplayName:      m.DisplayName,
		}
		wave.Mobs = append(wave.Mobs, entry)
	}
	return wave, nil
}

// LoadMessages parses messages.yaml into a flat template map.
func LoadMessages(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "parse %s", path)
	}
	return messages.Flatten(doc), nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
