package gateway

import (
	"encoding/json"

	"github.com/bixgamer707/hordes/internal/entities"
)

// Frame is the envelope for every message on the engine websocket, in both
// directions.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Engine to core event types
const (
	eventHello       = "hello"
	eventJoinRequest = "player_join_request"
	eventPlayerLeave = "player_leave"
	eventPlayerDeath = "player_death"
	eventPlayerMove  = "player_move"
	eventMobDeath    = "mob_death"
	eventSpawnResult = "spawn_result"
	eventNextWave    = "next_wave_request"
)

// Core to engine command types
const (
	cmdTeleport       = "teleport"
	cmdSpawnMob       = "spawn_mob"
	cmdRemoveEntity   = "remove_entity"
	cmdMessage        = "message"
	cmdBroadcast      = "broadcast"
	cmdGameMode       = "game_mode"
	cmdHeal           = "heal"
	cmdSpectate       = "spectate"
	cmdClearInventory = "clear_inventory"
	cmdSaveState      = "save_state"
	cmdRestoreState   = "restore_state"
	cmdRunCommand     = "run_command"
)

type helloEvent struct {
	EngineVersion   string `json:"engine_version"`
	MythicAvailable bool   `json:"mythic_available"`
}

type joinRequestEvent struct {
	PlayerID      string `json:"player_id"`
	ArenaID       string `json:"arena_id"`
	HasPermission bool   `json:"has_permission"`
}

type playerEvent struct {
	PlayerID string `json:"player_id"`
}

type playerMoveEvent struct {
	PlayerID string            `json:"player_id"`
	Location entities.Location `json:"location"`
	Regions  []string          `json:"regions"`
}

type mobDeathEvent struct {
	CorrelationID string `json:"correlation_id"`
	KillerID      string `json:"killer_id,omitempty"`
}

type spawnResultEvent struct {
	CorrelationID string `json:"correlation_id"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type teleportCommand struct {
	PlayerID string            `json:"player_id"`
	Location entities.Location `json:"location"`
}

type spawnMobCommand struct {
	CorrelationID    string            `json:"correlation_id"`
	Backend          string            `json:"backend"`
	MobType          string            `json:"mob_type"`
	Location         entities.Location `json:"location"`
	HealthMultiplier float64           `json:"health_multiplier,omitempty"`
	DamageMultiplier float64           `json:"damage_multiplier,omitempty"`
	DisplayName      string            `json:"display_name,omitempty"`
}

type removeEntityCommand struct {
	CorrelationID string `json:"correlation_id"`
}

type messageCommand struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

type broadcastCommand struct {
	PlayerIDs []string `json:"player_ids"`
	Text      string   `json:"text"`
}

type gameModeCommand struct {
	PlayerID string `json:"player_id"`
	Mode     string `json:"mode"`
}

type playerCommand struct {
	PlayerID string `json:"player_id"`
}

type runCommandCommand struct {
	PlayerID string `json:"player_id"`
	Command  string `json:"command"`
}
