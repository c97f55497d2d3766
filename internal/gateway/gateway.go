// Package gateway is the websocket bridge between the arena core and the
// game-engine plugin. The engine keeps a single connection open and streams
// player events in; the core streams engine commands out. The gateway
// implements the engine-facing collaborator interfaces (Adapter, Messenger,
// PermissionChecker, RewardDispatcher) and the vanilla spawn backend on top
// of that one connection.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/spawn"
)

// EventSink receives decoded engine events. The registry is the production
// implementation.
type EventSink interface {
	Join(playerID, arenaID string) (bool, error)
	Leave(playerID string)
	HandleRegions(playerID string, regions []string)
	TriggerNextWave(playerID string) bool
	OnPlayerDeath(playerID string)
	OnMobDeath(correlationID, killerID string)
	OnSpawnFailed(correlationID string)
}

// Gateway owns the engine websocket. Commands issued while no engine is
// connected fail with Unavailable; the arena core treats those like any
// other engine fault (logged, skipped).
type Gateway struct {
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conn   *websocket.Conn
	sink   EventSink
	mythic bool
	perms  map[string]bool
}

// New creates a gateway with no engine attached.
func New() *Gateway {
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		perms: make(map[string]bool),
	}
}

// Attach wires the event sink. Must be called before the engine connects;
// events arriving with no sink are dropped with a log entry.
func (g *Gateway) Attach(sink EventSink) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sink = sink
}

// ServeHTTP upgrades the engine connection. A new connection replaces any
// existing one; the engine side reconnects after restarts and the stale
// socket must not keep the slot occupied.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("engine websocket upgrade failed", "error", err)
		return
	}

	g.mu.Lock()
	if g.conn != nil {
		g.conn.Close()
	}
	g.conn = conn
	g.mythic = false
	g.perms = make(map[string]bool)
	g.mu.Unlock()

	slog.Info("engine connected", "remote", conn.RemoteAddr().String())
	g.readLoop(conn)
}

// readLoop decodes frames until the connection drops. Events are dispatched
// inline so the engine's event stream stays serialized, matching the
// single-threaded delivery the core's handlers assume.
func (g *Gateway) readLoop(conn *websocket.Conn) {
	defer func() {
		g.mu.Lock()
		if g.conn == conn {
			g.conn = nil
			g.mythic = false
		}
		g.mu.Unlock()
		conn.Close()
		slog.Info("engine disconnected")
	}()

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("engine connection error", "error", err)
			}
			return
		}
		g.dispatch(frame)
	}
}

func (g *Gateway) dispatch(frame Frame) {
	g.mu.Lock()
	sink := g.sink
	g.mu.Unlock()
	if sink == nil {
		slog.Warn("dropping engine event, no sink attached", "type", frame.Type)
		return
	}

	switch frame.Type {
	case eventHello:
		var ev helloEvent
		if !decode(frame, &ev) {
			return
		}
		g.mu.Lock()
		g.mythic = ev.MythicAvailable
		g.mu.Unlock()
		slog.Info("engine hello",
			"engine_version", ev.EngineVersion,
			"mythic_available", ev.MythicAvailable,
		)

	case eventJoinRequest:
		var ev joinRequestEvent
		if !decode(frame, &ev) {
			return
		}
		g.mu.Lock()
		g.perms[permKey(ev.PlayerID, "hordes.join."+ev.ArenaID)] = ev.HasPermission
		g.mu.Unlock()
		if _, err := sink.Join(ev.PlayerID, ev.ArenaID); err != nil {
			slog.Warn("join request failed",
				"player_id", ev.PlayerID,
				"arena_id", ev.ArenaID,
				"error", err,
			)
		}

	case eventPlayerLeave:
		var ev playerEvent
		if !decode(frame, &ev) {
			return
		}
		sink.Leave(ev.PlayerID)

	case eventPlayerDeath:
		var ev playerEvent
		if !decode(frame, &ev) {
			return
		}
		sink.OnPlayerDeath(ev.PlayerID)

	case eventPlayerMove:
		var ev playerMoveEvent
		if !decode(frame, &ev) {
			return
		}
		sink.HandleRegions(ev.PlayerID, ev.Regions)

	case eventMobDeath:
		var ev mobDeathEvent
		if !decode(frame, &ev) {
			return
		}
		sink.OnMobDeath(ev.CorrelationID, ev.KillerID)

	case eventNextWave:
		var ev playerEvent
		if !decode(frame, &ev) {
			return
		}
		if !sink.TriggerNextWave(ev.PlayerID) {
			slog.Debug("next wave trigger ignored", "player_id", ev.PlayerID)
		}

	case eventSpawnResult:
		var ev spawnResultEvent
		if !decode(frame, &ev) {
			return
		}
		if !ev.Success {
			slog.Warn("engine reported spawn failure",
				"correlation_id", ev.CorrelationID,
				"error", ev.Error,
			)
			sink.OnSpawnFailed(ev.CorrelationID)
		}

	default:
		slog.Warn("unknown engine event", "type", frame.Type)
	}
}

func decode(frame Frame, out any) bool {
	if err := json.Unmarshal(frame.Data, out); err != nil {
		slog.Warn("malformed engine event", "type", frame.Type, "error", err)
		return false
	}
	return true
}

func permKey(playerID, node string) string {
	return playerID + "\x00" + node
}

// send marshals and writes one command frame. The connection write is
// serialized under the gateway mutex.
func (g *Gateway) send(frameType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "marshal %s command", frameType)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return errors.Unavailable("engine is not connected")
	}
	if err := g.conn.WriteJSON(Frame{Type: frameType, Data: data}); err != nil {
		return errors.Wrapf(err, "write %s command", frameType)
	}
	return nil
}

// MythicAvailable reports whether the connected engine advertised the
// third-party mob framework. Used as the mythic backend's availability
// probe.
func (g *Gateway) MythicAvailable() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn != nil && g.mythic
}

// Connected reports whether an engine connection is live.
func (g *Gateway) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn != nil
}

// Teleport implements engine.Adapter.
func (g *Gateway) Teleport(playerID string, loc entities.Location) error {
	return g.send(cmdTeleport, teleportCommand{PlayerID: playerID, Location: loc})
}

// SetGameMode implements engine.Adapter.
func (g *Gateway) SetGameMode(playerID, mode string) error {
	return g.send(cmdGameMode, gameModeCommand{PlayerID: playerID, Mode: mode})
}

// SetSpectator implements engine.Adapter.
func (g *Gateway) SetSpectator(playerID string) error {
	return g.send(cmdSpectate, playerCommand{PlayerID: playerID})
}

// Heal implements engine.Adapter.
func (g *Gateway) Heal(playerID string) error {
	return g.send(cmdHeal, playerCommand{PlayerID: playerID})
}

// ClearInventory implements engine.Adapter.
func (g *Gateway) ClearInventory(playerID string) error {
	return g.send(cmdClearInventory, playerCommand{PlayerID: playerID})
}

// SaveState implements engine.Adapter.
func (g *Gateway) SaveState(playerID string) error {
	return g.send(cmdSaveState, playerCommand{PlayerID: playerID})
}

// RestoreState implements engine.Adapter.
func (g *Gateway) RestoreState(playerID string) error {
	return g.send(cmdRestoreState, playerCommand{PlayerID: playerID})
}

// Send implements engine.Messenger. Delivery failures are logged; chat is
// best effort.
func (g *Gateway) Send(playerID, message string) {
	if err := g.send(cmdMessage, messageCommand{PlayerID: playerID, Text: message}); err != nil {
		slog.Warn("failed to send message", "player_id", playerID, "error", err)
	}
}

// Broadcast implements engine.Messenger.
func (g *Gateway) Broadcast(playerIDs []string, message string) {
	if err := g.send(cmdBroadcast, broadcastCommand{PlayerIDs: playerIDs, Text: message}); err != nil {
		slog.Warn("failed to broadcast message", "error", err)
	}
}

// HasPermission implements engine.PermissionChecker from the permission
// answers the engine attaches to join requests. Nodes the engine never
// reported default to allowed; the engine side is the authoritative
// enforcement point.
func (g *Gateway) HasPermission(playerID, node string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	allowed, ok := g.perms[permKey(playerID, node)]
	if !ok {
		return true
	}
	return allowed
}

// Dispatch implements engine.RewardDispatcher by running the command on the
// engine console as the player context.
func (g *Gateway) Dispatch(playerID, command string) error {
	return g.send(cmdRunCommand, runCommandCommand{PlayerID: playerID, Command: command})
}

// VanillaBackend returns the spawn backend for engine-native mobs.
func (g *Gateway) VanillaBackend() spawn.Backend {
	return &wireBackend{gateway: g, backend: string(entities.BackendVanilla)}
}

// MythicDelegate returns the raw wire backend for framework mobs, intended
// to be wrapped by spawn.NewMythicBackend with MythicAvailable as the
// probe.
func (g *Gateway) MythicDelegate() spawn.Backend {
	return &wireBackend{gateway: g, backend: string(entities.BackendMythic)}
}

// wireBackend sends spawn/remove commands over the engine connection. The
// wire is asynchronous: a successful write is treated as a successful spawn
// and the engine reports real failures later via spawn_result events.
type wireBackend struct {
	gateway *Gateway
	backend string
}

func (b *wireBackend) Spawn(ctx context.Context, req *spawn.Request) error {
	return b.gateway.send(cmdSpawnMob, spawnMobCommand{
		CorrelationID:    req.CorrelationID,
		Backend:          b.backend,
		MobType:          req.MobType,
		Location:         req.Location,
		HealthMultiplier: req.HealthMultiplier,
		DamageMultiplier: req.DamageMultiplier,
		DisplayName:      req.DisplayName,
	})
}

func (b *wireBackend) Remove(ctx context.Context, correlationID string) error {
	return b.gateway.send(cmdRemoveEntity, removeEntityCommand{CorrelationID: correlationID})
}
