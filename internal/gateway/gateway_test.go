package gateway_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/gateway"
)

type recordedCall struct {
	Method string
	Args   []string
}

type recordingSink struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (s *recordingSink) record(method string, args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordedCall{Method: method, Args: args})
}

func (s *recordingSink) Join(playerID, arenaID string) (bool, error) {
	s.record("join", playerID, arenaID)
	return true, nil
}
func (s *recordingSink) Leave(playerID string) { s.record("leave", playerID) }
func (s *recordingSink) HandleRegions(playerID string, regions []string) {
	s.record("regions", append([]string{playerID}, regions...)...)
}
func (s *recordingSink) TriggerNextWave(playerID string) bool {
	s.record("next_wave", playerID)
	return true
}
func (s *recordingSink) OnPlayerDeath(playerID string) { s.record("player_death", playerID) }
func (s *recordingSink) OnMobDeath(correlationID, killerID string) {
	s.record("mob_death", correlationID, killerID)
}
func (s *recordingSink) OnSpawnFailed(correlationID string) {
	s.record("spawn_failed", correlationID)
}

func (s *recordingSink) has(method string, args ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c.Method != method || len(c.Args) != len(args) {
			continue
		}
		match := true
		for i := range args {
			if c.Args[i] != args[i] {
				match = false
			}
		}
		if match {
			return true
		}
	}
	return false
}

func dialGateway(t *testing.T) (*gateway.Gateway, *recordingSink, *websocket.Conn) {
	t.Helper()

	g := gateway.New()
	sink := &recordingSink{}
	g.Attach(sink)

	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return g, sink, conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(gateway.Frame{Type: frameType, Data: data}))
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestGatewayRoutesEvents(t *testing.T) {
	_, sink, conn := dialGateway(t)

	sendEvent(t, conn, "player_join_request", map[string]any{
		"player_id": "steve", "arena_id": "castle", "has_permission": true,
	})
	eventually(t, func() bool { return sink.has("join", "steve", "castle") })

	sendEvent(t, conn, "player_leave", map[string]any{"player_id": "steve"})
	eventually(t, func() bool { return sink.has("leave", "steve") })

	sendEvent(t, conn, "player_death", map[string]any{"player_id": "steve"})
	eventually(t, func() bool { return sink.has("player_death", "steve") })

	sendEvent(t, conn, "player_move", map[string]any{
		"player_id": "steve",
		"location":  map[string]any{"world": "world", "x": 1.0, "y": 64.0, "z": 2.0},
		"regions":   []string{"castle-grounds"},
	})
	eventually(t, func() bool { return sink.has("regions", "steve", "castle-grounds") })

	sendEvent(t, conn, "mob_death", map[string]any{
		"correlation_id": "mob-7", "killer_id": "steve",
	})
	eventually(t, func() bool { return sink.has("mob_death", "mob-7", "steve") })

	sendEvent(t, conn, "next_wave_request", map[string]any{"player_id": "steve"})
	eventually(t, func() bool { return sink.has("next_wave", "steve") })
}

func TestGatewaySpawnResultFailureOnly(t *testing.T) {
	_, sink, conn := dialGateway(t)

	sendEvent(t, conn, "spawn_result", map[string]any{"correlation_id": "mob-1", "success": true})
	sendEvent(t, conn, "spawn_result", map[string]any{
		"correlation_id": "mob-2", "success": false, "error": "unknown mob type",
	})

	eventually(t, func() bool { return sink.has("spawn_failed", "mob-2") })
	require.False(t, sink.has("spawn_failed", "mob-1"))
}

func TestGatewayCommandsReachEngine(t *testing.T) {
	g, _, conn := dialGateway(t)

	// the read loop must be up before we write
	eventually(t, func() bool { return g.Connected() })

	require.NoError(t, g.Teleport("steve", entities.Location{World: "world", X: 5, Y: 64}))
	g.Send("steve", "hello")

	var frame gateway.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "teleport", frame.Type)

	var tp struct {
		PlayerID string            `json:"player_id"`
		Location entities.Location `json:"location"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &tp))
	require.Equal(t, "steve", tp.PlayerID)
	require.Equal(t, 5.0, tp.Location.X)

	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "message", frame.Type)
}

func TestGatewayUnavailableWhenDisconnected(t *testing.T) {
	g := gateway.New()
	g.Attach(&recordingSink{})

	require.Error(t, g.Teleport("steve", entities.Location{World: "world"}))
	require.False(t, g.MythicAvailable())
}

func TestGatewayHelloAdvertisesMythic(t *testing.T) {
	g, _, conn := dialGateway(t)
	eventually(t, func() bool { return g.Connected() })
	require.False(t, g.MythicAvailable())

	sendEvent(t, conn, "hello", map[string]any{
		"engine_version": "1.21.4", "mythic_available": true,
	})
	eventually(t, func() bool { return g.MythicAvailable() })
}

func TestGatewayPermissionCache(t *testing.T) {
	g, sink, conn := dialGateway(t)

	sendEvent(t, conn, "player_join_request", map[string]any{
		"player_id": "steve", "arena_id": "castle", "has_permission": false,
	})
	eventually(t, func() bool { return sink.has("join", "steve", "castle") })

	require.False(t, g.HasPermission("steve", "hordes.join.castle"))
	// nodes the engine never reported default to allowed
	require.True(t, g.HasPermission("steve", "hordes.join.desert"))
	require.True(t, g.HasPermission("alex", "hordes.join.castle"))
}
