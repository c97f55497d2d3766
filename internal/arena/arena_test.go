package arena_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bixgamer707/hordes/internal/arena"
	"github.com/bixgamer707/hordes/internal/cooldown"
	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/messages"
	"github.com/bixgamer707/hordes/internal/pkg/idgen"
	"github.com/bixgamer707/hordes/internal/pkg/scheduler"
	"github.com/bixgamer707/hordes/internal/spawn"
	"github.com/bixgamer707/hordes/internal/stats"
)

// fakeEngine counts adapter calls per method and never fails.
type fakeEngine struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{calls: make(map[string]int)}
}

func (e *fakeEngine) count(method, playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[method+":"+playerID]++
}

func (e *fakeEngine) countOf(method, playerID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[method+":"+playerID]
}

func (e *fakeEngine) Teleport(playerID string, loc entities.Location) error {
	e.count("teleport", playerID)
	return nil
}
func (e *fakeEngine) SetGameMode(playerID, mode string) error {
	e.count("gamemode", playerID)
	return nil
}
func (e *fakeEngine) SetSpectator(playerID string) error {
	e.count("spectate", playerID)
	return nil
}
func (e *fakeEngine) Heal(playerID string) error {
	e.count("heal", playerID)
	return nil
}
func (e *fakeEngine) ClearInventory(playerID string) error {
	e.count("clear", playerID)
	return nil
}
func (e *fakeEngine) SaveState(playerID string) error {
	e.count("save", playerID)
	return nil
}
func (e *fakeEngine) RestoreState(playerID string) error {
	e.count("restore", playerID)
	return nil
}

// fakeMessenger records rendered copy. With an empty template map the
// renderer returns keys verbatim, so assertions match on message keys.
type fakeMessenger struct {
	mu         sync.Mutex
	direct     map[string][]string
	broadcasts []string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{direct: make(map[string][]string)}
}

func (m *fakeMessenger) Send(playerID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direct[playerID] = append(m.direct[playerID], message)
}

func (m *fakeMessenger) Broadcast(playerIDs []string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, message)
}

func (m *fakeMessenger) lastDirect(playerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.direct[playerID]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (m *fakeMessenger) broadcastCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.broadcasts {
		if b == prefix {
			n++
		}
	}
	return n
}

type fakePermissions struct {
	mu   sync.Mutex
	deny map[string]bool
}

func (p *fakePermissions) HasPermission(playerID, node string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.deny[playerID]
}

type fakeRewards struct {
	mu       sync.Mutex
	commands []string
}

func (r *fakeRewards) Dispatch(playerID, command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, playerID+"|"+command)
	return nil
}

func (r *fakeRewards) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// captureRecorder applies events synchronously into a slice so tests can
// assert on exact event streams.
type captureRecorder struct {
	mu     sync.Mutex
	events []stats.Event
}

func (c *captureRecorder) Record(event stats.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureRecorder) countOf(t stats.EventType, playerID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Type == t && (playerID == "" || e.PlayerID == playerID) {
			n++
		}
	}
	return n
}

// fakeBackend is a controllable spawn backend.
type fakeBackend struct {
	mu      sync.Mutex
	fail    bool
	spawned []string
	removed []string
}

func (b *fakeBackend) Spawn(ctx context.Context, req *spawn.Request) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.Unavailable("backend down")
	}
	b.spawned = append(b.spawned, req.CorrelationID)
	return nil
}

func (b *fakeBackend) Remove(ctx context.Context, correlationID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, correlationID)
	return nil
}

func (b *fakeBackend) spawnedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.spawned...)
}

func (b *fakeBackend) removedIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.removed...)
}

type ArenaTestSuite struct {
	suite.Suite

	sched     *scheduler.Manual
	eng       *fakeEngine
	msgs      *fakeMessenger
	perms     *fakePermissions
	rewards   *fakeRewards
	recorder  *captureRecorder
	ledger    *cooldown.Ledger
	backend   *fakeBackend
	coord     *spawn.Coordinator
	released  []string
	releaseMu sync.Mutex
}

func (s *ArenaTestSuite) SetupTest() {
	s.sched = scheduler.NewManual(time.Unix(1000, 0))
	s.eng = newFakeEngine()
	s.msgs = newFakeMessenger()
	s.perms = &fakePermissions{deny: make(map[string]bool)}
	s.rewards = &fakeRewards{}
	s.recorder = &captureRecorder{}
	s.ledger = cooldown.NewLedger(s.sched)
	s.backend = &fakeBackend{}
	s.released = nil

	coord, err := spawn.NewCoordinator(&spawn.Config{
		Backends:    map[entities.SpawnBackend]spawn.Backend{entities.BackendVanilla: s.backend},
		IDGenerator: idgen.NewSequential("mob-"),
	})
	s.Require().NoError(err)
	s.coord = coord
}

func TestArenaSuite(t *testing.T) {
	suite.Run(t, new(ArenaTestSuite))
}

func loc(x float64) entities.Location {
	return entities.Location{World: "world", X: x, Y: 64, Z: 0}
}

func (s *ArenaTestSuite) definition() *entities.ArenaDefinition {
	return &entities.ArenaDefinition{
		ID:               "castle",
		Enabled:          true,
		MinPlayers:       2,
		MaxPlayers:       4,
		Countdown:        5 * time.Second,
		AutoStart:        true,
		DeathAction:      entities.DeathActionRespawn,
		DeathActionDelay: 3 * time.Second,
		Progression:      entities.ProgressionAutomatic,
		WaveDelay:        2 * time.Second,
		RewardMode:       entities.RewardAllWaves,
		RewardMultiplier: 1.5,
		WaveRewards:      []string{"give {player} gold {wave}"},
		VictoryRewards:   []string{"crown {player}"},
		SaveInventory:    true,
		Lobby:            loc(0),
		Spawn:            loc(10),
		Exit:             loc(20),
		Cooldown:         10 * time.Minute,
		EndGrace:         5 * time.Second,
		Waves: []entities.WaveDefinition{
			{
				Mobs:          []entities.MobEntry{{Backend: entities.BackendVanilla, MobType: "zombie", Count: 3}},
				SpawnInterval: time.Second,
				MobsPerCycle:  1,
			},
			{
				Mobs:          []entities.MobEntry{{Backend: entities.BackendVanilla, MobType: "skeleton", Count: 2}},
				SpawnInterval: time.Second,
				MobsPerCycle:  2,
			},
		},
	}
}

func (s *ArenaTestSuite) newArena(def *entities.ArenaDefinition) *arena.Arena {
	a, err := arena.New(&arena.Config{
		Definition:  def,
		Engine:      s.eng,
		Messenger:   s.msgs,
		Permissions: s.perms,
		Rewards:     s.rewards,
		Renderer:    messages.NewTemplateRenderer(nil),
		Spawner:     s.coord,
		Cooldowns:   s.ledger,
		Stats:       s.recorder,
		Scheduler:   s.sched,
		Clock:       s.sched,
		OnPlayerReleased: func(playerID string) {
			s.releaseMu.Lock()
			s.released = append(s.released, playerID)
			s.releaseMu.Unlock()
		},
	})
	s.Require().NoError(err)
	return a
}

// startGame joins both players and runs down the countdown.
func (s *ArenaTestSuite) startGame(a *arena.Arena, players ...string) {
	for _, p := range players {
		s.Require().True(a.Join(p))
	}
	s.Require().Equal(entities.ArenaStateStarting, a.State())
	s.sched.Advance(5 * time.Second)
	s.Require().Equal(entities.ArenaStateActive, a.State())
}

func (s *ArenaTestSuite) TestJoinRejectedWhenDisabled() {
	def := s.definition()
	def.Enabled = false
	a := s.newArena(def)

	s.False(a.Join("steve"))
	s.Equal("join.disabled", s.msgs.lastDirect("steve"))
	s.Equal(entities.ArenaStateDisabled, a.State())
}

func (s *ArenaTestSuite) TestJoinRejectedWhenAlreadyIn() {
	a := s.newArena(s.definition())

	s.True(a.Join("steve"))
	s.False(a.Join("steve"))
	s.Equal("join.already-in", s.msgs.lastDirect("steve"))
}

func (s *ArenaTestSuite) TestJoinRejectedWhenFull() {
	def := s.definition()
	def.AutoStart = false
	a := s.newArena(def)

	for i := 0; i < def.MaxPlayers; i++ {
		s.True(a.Join(fmt.Sprintf("p%d", i)))
	}
	s.False(a.Join("late"))
	s.Equal("join.full", s.msgs.lastDirect("late"))
}

func (s *ArenaTestSuite) TestJoinRejectedOnCooldown() {
	a := s.newArena(s.definition())
	s.ledger.SetArena("steve", "castle", time.Minute)

	s.False(a.Join("steve"))
	s.Equal("join.cooldown", s.msgs.lastDirect("steve"))
}

func (s *ArenaTestSuite) TestJoinRejectedWithoutPermission() {
	a := s.newArena(s.definition())
	s.perms.deny["steve"] = true

	s.False(a.Join("steve"))
	s.Equal("join.no-permission", s.msgs.lastDirect("steve"))
}

func (s *ArenaTestSuite) TestJoinRejectedWhileActive() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")

	s.False(a.Join("late"))
	s.Equal("join.not-joinable", s.msgs.lastDirect("late"))
}

func (s *ArenaTestSuite) TestCountdownStartsAtMinAndCancelsBelowMin() {
	a := s.newArena(s.definition())

	s.True(a.Join("steve"))
	s.Equal(entities.ArenaStateWaiting, a.State())

	s.True(a.Join("alex"))
	s.Equal(entities.ArenaStateStarting, a.State())
	s.Equal(1, s.msgs.broadcastCount("countdown.started"))

	a.Leave("alex")
	s.Equal(entities.ArenaStateWaiting, a.State())
	s.Equal(1, s.msgs.broadcastCount("countdown.cancelled"))

	// countdown restarts cleanly and runs to activation
	s.True(a.Join("alex"))
	s.Equal(entities.ArenaStateStarting, a.State())
	s.sched.Advance(5 * time.Second)
	s.Equal(entities.ArenaStateActive, a.State())
	s.Equal(1, s.msgs.broadcastCount("game.started"))
}

func (s *ArenaTestSuite) TestLeaveAboveMinKeepsCountdownRunning() {
	a := s.newArena(s.definition())

	s.True(a.Join("steve"))
	s.True(a.Join("alex"))
	s.True(a.Join("herobrine"))
	s.Equal(entities.ArenaStateStarting, a.State())

	a.Leave("herobrine")
	s.Equal(entities.ArenaStateStarting, a.State())

	s.sched.Advance(5 * time.Second)
	s.Equal(entities.ArenaStateActive, a.State())
}

func (s *ArenaTestSuite) TestWaveSpawnCadence() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")

	// first cycle fires on activation, then one mob per second
	s.Len(s.backend.spawnedIDs(), 1)
	s.sched.Advance(time.Second)
	s.Len(s.backend.spawnedIDs(), 2)
	s.sched.Advance(time.Second)
	s.Len(s.backend.spawnedIDs(), 3)

	// queue exhausted; no further spawns
	s.sched.Advance(5 * time.Second)
	s.Len(s.backend.spawnedIDs(), 3)
}

func (s *ArenaTestSuite) TestWaveCompletionAdvancesAfterDelay() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "steve")
	}
	s.Equal(1, s.msgs.broadcastCount("wave.complete"))
	s.Equal(3, s.recorder.countOf(stats.EventKill, "steve"))
	s.Equal(1, s.msgs.broadcastCount("wave.start"))

	// wave 2 starts after the configured delay and spawns both mobs in
	// its first cycle
	s.sched.Advance(2 * time.Second)
	s.Equal(2, s.msgs.broadcastCount("wave.start"))
	s.Len(s.backend.spawnedIDs(), 5)
}

func (s *ArenaTestSuite) TestProgressiveRewardsAfterWave() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "")
	}

	cmds := s.rewards.all()
	s.Contains(cmds, "steve|give steve gold 1")
	s.Contains(cmds, "alex|give alex gold 1")
}

func (s *ArenaTestSuite) TestCompletionOnlySkipsWaveRewards() {
	def := s.definition()
	def.RewardMode = entities.RewardCompletionOnly
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "")
	}

	s.Empty(s.rewards.all())
}

func (s *ArenaTestSuite) TestVictoryEndsGameAndAppliesCooldown() {
	def := s.definition()
	def.Waves = def.Waves[:1]
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "steve")
	}

	s.Equal(entities.ArenaStateEnding, a.State())
	s.Equal(1, s.msgs.broadcastCount("game.victory"))
	s.Equal(1, s.recorder.countOf(stats.EventCompletion, "steve"))
	s.Equal(1, s.recorder.countOf(stats.EventCompletion, "alex"))
	s.Contains(s.rewards.all(), "steve|crown steve")
	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.False(s.ledger.HasCooldown("steve", "other"))

	// grace period expires, everyone is evicted and the arena resets
	s.sched.Advance(5 * time.Second)
	s.Equal(entities.ArenaStateWaiting, a.State())
	s.Empty(a.Participants())
	s.releaseMu.Lock()
	s.ElementsMatch([]string{"steve", "alex"}, s.released)
	s.releaseMu.Unlock()
}

func (s *ArenaTestSuite) TestGlobalCooldownBlocksEveryArena() {
	def := s.definition()
	def.Waves = def.Waves[:1]
	def.GlobalCooldown = true
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "")
	}

	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.True(s.ledger.HasCooldown("steve", "any-other-arena"))
}

func (s *ArenaTestSuite) TestRespawnReturnsPlayerToCombat() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")

	a.OnPlayerDeath("steve")
	s.Equal(1, s.recorder.countOf(stats.EventDeath, "steve"))
	s.Equal(entities.ArenaStateActive, a.State())

	// one heal from the join, one from the respawn
	s.sched.Advance(3 * time.Second)
	s.Equal("player.respawn", s.msgs.lastDirect("steve"))
	s.Equal(2, s.eng.countOf("heal", "steve"))

	// a second death after respawning proves the live set was restored
	a.OnPlayerDeath("steve")
	s.Equal(2, s.recorder.countOf(stats.EventDeath, "steve"))
}

func (s *ArenaTestSuite) TestDuplicateDeathIgnored() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")

	a.OnPlayerDeath("steve")
	a.OnPlayerDeath("steve")
	s.Equal(1, s.recorder.countOf(stats.EventDeath, "steve"))
}

func (s *ArenaTestSuite) TestDefeatPreemptsScheduledRespawn() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)
	spawnedBefore := s.backend.spawnedIDs()

	a.OnPlayerDeath("steve")
	a.OnPlayerDeath("alex")

	// last death empties the live set: immediate defeat, wave cleaned up
	s.Equal(entities.ArenaStateEnding, a.State())
	s.Equal(1, s.msgs.broadcastCount("game.defeat"))
	s.ElementsMatch(spawnedBefore, s.backend.removedIDs())

	// the respawn scheduled for steve must not fire during the grace; the
	// only heal on record is the one from the join
	s.sched.Advance(3 * time.Second)
	s.Equal(1, s.eng.countOf("heal", "steve"))
	s.Equal(entities.ArenaStateEnding, a.State())

	s.sched.Advance(2 * time.Second)
	s.Equal(entities.ArenaStateWaiting, a.State())
	s.Empty(a.Participants())
}

func (s *ArenaTestSuite) TestSpectateDeathAction() {
	def := s.definition()
	def.DeathAction = entities.DeathActionSpectate
	def.DeathActionDelay = time.Second
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")

	a.OnPlayerDeath("steve")
	s.sched.Advance(time.Second)

	s.Equal(1, s.eng.countOf("spectate", "steve"))
	s.Equal("player.spectating", s.msgs.lastDirect("steve"))
	// spectators do not refill the live set; the other death still ends it
	a.OnPlayerDeath("alex")
	s.Equal(entities.ArenaStateEnding, a.State())
}

func (s *ArenaTestSuite) TestKickDeathActionRemovesPlayer() {
	def := s.definition()
	def.DeathAction = entities.DeathActionKick
	def.DeathActionDelay = 2 * time.Second
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")

	a.OnPlayerDeath("steve")
	s.True(a.HasParticipant("steve"))

	s.sched.Advance(2 * time.Second)
	s.False(a.HasParticipant("steve"))
	s.Equal(1, s.eng.countOf("restore", "steve"))
}

func (s *ArenaTestSuite) TestRejoinDeathActionInstallsTemporaryCooldown() {
	def := s.definition()
	def.DeathAction = entities.DeathActionRejoin
	def.RejoinCooldown = 30 * time.Second
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")

	a.OnPlayerDeath("steve")
	s.False(a.HasParticipant("steve"))
	s.True(s.ledger.HasCooldown("steve", "castle"))

	s.sched.Advance(30 * time.Second)
	s.False(s.ledger.HasCooldown("steve", "castle"))
}

func (s *ArenaTestSuite) TestManualProgressionWaitsForTrigger() {
	def := s.definition()
	def.Progression = entities.ProgressionManual
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)

	for _, id := range s.backend.spawnedIDs() {
		a.OnMobDeath(id, "")
	}
	s.Equal(1, s.msgs.broadcastCount("wave.awaiting"))

	// time alone never advances a manual arena
	s.sched.Advance(time.Minute)
	s.Len(s.backend.spawnedIDs(), 3)

	s.True(a.TriggerNextWave())
	s.Len(s.backend.spawnedIDs(), 5)
	s.False(a.TriggerNextWave())
}

func (s *ArenaTestSuite) TestStrayMobDeathIgnored() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")

	a.OnMobDeath("mob-999", "steve")
	s.Equal(0, s.recorder.countOf(stats.EventKill, "steve"))
	s.Equal(0, s.msgs.broadcastCount("wave.complete"))
}

func (s *ArenaTestSuite) TestAllSpawnsFailingStillCompletesWave() {
	def := s.definition()
	def.Waves = def.Waves[:1]
	s.backend.fail = true
	a := s.newArena(def)
	s.startGame(a, "steve", "alex")

	// cycles keep running and failing; once the queue drains the wave
	// completes off the empty census instead of deadlocking
	s.sched.Advance(2 * time.Second)
	s.Equal(1, s.msgs.broadcastCount("wave.complete"))
	s.Equal(entities.ArenaStateEnding, a.State())
}

func (s *ArenaTestSuite) TestForceStartRequiresWaitingWithPlayers() {
	def := s.definition()
	def.AutoStart = false
	a := s.newArena(def)

	err := a.ForceStart()
	s.Require().Error(err)

	s.True(a.Join("steve"))
	s.Require().NoError(a.ForceStart())
	s.Equal(entities.ArenaStateStarting, a.State())

	err = a.ForceStart()
	s.Require().Error(err)
}

func (s *ArenaTestSuite) TestForceStopDuringCountdown() {
	a := s.newArena(s.definition())
	s.True(a.Join("steve"))
	s.True(a.Join("alex"))
	s.Equal(entities.ArenaStateStarting, a.State())

	s.Require().NoError(a.ForceStop())
	s.Equal(entities.ArenaStateWaiting, a.State())
	s.Empty(a.Participants())

	// the old countdown must not fire against the reset arena
	s.sched.Advance(time.Minute)
	s.Equal(entities.ArenaStateWaiting, a.State())
}

func (s *ArenaTestSuite) TestForceStopDuringGameCleansUpMobs() {
	a := s.newArena(s.definition())
	s.startGame(a, "steve", "alex")
	s.sched.Advance(2 * time.Second)
	spawned := s.backend.spawnedIDs()

	s.Require().NoError(a.ForceStop())
	s.Equal(entities.ArenaStateWaiting, a.State())
	s.Empty(a.Participants())
	s.ElementsMatch(spawned, s.backend.removedIDs())
	s.Equal(0, s.coord.TrackedCount())
}

func (s *ArenaTestSuite) TestSnapshotReflectsLifecycle() {
	a := s.newArena(s.definition())
	snap := a.Snapshot()
	s.Equal(entities.ArenaStateWaiting, snap.State)
	s.Equal(0, snap.Players)

	s.startGame(a, "steve", "alex")
	snap = a.Snapshot()
	s.Equal(entities.ArenaStateActive, snap.State)
	s.Equal(2, snap.Players)
	s.Equal(1, snap.CurrentWave)
	s.Equal(2, snap.TotalWaves)
	s.Equal(1, snap.MobsAlive)
}

func (s *ArenaTestSuite) TestPlaytimeRecordedOnLeave() {
	a := s.newArena(s.definition())
	s.True(a.Join("steve"))
	s.sched.Advance(time.Minute)

	a.Leave("steve")
	s.Equal(1, s.recorder.countOf(stats.EventPlaytime, "steve"))
}
