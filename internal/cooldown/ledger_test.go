package cooldown_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/bixgamer707/hordes/internal/cooldown"
	mockclock "github.com/bixgamer707/hordes/internal/pkg/clock/mock"
)

type LedgerTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	clock  *mockclock.MockClock
	ledger *cooldown.Ledger
	now    time.Time
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.clock = mockclock.NewMockClock(s.ctrl)
	s.now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()
	s.ledger = cooldown.NewLedger(s.clock)
}

func (s *LedgerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) TestArenaCooldownExpiry() {
	s.ledger.SetArena("steve", "castle", time.Hour)

	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.False(s.ledger.HasCooldown("steve", "desert"), "per-arena cooldown must not leak to other arenas")
	s.False(s.ledger.HasCooldown("alex", "castle"))

	// still blocked one instant before expiry
	s.now = s.now.Add(time.Hour - time.Nanosecond)
	s.True(s.ledger.HasCooldown("steve", "castle"))

	// unblocked at the expiry instant
	s.now = s.now.Add(time.Nanosecond)
	s.False(s.ledger.HasCooldown("steve", "castle"))
}

func (s *LedgerTestSuite) TestGlobalCooldownBlocksEveryArena() {
	s.ledger.SetGlobal("steve", time.Hour)

	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.True(s.ledger.HasCooldown("steve", "desert"), "global cooldown applies to arenas the player never joined")
}

func (s *LedgerTestSuite) TestTemporaryCooldown() {
	s.ledger.SetTemporary("steve", "castle", 30*time.Second)

	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.False(s.ledger.HasCooldown("steve", "desert"))

	s.now = s.now.Add(31 * time.Second)
	s.False(s.ledger.HasCooldown("steve", "castle"))
}

func (s *LedgerTestSuite) TestSetOverwrites() {
	s.ledger.SetArena("steve", "castle", time.Hour)
	s.ledger.SetArena("steve", "castle", time.Minute)

	s.now = s.now.Add(2 * time.Minute)
	s.False(s.ledger.HasCooldown("steve", "castle"), "last write wins, cooldowns do not stack")
}

func (s *LedgerTestSuite) TestRemaining() {
	s.ledger.SetArena("steve", "castle", time.Minute)
	s.ledger.SetGlobal("steve", time.Hour)

	s.Equal(time.Hour, s.ledger.Remaining("steve", "castle"))
	s.Equal(time.Duration(0), s.ledger.Remaining("alex", "castle"))
}

func (s *LedgerTestSuite) TestLazyEvictionDoesNotRemoveValidEntries() {
	s.ledger.SetGlobal("steve", time.Minute)
	s.ledger.SetArena("steve", "castle", time.Hour)

	// the expired global entry is evicted by the lookup, the still-valid
	// arena entry keeps blocking
	s.now = s.now.Add(2 * time.Minute)
	s.True(s.ledger.HasCooldown("steve", "castle"))
	s.True(s.ledger.HasCooldown("steve", "castle"))
}

func (s *LedgerTestSuite) TestCleanupExpired() {
	s.ledger.SetGlobal("steve", time.Minute)
	s.ledger.SetArena("steve", "castle", time.Minute)
	s.ledger.SetTemporary("alex", "desert", time.Minute)
	s.ledger.SetArena("alex", "castle", time.Hour)

	s.now = s.now.Add(2 * time.Minute)
	s.Equal(3, s.ledger.CleanupExpired())
	s.Equal(0, s.ledger.CleanupExpired())
	s.True(s.ledger.HasCooldown("alex", "castle"))
}

func (s *LedgerTestSuite) TestClearPlayer() {
	s.ledger.SetGlobal("steve", time.Hour)
	s.ledger.SetArena("steve", "castle", time.Hour)
	s.ledger.SetTemporary("steve", "castle", time.Hour)
	s.ledger.SetArena("alex", "castle", time.Hour)

	s.ledger.ClearPlayer("steve")

	s.False(s.ledger.HasCooldown("steve", "castle"))
	s.True(s.ledger.HasCooldown("alex", "castle"))
}
