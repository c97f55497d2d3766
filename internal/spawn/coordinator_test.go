package spawn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/bixgamer707/hordes/internal/entities"
	"github.com/bixgamer707/hordes/internal/errors"
	"github.com/bixgamer707/hordes/internal/pkg/idgen"
	"github.com/bixgamer707/hordes/internal/spawn"
	spawnmock "github.com/bixgamer707/hordes/internal/spawn/mock"
)

type CoordinatorTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	vanilla *spawnmock.MockBackend
	coord   *spawn.Coordinator
	ctx     context.Context
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.vanilla = spawnmock.NewMockBackend(s.ctrl)
	s.ctx = context.Background()

	coord, err := spawn.NewCoordinator(&spawn.Config{
		Backends: map[entities.SpawnBackend]spawn.Backend{
			entities.BackendVanilla: s.vanilla,
		},
		IDGenerator: idgen.NewSequential("mob"),
	})
	s.Require().NoError(err)
	s.coord = coord
}

func (s *CoordinatorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) entry() entities.MobEntry {
	return entities.MobEntry{
		Backend:          entities.BackendVanilla,
		MobType:          "ZOMBIE",
		Count:            1,
		HealthMultiplier: 2.0,
		DamageMultiplier: 1.5,
		DisplayName:      "Gate Keeper",
	}
}

func (s *CoordinatorTestSuite) TestSpawnTagsProvenance() {
	loc := entities.Location{World: "arena", X: 1, Y: 64, Z: 1}

	s.vanilla.EXPECT().
		Spawn(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *spawn.Request) error {
			s.Equal("ZOMBIE", req.MobType)
			s.Equal(2.0, req.HealthMultiplier)
			s.Equal(1.5, req.DamageMultiplier)
			s.Equal("Gate Keeper", req.DisplayName)
			s.Equal(loc, req.Location)
			s.NotEmpty(req.CorrelationID)
			return nil
		})

	id, err := s.coord.Spawn(s.ctx, "castle", 3, s.entry(), loc)
	s.Require().NoError(err)

	prov, ok := s.coord.Lookup(id)
	s.Require().True(ok)
	s.Equal("castle", prov.ArenaID)
	s.Equal(3, prov.Wave)
	s.Equal(entities.BackendVanilla, prov.Backend)
	s.Equal(1, s.coord.TrackedCount())
}

func (s *CoordinatorTestSuite) TestSpawnFailureNotTracked() {
	s.vanilla.EXPECT().
		Spawn(s.ctx, gomock.Any()).
		Return(errors.Unavailable("backend rejected mob"))

	_, err := s.coord.Spawn(s.ctx, "castle", 1, s.entry(), entities.Location{World: "arena"})
	s.Require().Error(err)
	s.Equal(0, s.coord.TrackedCount())
}

func (s *CoordinatorTestSuite) TestSpawnUnknownBackend() {
	entry := s.entry()
	entry.Backend = entities.BackendMythic

	_, err := s.coord.Spawn(s.ctx, "castle", 1, entry, entities.Location{World: "arena"})
	s.Require().Error(err)
	s.True(errors.IsUnavailable(err))
}

func (s *CoordinatorTestSuite) TestDestroyIdempotent() {
	s.vanilla.EXPECT().Spawn(s.ctx, gomock.Any()).Return(nil)
	id, err := s.coord.Spawn(s.ctx, "castle", 1, s.entry(), entities.Location{World: "arena"})
	s.Require().NoError(err)

	// removal hits the backend exactly once
	s.vanilla.EXPECT().Remove(s.ctx, id).Return(nil)
	s.NoError(s.coord.Destroy(s.ctx, id))
	s.NoError(s.coord.Destroy(s.ctx, id))
	s.Equal(0, s.coord.TrackedCount())
}

func (s *CoordinatorTestSuite) TestForgetSkipsEngineRemoval() {
	s.vanilla.EXPECT().Spawn(s.ctx, gomock.Any()).Return(nil)
	id, err := s.coord.Spawn(s.ctx, "castle", 1, s.entry(), entities.Location{World: "arena"})
	s.Require().NoError(err)

	s.coord.Forget(id)
	_, ok := s.coord.Lookup(id)
	s.False(ok)

	// already forgotten, Destroy is a no-op
	s.NoError(s.coord.Destroy(s.ctx, id))
}

func TestMythicBackendDegradesWhenUnavailable(t *testing.T) {
	b := spawn.NewMythicBackend(nil, nil)

	err := b.Spawn(context.Background(), &spawn.Request{MobType: "SkeletonKing"})
	if !errors.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if err := b.Remove(context.Background(), "mob_1"); !errors.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestMythicBackendDelegatesWhenAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := spawnmock.NewMockBackend(ctrl)
	b := spawn.NewMythicBackend(delegate, func() bool { return true })

	req := &spawn.Request{CorrelationID: "mob_1", MobType: "SkeletonKing"}
	delegate.EXPECT().Spawn(gomock.Any(), req).Return(nil)

	if err := b.Spawn(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
