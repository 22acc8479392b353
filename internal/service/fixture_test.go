package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/economy"
	"habitquest/internal/store"
	"habitquest/internal/store/memory"
)

// Monday morning.
var testStart = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	InitJWT("test-secret", time.Hour)
	os.Exit(m.Run())
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	clock *clock.FakeClock
	deps  *Deps

	auth       *AuthService
	habits     *HabitService
	dailies    *DailyService
	todos      *TodoService
	rewards    *RewardService
	groups     *GroupService
	challenges *ChallengeService
	pets       *PetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	clk := clock.NewFakeClock(testStart)
	return newFixtureWith(t, st, clk, nil)
}

func newFixtureWith(t *testing.T, st store.Store, clk *clock.FakeClock, b MessageBroadcaster) *fixture {
	t.Helper()
	deps := NewDeps(st, economy.Default(), clk)
	auth := NewAuthService(deps)
	auth.HashCost = bcrypt.MinCost

	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		clock:      clk,
		deps:       deps,
		auth:       auth,
		habits:     NewHabitService(deps),
		dailies:    NewDailyService(deps),
		todos:      NewTodoService(deps),
		rewards:    NewRewardService(deps),
		groups:     NewGroupService(deps, b),
		challenges: NewChallengeService(deps),
		pets:       NewPetService(deps, nil, 0),
	}
	if m, ok := st.(*memory.Store); ok {
		f.store = m
	}
	return f
}

func (f *fixture) register(name string) *domain.User {
	f.t.Helper()
	res, err := f.auth.Register(f.ctx, RegisterInput{
		Email:    name + "@example.com",
		Username: name,
		Password: "password123",
	})
	require.NoError(f.t, err)
	return res.User
}

// adjust moves gold directly, bypassing the ledger.
func (f *fixture) adjust(userID uuid.UUID, delta int64) {
	f.t.Helper()
	err := f.deps.Store.RunInTx(f.ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AdjustBalance(ctx, userID, delta, 0)
		return err
	})
	require.NoError(f.t, err)
}

func (f *fixture) gold(userID uuid.UUID) int64 {
	f.t.Helper()
	p, err := f.auth.Profile(f.ctx, userID)
	require.NoError(f.t, err)
	return p.User.Gold
}

func (f *fixture) pet(userID uuid.UUID) *domain.Pet {
	f.t.Helper()
	p, err := f.pets.Get(f.ctx, userID)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) ledger(userID uuid.UUID) []*domain.Transaction {
	f.t.Helper()
	txs, err := f.auth.Transactions(f.ctx, userID, 100)
	require.NoError(f.t, err)
	return txs
}

func requireKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "error: %v", err)
}

func ptr[T any](v T) *T { return &v }
