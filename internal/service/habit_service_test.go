package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/domain"
	"habitquest/internal/economy"
)

const day = 24 * time.Hour

func TestHabitNegativeLogOnHardHabit(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")

	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "No sugar", Difficulty: domain.DifficultyHard, Type: domain.HabitBoth})
	require.NoError(t, err)

	res, err := f.habits.Log(f.ctx, h.ID, user.ID, false, nil)
	require.NoError(t, err)

	assert.EqualValues(t, -20, res.GoldChange)
	assert.EqualValues(t, 80, f.gold(user.ID))
	assert.Equal(t, 85, f.pet(user.ID).Health)
	assert.Equal(t, 0, res.Habit.CurrentStreak)
	assert.Equal(t, 1, res.Habit.NegativeCounter)
	require.NotNil(t, res.Log.Completed)
	assert.False(t, *res.Log.Completed)
}

func TestHabitPenaltyStopsAtZeroGold(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	f.adjust(user.ID, -93)

	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Late night snacks", Difficulty: domain.DifficultyHard, Type: domain.HabitNegative})
	require.NoError(t, err)

	res, err := f.habits.Log(f.ctx, h.ID, user.ID, false, nil)
	require.NoError(t, err)
	assert.EqualValues(t, -7, res.GoldChange)
	assert.EqualValues(t, 0, f.gold(user.ID))
}

func TestHabitLogOncePerDay(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Stretch"})
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyEasy, h.Difficulty)
	assert.Equal(t, domain.HabitPositive, h.Type)

	res, err := f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.GoldChange)
	assert.EqualValues(t, 105, res.Gold)
	assert.Equal(t, 55, res.Pet.Happiness)

	f.clock.Advance(10 * time.Hour)
	_, err = f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	requireKind(t, err, domain.KindConflict)

	logs, err := f.habits.Logs(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.EqualValues(t, 105, f.gold(user.ID))
}

func TestHabitStreakResetsAfterGap(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Run"})
	require.NoError(t, err)

	res, err := f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.CurrentStreak)

	f.clock.Advance(day)
	res, err = f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Habit.CurrentStreak)

	f.clock.Advance(2 * day)
	res, err = f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.LongestStreak)
	assert.Equal(t, 3, res.Habit.PositiveCounter)
}

func TestHabitLogRejections(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	other := f.register("bob")

	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Read"})
	require.NoError(t, err)

	_, err = f.habits.Log(f.ctx, h.ID, user.ID, false, nil)
	requireKind(t, err, domain.KindBadRequest)

	_, err = f.habits.Log(f.ctx, h.ID, other.ID, true, nil)
	requireKind(t, err, domain.KindForbidden)

	_, err = f.habits.Update(f.ctx, h.ID, user.ID, HabitPatch{IsPaused: ptr(true)})
	require.NoError(t, err)
	_, err = f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	requireKind(t, err, domain.KindConflict)

	logs, err := f.habits.Logs(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestHabitUpdateRejectsDifficulty(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Read"})
	require.NoError(t, err)

	_, err = f.habits.Update(f.ctx, h.ID, user.ID, HabitPatch{TaskPatch: TaskPatch{
		Title:      ptr("Read more"),
		Difficulty: ptr(domain.DifficultyHard),
	}})
	requireKind(t, err, domain.KindForbidden)

	got, err := f.habits.Get(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read", got.Title)
	assert.Equal(t, domain.DifficultyEasy, got.Difficulty)

	got, err = f.habits.Update(f.ctx, h.ID, user.ID, HabitPatch{TaskPatch: TaskPatch{Title: ptr("Read more")}, Type: ptr(domain.HabitBoth)})
	require.NoError(t, err)
	assert.Equal(t, "Read more", got.Title)
	assert.Equal(t, domain.HabitBoth, got.Type)
}

func TestHabitUpgradeLocksGold(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Meditate"})
	require.NoError(t, err)

	res, err := f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, economy.ChangeUpgrade, res.Change.Mode)
	assert.EqualValues(t, 0, res.Change.Cost)
	require.NotNil(t, res.Change.LockedUntil)
	assert.Equal(t, testStart.Add(7*day), *res.Change.LockedUntil)
	assert.EqualValues(t, 100, res.Gold)

	log, err := f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, log.GoldChange)
	assert.EqualValues(t, 100, f.gold(user.ID))

	f.clock.Advance(8 * day)
	log, err = f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 20, log.GoldChange)
}

func TestHabitDowngradeCharges(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Swim", Difficulty: domain.DifficultyHard})
	require.NoError(t, err)

	_, err = f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyMedium)
	requireKind(t, err, domain.KindConflict)
	assert.EqualValues(t, 100, f.gold(user.ID))

	_, err = f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyHard)
	requireKind(t, err, domain.KindConflict)

	f.adjust(user.ID, 100)
	res, err := f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, economy.ChangeDowngrade, res.Change.Mode)
	assert.EqualValues(t, 150, res.Change.Cost)
	assert.EqualValues(t, 50, res.Gold)
	assert.Equal(t, domain.DifficultyMedium, res.Task.Base().Difficulty)

	txs := f.ledger(user.ID)
	assert.Equal(t, domain.TxDifficultyChange, txs[0].Type)
	assert.EqualValues(t, -150, txs[0].Amount)
}

func TestHabitDowngradeClearsLock(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Journal", Difficulty: domain.DifficultyEasy})
	require.NoError(t, err)

	_, err = f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyMedium)
	require.NoError(t, err)

	res, err := f.habits.PayToUpdate(f.ctx, h.ID, user.ID, domain.DifficultyEasy)
	require.NoError(t, err)
	assert.EqualValues(t, 100, res.Change.Cost)
	assert.Nil(t, res.Task.Base().GoldRewardLockedUntil)
	assert.EqualValues(t, 0, res.Gold)
}

func TestHabitPayToDeleteWithoutFunds(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	f.adjust(user.ID, -90)
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Climb", Difficulty: domain.DifficultyMedium})
	require.NoError(t, err)

	_, err = f.habits.PayToDelete(f.ctx, h.ID, user.ID)
	requireKind(t, err, domain.KindConflict)
	assert.EqualValues(t, 10, f.gold(user.ID))

	_, err = f.habits.Get(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
}

func TestHabitPayToDelete(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Walk"})
	require.NoError(t, err)

	quote, err := f.habits.DeletionQuote(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, economy.DeletePaid, quote.Mode)
	assert.EqualValues(t, 50, quote.Cost)
	assert.Equal(t, 10, quote.RequiredStreak)
	assert.True(t, quote.Affordable)

	err = f.habits.Remove(f.ctx, h.ID, user.ID)
	requireKind(t, err, domain.KindForbidden)

	res, err := f.habits.PayToDelete(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, economy.DeletePaid, res.Deletion.Mode)
	assert.EqualValues(t, 50, res.Gold)

	_, err = f.habits.Get(f.ctx, h.ID, user.ID)
	requireKind(t, err, domain.KindNotFound)
}

func TestHabitDeletionQuoteChecksBalance(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Walk"})
	require.NoError(t, err)
	f.adjust(user.ID, -80)

	quote, err := f.habits.DeletionQuote(f.ctx, h.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, economy.DeletePaid, quote.Mode)
	assert.EqualValues(t, 50, quote.Cost)
	assert.False(t, quote.Affordable)

	_, err = f.habits.PayToDelete(f.ctx, h.ID, user.ID)
	requireKind(t, err, domain.KindConflict)
	assert.EqualValues(t, 20, f.gold(user.ID))
}

func TestHabitFreeRemoveAfterStreak(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	h, err := f.habits.Create(f.ctx, user.ID, CreateHabitInput{Title: "Floss", Difficulty: domain.DifficultyTrivial})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.habits.Log(f.ctx, h.ID, user.ID, true, nil)
		require.NoError(t, err)
		f.clock.Advance(day)
	}
	before := f.gold(user.ID)

	require.NoError(t, f.habits.Remove(f.ctx, h.ID, user.ID))
	assert.Equal(t, before, f.gold(user.ID))

	remaining, err := f.habits.List(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
