package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/domain"
)

var now = time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func habit(d domain.Difficulty, typ domain.HabitType) *domain.Habit {
	return &domain.Habit{TaskBase: domain.TaskBase{Difficulty: d}, Type: typ}
}

func TestHabitGoldByDifficulty(t *testing.T) {
	e := NewEngine(Default())
	cases := []struct {
		d    domain.Difficulty
		gold int64
	}{
		{domain.DifficultyTrivial, 2},
		{domain.DifficultyEasy, 5},
		{domain.DifficultyMedium, 10},
		{domain.DifficultyHard, 20},
	}
	for _, tc := range cases {
		t.Run(string(tc.d), func(t *testing.T) {
			out, err := e.EvaluateHabitLog(habit(tc.d, domain.HabitPositive), true, nil, 0, now)
			require.NoError(t, err)
			assert.Equal(t, tc.gold, out.Gold)
			assert.Equal(t, 5, out.Happiness)
			assert.Equal(t, 1, out.CurrentStreak)
			assert.Equal(t, 1, out.PositiveCounter)
		})
	}
}

func TestHabitStreak(t *testing.T) {
	e := NewEngine(Default())
	h := habit(domain.DifficultyEasy, domain.HabitPositive)
	h.CurrentStreak = 4
	h.LongestStreak = 9

	out, err := e.EvaluateHabitLog(h, true, ptr(now.AddDate(0, 0, -1)), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 5, out.CurrentStreak)
	assert.Equal(t, 9, out.LongestStreak)

	// a skipped day resets the streak
	out, err = e.EvaluateHabitLog(h, true, ptr(now.AddDate(0, 0, -2)), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 1, out.CurrentStreak)

	h.CurrentStreak = 9
	out, err = e.EvaluateHabitLog(h, true, ptr(now.AddDate(0, 0, -1)), 0, now)
	require.NoError(t, err)
	assert.Equal(t, 10, out.LongestStreak)
}

func TestHabitSameDayRejected(t *testing.T) {
	e := NewEngine(Default())
	_, err := e.EvaluateHabitLog(habit(domain.DifficultyEasy, domain.HabitBoth), true, ptr(now.Add(-time.Hour)), 0, now)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestHabitPaused(t *testing.T) {
	e := NewEngine(Default())
	h := habit(domain.DifficultyEasy, domain.HabitPositive)
	h.IsPaused = true
	_, err := e.EvaluateHabitLog(h, true, nil, 0, now)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestHabitNegative(t *testing.T) {
	e := NewEngine(Default())
	h := habit(domain.DifficultyMedium, domain.HabitNegative)
	h.CurrentStreak = 3

	out, err := e.EvaluateHabitLog(h, false, nil, 100, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-10), out.Gold)
	assert.Equal(t, -15, out.Health)
	assert.Equal(t, 0, out.CurrentStreak)
	assert.Equal(t, 1, out.NegativeCounter)

	// the penalty stops at zero gold
	out, err = e.EvaluateHabitLog(h, false, nil, 4, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), out.Gold)

	_, err = e.EvaluateHabitLog(habit(domain.DifficultyEasy, domain.HabitPositive), false, nil, 10, now)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestGoldLock(t *testing.T) {
	e := NewEngine(Default())
	h := habit(domain.DifficultyHard, domain.HabitBoth)
	h.GoldRewardLockedUntil = ptr(now.Add(time.Hour))

	out, err := e.EvaluateHabitLog(h, true, nil, 0, now)
	require.NoError(t, err)
	assert.Zero(t, out.Gold)
	assert.Equal(t, 5, out.Happiness)

	// the negative penalty is not locked
	out, err = e.EvaluateHabitLog(h, false, nil, 100, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-20), out.Gold)

	// once the lock passes, rewards resume
	out, err = e.EvaluateHabitLog(h, true, nil, 0, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.Gold)

	daily := &domain.Daily{TaskBase: domain.TaskBase{Difficulty: domain.DifficultyHard, GoldRewardLockedUntil: ptr(now.Add(time.Minute))}}
	dout, err := e.EvaluateCompletion(daily, now)
	require.NoError(t, err)
	assert.Zero(t, dout.Gold)
}

func TestEvaluateCompletion(t *testing.T) {
	e := NewEngine(Default())

	daily := &domain.Daily{TaskBase: domain.TaskBase{Difficulty: domain.DifficultyMedium}}
	out, err := e.EvaluateCompletion(daily, now)
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Gold)

	daily.Completed = true
	daily.LastCompleted = ptr(now.Add(-time.Hour))
	_, err = e.EvaluateCompletion(daily, now)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// a completion from yesterday no longer blocks today
	daily.LastCompleted = ptr(now.AddDate(0, 0, -1))
	_, err = e.EvaluateCompletion(daily, now)
	assert.NoError(t, err)

	todo := &domain.Todo{TaskBase: domain.TaskBase{Difficulty: domain.DifficultyHard}}
	out, err = e.EvaluateCompletion(todo, now)
	require.NoError(t, err)
	assert.Equal(t, int64(16), out.Gold)

	todo.Completed = true
	_, err = e.EvaluateCompletion(todo, now)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = e.EvaluateCompletion(habit(domain.DifficultyEasy, domain.HabitBoth), now)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestDowngradeCosts(t *testing.T) {
	e := NewEngine(Default())
	cases := []struct {
		from, to domain.Difficulty
		cost     int64
	}{
		{domain.DifficultyHard, domain.DifficultyMedium, 150},
		{domain.DifficultyHard, domain.DifficultyEasy, 200},
		{domain.DifficultyHard, domain.DifficultyTrivial, 250},
		{domain.DifficultyMedium, domain.DifficultyEasy, 100},
		{domain.DifficultyMedium, domain.DifficultyTrivial, 50},
		{domain.DifficultyEasy, domain.DifficultyTrivial, 20},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"_"+string(tc.to), func(t *testing.T) {
			task := habit(tc.from, domain.HabitPositive)
			task.GoldRewardLockedUntil = ptr(now.Add(time.Hour))

			change, err := e.EvaluateDifficultyChange(task, tc.to, tc.cost, now)
			require.NoError(t, err)
			assert.Equal(t, ChangeDowngrade, change.Mode)
			assert.Equal(t, tc.cost, change.Cost)
			assert.Nil(t, change.LockedUntil)

			_, err = e.EvaluateDifficultyChange(task, tc.to, tc.cost-1, now)
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		})
	}
}

func TestUpgradeLocksRewards(t *testing.T) {
	e := NewEngine(Default())
	change, err := e.EvaluateDifficultyChange(habit(domain.DifficultyEasy, domain.HabitPositive), domain.DifficultyHard, 0, now)
	require.NoError(t, err)
	assert.Equal(t, ChangeUpgrade, change.Mode)
	assert.Zero(t, change.Cost)
	require.NotNil(t, change.LockedUntil)
	assert.Equal(t, now.Add(7*24*time.Hour), *change.LockedUntil)

	_, err = e.EvaluateDifficultyChange(habit(domain.DifficultyEasy, domain.HabitPositive), domain.DifficultyEasy, 1000, now)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = e.EvaluateDifficultyChange(habit(domain.DifficultyEasy, domain.HabitPositive), "LEGENDARY", 1000, now)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestEvaluateDeletion(t *testing.T) {
	e := NewEngine(Default())
	cases := []struct {
		d      domain.Difficulty
		streak int
		cost   int64
	}{
		{domain.DifficultyTrivial, 5, 25},
		{domain.DifficultyEasy, 10, 50},
		{domain.DifficultyMedium, 20, 100},
		{domain.DifficultyHard, 30, 300},
	}
	for _, tc := range cases {
		t.Run(string(tc.d), func(t *testing.T) {
			h := habit(tc.d, domain.HabitPositive)
			h.CurrentStreak = tc.streak - 1

			del, err := e.EvaluateDeletion(h, tc.cost)
			require.NoError(t, err)
			assert.Equal(t, DeletePaid, del.Mode)
			assert.Equal(t, tc.cost, del.Cost)

			_, err = e.EvaluateDeletion(h, tc.cost-1)
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

			h.CurrentStreak = tc.streak
			del, err = e.EvaluateDeletion(h, 0)
			require.NoError(t, err)
			assert.Equal(t, DeleteFree, del.Mode)
			assert.Zero(t, del.Cost)
		})
	}

	del, err := e.EvaluateDeletion(&domain.Todo{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DeleteFree, del.Mode)
}

func TestRulesAreValues(t *testing.T) {
	r := Default()
	r.ChallengePrizes[0] = 1
	r.DowngradeCost[3][2] = 1

	fresh := Default()
	assert.Equal(t, int64(70), fresh.ChallengePrizes[0])
	assert.Equal(t, int64(150), fresh.DowngradeCost[3][2])

	p, ok := fresh.Prize(10)
	assert.True(t, ok)
	assert.Equal(t, int64(30), p)
	_, ok = fresh.Prize(11)
	assert.False(t, ok)
}
