package economy

import (
	"time"

	"habitquest/internal/domain"
)

// Engine turns task events into balance and pet deltas. It never touches
// storage; callers persist the outcome.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Outcome is the effect of one task event. Gold is signed.
type Outcome struct {
	Gold      int64 `json:"gold"`
	Happiness int   `json:"happiness"`
	Health    int   `json:"health"`
}

// HabitOutcome adds the habit's new counters to Outcome.
type HabitOutcome struct {
	Outcome
	CurrentStreak   int
	LongestStreak   int
	PositiveCounter int
	NegativeCounter int
}

// EvaluateHabitLog prices a habit log made at now. lastLog is the date of
// the most recent log, nil if there is none; gold is the user's balance.
func (e *Engine) EvaluateHabitLog(h *domain.Habit, completed bool, lastLog *time.Time, gold int64, now time.Time) (HabitOutcome, error) {
	if h.IsPaused {
		return HabitOutcome{}, domain.Conflict("habit is paused")
	}
	if !completed && !h.Type.AllowsNegative() {
		return HabitOutcome{}, domain.BadRequest("positive habits cannot be logged as missed")
	}
	if lastLog != nil && domain.SameDay(*lastLog, now) {
		return HabitOutcome{}, domain.Conflict("habit already logged today")
	}

	out := HabitOutcome{
		CurrentStreak:   h.CurrentStreak,
		LongestStreak:   h.LongestStreak,
		PositiveCounter: h.PositiveCounter,
		NegativeCounter: h.NegativeCounter,
	}
	points := e.rules.HabitGold.For(h.Difficulty)

	if !completed {
		// The penalty never takes the balance below zero.
		out.Gold = -min(points, gold)
		out.Health = -e.rules.NegativeHealthPenalty
		out.NegativeCounter++
		out.CurrentStreak = 0
		return out, nil
	}

	if !h.RewardLocked(now) {
		out.Gold = points
	}
	out.Happiness = e.rules.CompletionHappiness
	out.PositiveCounter++
	if lastLog != nil && domain.IsYesterday(*lastLog, now) {
		out.CurrentStreak = h.CurrentStreak + 1
	} else {
		out.CurrentStreak = 1
	}
	out.LongestStreak = max(out.LongestStreak, out.CurrentStreak)
	return out, nil
}

// EvaluateCompletion prices completing a daily or a todo at now.
func (e *Engine) EvaluateCompletion(task domain.Task, now time.Time) (Outcome, error) {
	switch t := task.(type) {
	case *domain.Daily:
		if t.AsOf(now).Completed {
			return Outcome{}, domain.Conflict("daily already completed today")
		}
	case *domain.Todo:
		if t.Completed {
			return Outcome{}, domain.Conflict("todo already completed")
		}
	default:
		return Outcome{}, domain.BadRequest("%s tasks are logged, not completed", task.Kind())
	}

	var out Outcome
	base := task.Base()
	if !base.RewardLocked(now) {
		out.Gold = e.rules.CompletionGold(task.Kind(), base.Difficulty)
	}
	out.Happiness = e.rules.CompletionHappiness
	return out, nil
}

type ChangeMode string

const (
	ChangeUpgrade   ChangeMode = "UPGRADE"
	ChangeDowngrade ChangeMode = "DOWNGRADE"
)

// DifficultyChange describes a paid difficulty transition.
// LockedUntil is the new gold lock; nil clears it.
type DifficultyChange struct {
	Mode        ChangeMode `json:"mode"`
	Cost        int64      `json:"cost"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

// EvaluateDifficultyChange prices moving task to the difficulty to.
// Upgrades are free but lock gold rewards; downgrades cost gold.
func (e *Engine) EvaluateDifficultyChange(task domain.Task, to domain.Difficulty, gold int64, now time.Time) (DifficultyChange, error) {
	from := task.Base().Difficulty
	if !to.Valid() {
		return DifficultyChange{}, domain.BadRequest("unknown difficulty %q", to)
	}
	if from == to {
		return DifficultyChange{}, domain.Conflict("task is already %s", to)
	}

	if to.Rank() > from.Rank() {
		until := now.Add(e.rules.UpgradeLock)
		return DifficultyChange{Mode: ChangeUpgrade, LockedUntil: &until}, nil
	}

	cost := e.rules.DowngradeCost[from.Rank()][to.Rank()]
	if cost <= 0 {
		return DifficultyChange{}, domain.BadRequest("no downgrade price from %s to %s", from, to)
	}
	change := DifficultyChange{Mode: ChangeDowngrade, Cost: cost}
	if gold < cost {
		return change, domain.ErrInsufficientFunds
	}
	return change, nil
}

type DeletionMode string

const (
	DeleteFree DeletionMode = "FREE"
	DeletePaid DeletionMode = "PAID"
)

// Deletion describes how a task may be removed.
type Deletion struct {
	Mode           DeletionMode `json:"mode"`
	Cost           int64        `json:"cost"`
	RequiredStreak int          `json:"required_streak,omitempty"`
}

// EvaluateDeletion decides whether task can be removed for free. Habits
// are free once their streak reaches the tier threshold; dailies and todos
// are always free. The error is set when a paid deletion is unaffordable.
func (e *Engine) EvaluateDeletion(task domain.Task, gold int64) (Deletion, error) {
	h, ok := task.(*domain.Habit)
	if !ok {
		return Deletion{Mode: DeleteFree}, nil
	}

	required := int(e.rules.DeletionStreak.For(h.Difficulty))
	if h.CurrentStreak >= required {
		return Deletion{Mode: DeleteFree, RequiredStreak: required}, nil
	}
	d := Deletion{Mode: DeletePaid, Cost: e.rules.DeletionCost.For(h.Difficulty), RequiredStreak: required}
	if gold < d.Cost {
		return d, domain.ErrInsufficientFunds
	}
	return d, nil
}
