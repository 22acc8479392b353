package domain

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyTrivial Difficulty = "TRIVIAL"
	DifficultyEasy    Difficulty = "EASY"
	DifficultyMedium  Difficulty = "MEDIUM"
	DifficultyHard    Difficulty = "HARD"
)

// Rank orders difficulties from TRIVIAL (0) to HARD (3); -1 for unknown values.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyTrivial:
		return 0
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return -1
	}
}

func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

type TaskKind string

const (
	TaskHabit TaskKind = "habit"
	TaskDaily TaskKind = "daily"
	TaskTodo  TaskKind = "todo"
)

// TaskBase holds the fields shared by habits, dailies and todos.
type TaskBase struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                uuid.UUID  `db:"user_id" json:"user_id"`
	Title                 string     `db:"title" json:"title"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	Difficulty            Difficulty `db:"difficulty" json:"difficulty"`
	GoldRewardLockedUntil *time.Time `db:"gold_reward_locked_until" json:"gold_reward_locked_until,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

func (b *TaskBase) Base() *TaskBase { return b }

// RewardLocked reports whether completions earn no gold at now.
func (b *TaskBase) RewardLocked(now time.Time) bool {
	return b.GoldRewardLockedUntil != nil && now.Before(*b.GoldRewardLockedUntil)
}

// Task is implemented by *Habit, *Daily and *Todo.
type Task interface {
	Base() *TaskBase
	Kind() TaskKind
}

type HabitType string

const (
	HabitPositive HabitType = "POSITIVE"
	HabitNegative HabitType = "NEGATIVE"
	HabitBoth     HabitType = "BOTH"
)

func (t HabitType) Valid() bool {
	return t == HabitPositive || t == HabitNegative || t == HabitBoth
}

// AllowsNegative reports whether a failed log is meaningful for the type.
func (t HabitType) AllowsNegative() bool {
	return t == HabitNegative || t == HabitBoth
}

type Habit struct {
	TaskBase
	Type            HabitType `db:"type" json:"type"`
	IsPaused        bool      `db:"is_paused" json:"is_paused"`
	CurrentStreak   int       `db:"current_streak" json:"current_streak"`
	LongestStreak   int       `db:"longest_streak" json:"longest_streak"`
	PositiveCounter int       `db:"positive_counter" json:"positive_counter"`
	NegativeCounter int       `db:"negative_counter" json:"negative_counter"`
}

func (*Habit) Kind() TaskKind { return TaskHabit }

type Daily struct {
	TaskBase
	Completed     bool       `db:"completed" json:"completed"`
	LastCompleted *time.Time `db:"last_completed" json:"last_completed,omitempty"`
}

func (*Daily) Kind() TaskKind { return TaskDaily }

// AsOf returns the daily as seen at now: a completion from a previous
// calendar day no longer counts.
func (d Daily) AsOf(now time.Time) Daily {
	if d.Completed && (d.LastCompleted == nil || !SameDay(*d.LastCompleted, now)) {
		d.Completed = false
	}
	return d
}

type Todo struct {
	TaskBase
	Completed bool       `db:"completed" json:"completed"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`
}

func (*Todo) Kind() TaskKind { return TaskTodo }

// TaskLog is an append-only completion record. Completed is only set for habits.
type TaskLog struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TaskID    uuid.UUID `db:"task_id" json:"task_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Kind      TaskKind  `db:"kind" json:"kind"`
	Date      time.Time `db:"date" json:"date"`
	Completed *bool     `db:"completed" json:"completed,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar days in ref's location.
func SameDay(t, ref time.Time) bool {
	return StartOfDay(t.In(ref.Location())).Equal(StartOfDay(ref))
}

// IsYesterday reports whether t falls on the calendar day before ref.
func IsYesterday(t, ref time.Time) bool {
	return SameDay(t, StartOfDay(ref).AddDate(0, 0, -1))
}
