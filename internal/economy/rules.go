package economy

import (
	"time"

	"habitquest/internal/domain"
)

// DifficultyTable holds one value per difficulty tier.
type DifficultyTable struct {
	Trivial int64 `json:"trivial"`
	Easy    int64 `json:"easy"`
	Medium  int64 `json:"medium"`
	Hard    int64 `json:"hard"`
}

// For returns the value for d, or 0 for an unknown tier.
func (t DifficultyTable) For(d domain.Difficulty) int64 {
	switch d {
	case domain.DifficultyTrivial:
		return t.Trivial
	case domain.DifficultyEasy:
		return t.Easy
	case domain.DifficultyMedium:
		return t.Medium
	case domain.DifficultyHard:
		return t.Hard
	}
	return 0
}

// PetStats is the starting state of a freshly adopted pet.
type PetStats struct {
	Health    int `json:"health"`
	Hunger    int `json:"hunger"`
	Happiness int `json:"happiness"`
	Energy    int `json:"energy"`
}

// Rules is the price and reward table of the game. It is a plain value,
// so every holder works with its own copy.
type Rules struct {
	// Completion rewards
	HabitGold DifficultyTable `json:"habit_gold"`
	DailyGold DifficultyTable `json:"daily_gold"`
	TodoGold  DifficultyTable `json:"todo_gold"`

	// Pet reactions
	CompletionHappiness   int      `json:"completion_happiness"`
	NegativeHealthPenalty int      `json:"negative_health_penalty"`
	StartingPet           PetStats `json:"starting_pet"`

	// Difficulty changes; DowngradeCost is indexed [from.Rank()][to.Rank()].
	UpgradeLock   time.Duration `json:"upgrade_lock"`
	DowngradeCost [4][4]int64   `json:"downgrade_cost"`

	// Deletion
	DeletionCost   DifficultyTable `json:"deletion_cost"`
	DeletionStreak DifficultyTable `json:"deletion_streak"`

	// Social
	GroupCreateCost     int64     `json:"group_create_cost"`
	GroupEditCost       int64     `json:"group_edit_cost"`
	GroupDeleteCost     int64     `json:"group_delete_cost"`
	ChallengeCreateCost int64     `json:"challenge_create_cost"`
	ChallengeCompletion int64     `json:"challenge_completion"`
	ChallengePrizes     [10]int64 `json:"challenge_prizes"`

	// Accounts
	StartingGold int64 `json:"starting_gold"`
	StartingGems int64 `json:"starting_gems"`
}

// Default returns the standard game balance.
func Default() Rules {
	var downgrade [4][4]int64
	downgrade[3][2] = 150 // HARD -> MEDIUM
	downgrade[3][1] = 200 // HARD -> EASY
	downgrade[3][0] = 250 // HARD -> TRIVIAL
	downgrade[2][1] = 100 // MEDIUM -> EASY
	downgrade[2][0] = 50  // MEDIUM -> TRIVIAL
	downgrade[1][0] = 20  // EASY -> TRIVIAL

	return Rules{
		HabitGold: DifficultyTable{Trivial: 2, Easy: 5, Medium: 10, Hard: 20},
		DailyGold: DifficultyTable{Trivial: 3, Easy: 6, Medium: 12, Hard: 24},
		TodoGold:  DifficultyTable{Trivial: 1, Easy: 4, Medium: 8, Hard: 16},

		CompletionHappiness:   5,
		NegativeHealthPenalty: 15,
		StartingPet:           PetStats{Health: 100, Hunger: 50, Happiness: 50, Energy: 100},

		UpgradeLock:   7 * 24 * time.Hour,
		DowngradeCost: downgrade,

		DeletionCost:   DifficultyTable{Trivial: 25, Easy: 50, Medium: 100, Hard: 300},
		DeletionStreak: DifficultyTable{Trivial: 5, Easy: 10, Medium: 20, Hard: 30},

		GroupCreateCost:     150,
		GroupEditCost:       300,
		GroupDeleteCost:     500,
		ChallengeCreateCost: 150,
		ChallengeCompletion: 30,
		ChallengePrizes:     [10]int64{70, 60, 50, 40, 30, 30, 30, 30, 30, 30},

		StartingGold: 100,
		StartingGems: 0,
	}
}

// CompletionGold is the base gold for completing a task of kind at d.
func (r Rules) CompletionGold(kind domain.TaskKind, d domain.Difficulty) int64 {
	switch kind {
	case domain.TaskHabit:
		return r.HabitGold.For(d)
	case domain.TaskDaily:
		return r.DailyGold.For(d)
	case domain.TaskTodo:
		return r.TodoGold.For(d)
	}
	return 0
}

// Prize returns the payout for a 1-based leaderboard rank.
func (r Rules) Prize(rank int) (int64, bool) {
	if rank < 1 || rank > len(r.ChallengePrizes) {
		return 0, false
	}
	return r.ChallengePrizes[rank-1], true
}
