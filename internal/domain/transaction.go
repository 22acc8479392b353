package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a ledger entry. Amount is signed: credits are positive.
type Transaction struct {
	ID        uuid.UUID              `db:"id" json:"id"`
	UserID    uuid.UUID              `db:"user_id" json:"user_id"`
	Type      string                 `db:"type" json:"type"`
	Currency  Currency               `db:"currency" json:"currency"`
	Amount    int64                  `db:"amount" json:"amount"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	TxHabitLog          = "habit_log"
	TxDailyComplete     = "daily_complete"
	TxTodoComplete      = "todo_complete"
	TxDifficultyChange  = "difficulty_change"
	TxTaskDelete        = "task_delete"
	TxGroupCreate       = "group_create"
	TxGroupEdit         = "group_edit"
	TxGroupDelete       = "group_delete"
	TxChallengeCreate   = "challenge_create"
	TxChallengeComplete = "challenge_complete"
	TxChallengePrize    = "challenge_prize"
	TxShopPurchase      = "shop_purchase"
	TxRewardRedeem      = "reward_redeem"
	TxSignupBonus       = "signup_bonus"
)
