package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a user-defined item bought with gold.
type Reward struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Cost      int64     `db:"cost" json:"cost"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
