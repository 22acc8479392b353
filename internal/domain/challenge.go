package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "PENDING"
	ChallengeActive    ChallengeStatus = "ACTIVE"
	ChallengeCompleted ChallengeStatus = "COMPLETED"
)

type Challenge struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	CreatorID        uuid.UUID       `db:"creator_id" json:"creator_id"`
	Title            string          `db:"title" json:"title"`
	Description      string          `db:"description" json:"description"`
	Goal             string          `db:"goal" json:"goal"`
	IsPrivate        bool            `db:"is_private" json:"is_private"`
	Status           ChallengeStatus `db:"status" json:"status"`
	StartTime        *time.Time      `db:"start_time" json:"start_time,omitempty"`
	ParticipantCount int             `json:"participant_count"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Participation is a user's enrollment in a challenge.
// CompletionTime is whole seconds from the challenge start.
type Participation struct {
	ID             uuid.UUID        `db:"id" json:"id"`
	ChallengeID    uuid.UUID        `db:"challenge_id" json:"challenge_id"`
	UserID         uuid.UUID        `db:"user_id" json:"user_id"`
	Status         MembershipStatus `db:"status" json:"status"`
	Progress       int              `db:"progress" json:"progress"`
	Completed      bool             `db:"completed" json:"completed"`
	CompletionTime *int64           `db:"completion_time" json:"completion_time,omitempty"`
	Username       string           `json:"username,omitempty"`
	Challenge      *Challenge       `json:"challenge,omitempty"`
	JoinedAt       time.Time        `db:"joined_at" json:"joined_at"`
}
