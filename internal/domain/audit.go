package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records social and account actions that change someone else's standing.
type AuditLog struct {
	ID        uuid.UUID              `db:"id" json:"id"`
	UserID    uuid.UUID              `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryAuth      = "auth"
	AuditCategoryGroup     = "group"
	AuditCategoryChallenge = "challenge"
)

const (
	AuditActionRegister = "register"
	AuditActionLogin    = "login"

	AuditActionGroupDelete       = "group_delete"
	AuditActionGroupApprove      = "group_approve"
	AuditActionGroupReject       = "group_reject"
	AuditActionGroupKick         = "group_kick"
	AuditActionGroupRoleChange   = "group_role_change"
	AuditActionGroupOwnerHandoff = "group_ownership_transfer"

	AuditActionChallengeStart      = "challenge_start"
	AuditActionChallengeApprove    = "challenge_approve"
	AuditActionChallengeReject     = "challenge_reject"
	AuditActionChallengeDistribute = "challenge_rewards_distributed"
)
