package service

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/store"
)

// AuditService records social and account actions inside the unit of work
// that performs them.
type AuditService struct {
	clock clock.Clock
}

func (s *AuditService) Log(ctx context.Context, tx store.Tx, userID uuid.UUID, action, category string, details map[string]interface{}) error {
	return tx.CreateAuditLog(ctx, &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		CreatedAt: s.clock.Now(),
	})
}

// LogGroup records a moderation action taken by actor on target.
func (s *AuditService) LogGroup(ctx context.Context, tx store.Tx, actor uuid.UUID, action string, groupID, target uuid.UUID, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["group_id"] = groupID.String()
	if target != uuid.Nil {
		details["target_user_id"] = target.String()
	}
	return s.Log(ctx, tx, actor, action, domain.AuditCategoryGroup, details)
}

func (s *AuditService) LogChallenge(ctx context.Context, tx store.Tx, actor uuid.UUID, action string, challengeID uuid.UUID, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["challenge_id"] = challengeID.String()
	return s.Log(ctx, tx, actor, action, domain.AuditCategoryChallenge, details)
}
