package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (r *Tx) CreateAuditLog(ctx context.Context, l *domain.AuditLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	detailsJSON, err := json.Marshal(l.Details)
	if err != nil || l.Details == nil {
		detailsJSON = []byte("{}")
	}

	_, err = r.tx.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, category, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.ID, l.UserID, l.Action, l.Category, detailsJSON, l.CreatedAt)
	return translate(err, "audit log")
}

func (r *Tx) ListAuditLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.tx.Query(ctx, `
		SELECT id, user_id, action, category, details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row rowScanner) (*domain.AuditLog, error) {
		var l domain.AuditLog
		var detailsJSON []byte
		if err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.Category, &detailsJSON, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &l.Details)
		}
		return &l, nil
	})
}
