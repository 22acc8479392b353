package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (r *Tx) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil || t.Meta == nil {
		metaJSON = []byte("{}")
	}

	_, err = r.tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, currency, amount, meta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.Type, t.Currency, t.Amount, metaJSON, t.CreatedAt,
	)
	return translate(err, "transaction")
}

// ListTransactions returns recent ledger entries for a user
func (r *Tx) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.tx.Query(ctx,
		`SELECT id, user_id, type, currency, amount, meta, created_at
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTransaction)
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var metaJSON []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Currency, &t.Amount, &metaJSON, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(metaJSON) > 0 {
		_ = json.Unmarshal(metaJSON, &t.Meta)
	}
	return &t, nil
}
