package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const rewardColumns = `id, user_id, title, notes, cost, created_at, updated_at`

func scanReward(row rowScanner) (*domain.Reward, error) {
	var rw domain.Reward
	if err := row.Scan(&rw.ID, &rw.UserID, &rw.Title, &rw.Notes, &rw.Cost, &rw.CreatedAt, &rw.UpdatedAt); err != nil {
		return nil, err
	}
	return &rw, nil
}

func (r *Tx) CreateReward(ctx context.Context, rw *domain.Reward) error {
	if rw.ID == uuid.Nil {
		rw.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO rewards (`+rewardColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rw.ID, rw.UserID, rw.Title, rw.Notes, rw.Cost, rw.CreatedAt, rw.UpdatedAt,
	)
	return translate(err, "reward")
}

func (r *Tx) GetReward(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	rw, err := scanReward(r.tx.QueryRow(ctx, `SELECT `+rewardColumns+` FROM rewards WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "reward")
	}
	return rw, nil
}

func (r *Tx) ListRewards(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT `+rewardColumns+` FROM rewards WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanReward)
}

func (r *Tx) UpdateReward(ctx context.Context, rw *domain.Reward) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE rewards SET title = $2, notes = $3, cost = $4, updated_at = $5 WHERE id = $1`,
		rw.ID, rw.Title, rw.Notes, rw.Cost, rw.UpdatedAt,
	)
	return expectOne(tag, err, "reward")
}

func (r *Tx) DeleteReward(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM rewards WHERE id = $1`, id)
	return expectOne(tag, err, "reward")
}
