package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const userColumns = `id, email, username, password_hash, gold, gems, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Gold,
		&u.Gems,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *Tx) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, gold, gems, created_at, updated_at)
		 VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Gold, u.Gems, u.CreatedAt, u.UpdatedAt,
	)
	return translate(err, "user")
}

// GetUser locks the row so balance checks and writes in the same
// transaction see a stable value.
func (r *Tx) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
}

func (r *Tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email))
}

func (r *Tx) AdjustBalance(ctx context.Context, userID uuid.UUID, goldDelta, gemsDelta int64) (*domain.User, error) {
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Gold+goldDelta < 0 || u.Gems+gemsDelta < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	return scanUser(r.tx.QueryRow(ctx,
		`UPDATE users SET gold = gold + $2, gems = gems + $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, goldDelta, gemsDelta,
	))
}
