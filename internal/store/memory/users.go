package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (t *tx) CreateUser(ctx context.Context, u *domain.User) error {
	for _, existing := range t.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.Conflict("email already registered")
		}
		if existing.Username == u.Username {
			return domain.Conflict("username already taken")
		}
	}
	t.st.track(&u.ID)
	t.st.users[u.ID] = *u
	return nil
}

func (t *tx) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	return &u, nil
}

func (t *tx) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range t.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user not found")
}

func (t *tx) AdjustBalance(ctx context.Context, userID uuid.UUID, goldDelta, gemsDelta int64) (*domain.User, error) {
	u, ok := t.st.users[userID]
	if !ok {
		return nil, domain.NotFound("user not found")
	}
	if u.Gold+goldDelta < 0 || u.Gems+gemsDelta < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	u.Gold += goldDelta
	u.Gems += gemsDelta
	t.st.users[userID] = u
	return &u, nil
}
