package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"habitquest/internal/domain"
	"habitquest/internal/store"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3
	maxUsernameLength = 30
)

type AuthService struct {
	*Deps
	// HashCost is the bcrypt cost for new passwords.
	HashCost int
}

func NewAuthService(d *Deps) *AuthService {
	return &AuthService{Deps: d, HashCost: bcrypt.DefaultCost}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register creates the account, its starting balance and its pet in one
// unit of work, then issues a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.BadRequest("invalid email address")
	}
	username := strings.TrimSpace(in.Username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, domain.BadRequest("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.BadRequest("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rules := s.rules()
	now := s.Clock.Now()
	var user *domain.User

	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		user = &domain.User{
			ID:           uuid.New(),
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if rules.StartingGold > 0 {
			u, err := s.Balance.Credit(ctx, tx, user.ID, domain.CurrencyGold, rules.StartingGold, domain.TxSignupBonus, nil)
			if err != nil {
				return err
			}
			user = u
		}
		if rules.StartingGems > 0 {
			u, err := s.Balance.Credit(ctx, tx, user.ID, domain.CurrencyGems, rules.StartingGems, domain.TxSignupBonus, nil)
			if err != nil {
				return err
			}
			user = u
		}

		pet := &domain.Pet{
			UserID:    user.ID,
			Name:      username + "'s Pet",
			Health:    rules.StartingPet.Health,
			Hunger:    rules.StartingPet.Hunger,
			Happiness: rules.StartingPet.Happiness,
			Energy:    rules.StartingPet.Energy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreatePet(ctx, pet); err != nil {
			return err
		}
		return s.Audit.Log(ctx, tx, user.ID, domain.AuditActionRegister, domain.AuditCategoryAuth, nil)
	})
	if err != nil {
		return nil, err
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user *domain.User
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		u, err := tx.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				return domain.Unauthorized("invalid email or password")
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return domain.Unauthorized("invalid email or password")
		}
		user = u
		return s.Audit.Log(ctx, tx, u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, nil)
	})
	if err != nil {
		return nil, err
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

type Profile struct {
	User *domain.User `json:"user"`
	Pet  *domain.Pet  `json:"pet"`
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if p.User, err = tx.GetUser(ctx, userID); err != nil {
			return err
		}
		p.Pet, err = tx.GetPetByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *AuthService) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListTransactions(ctx, userID, limit)
		return err
	})
	return out, err
}

func (s *AuthService) Activity(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListAuditLogs(ctx, userID, limit)
		return err
	})
	return out, err
}
