package service

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/store"
)

var ErrInvalidAmount = domain.BadRequest("amount must be positive")

type ledgerKey struct{}

type ledgerEntries struct {
	list []*domain.Transaction
}

func withLedgerEntries(ctx context.Context, e *ledgerEntries) context.Context {
	return context.WithValue(ctx, ledgerKey{}, e)
}

// BalanceService moves currency inside a unit of work. Every move writes a
// ledger entry alongside the balance change.
type BalanceService struct {
	clock clock.Clock
}

// Debit deducts amount, failing with domain.ErrInsufficientFunds when the
// balance would go negative.
func (s *BalanceService) Debit(ctx context.Context, tx store.Tx, userID uuid.UUID, currency domain.Currency, amount int64, txType string, meta map[string]interface{}) (*domain.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.move(ctx, tx, userID, currency, -amount, txType, meta)
}

// Credit adds amount to the balance.
func (s *BalanceService) Credit(ctx context.Context, tx store.Tx, userID uuid.UUID, currency domain.Currency, amount int64, txType string, meta map[string]interface{}) (*domain.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.move(ctx, tx, userID, currency, amount, txType, meta)
}

// Apply credits or debits gold by a signed delta. A zero delta only loads the user.
func (s *BalanceService) Apply(ctx context.Context, tx store.Tx, userID uuid.UUID, delta int64, txType string, meta map[string]interface{}) (*domain.User, error) {
	switch {
	case delta > 0:
		return s.Credit(ctx, tx, userID, domain.CurrencyGold, delta, txType, meta)
	case delta < 0:
		return s.Debit(ctx, tx, userID, domain.CurrencyGold, -delta, txType, meta)
	default:
		return tx.GetUser(ctx, userID)
	}
}

func (s *BalanceService) move(ctx context.Context, tx store.Tx, userID uuid.UUID, currency domain.Currency, delta int64, txType string, meta map[string]interface{}) (*domain.User, error) {
	var gold, gems int64
	if currency == domain.CurrencyGems {
		gems = delta
	} else {
		gold = delta
	}

	user, err := tx.AdjustBalance(ctx, userID, gold, gems)
	if err != nil {
		return nil, err
	}

	entry := &domain.Transaction{
		UserID:    userID,
		Type:      txType,
		Currency:  currency,
		Amount:    delta,
		Meta:      meta,
		CreatedAt: s.clock.Now(),
	}
	if err := tx.CreateTransaction(ctx, entry); err != nil {
		return nil, err
	}
	if e, ok := ctx.Value(ledgerKey{}).(*ledgerEntries); ok {
		e.list = append(e.list, entry)
	}
	return user, nil
}
