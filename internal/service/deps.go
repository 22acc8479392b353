package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"habitquest/internal/clock"
	"habitquest/internal/domain"
	"habitquest/internal/economy"
	"habitquest/internal/metrics"
	"habitquest/internal/store"
)

// Deps is shared by every service.
type Deps struct {
	Store   store.Store
	Engine  *economy.Engine
	Clock   clock.Clock
	Balance *BalanceService
	Audit   *AuditService
}

func NewDeps(st store.Store, rules economy.Rules, clk clock.Clock) *Deps {
	return &Deps{
		Store:   st,
		Engine:  economy.NewEngine(rules),
		Clock:   clk,
		Balance: &BalanceService{clock: clk},
		Audit:   &AuditService{clock: clk},
	}
}

func (d *Deps) rules() economy.Rules {
	return d.Engine.Rules()
}

// runInTx runs fn as one unit of work and reports its ledger entries to
// metrics once the work has committed.
func (d *Deps) runInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	var entries *ledgerEntries
	err := d.Store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		entries = &ledgerEntries{}
		return fn(withLedgerEntries(ctx, entries), tx)
	})
	if err == nil && entries != nil {
		for _, t := range entries.list {
			metrics.ObserveLedger(t.Type, string(t.Currency), t.Amount)
		}
	}
	return err
}

// applyPetOutcome moves the user's pet by the happiness and health deltas.
func (d *Deps) applyPetOutcome(ctx context.Context, tx store.Tx, userID uuid.UUID, out economy.Outcome) (*domain.Pet, error) {
	pet, err := tx.GetPetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out.Happiness == 0 && out.Health == 0 {
		return pet, nil
	}
	pet.Apply(domain.StatHappiness, out.Happiness)
	pet.Apply(domain.StatHealth, out.Health)
	pet.UpdatedAt = d.Clock.Now()
	if err := tx.UpdatePet(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.BadRequest("%s is required", field)
	}
	return v, nil
}
