package service

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/store"
)

// RewardService manages user-defined rewards bought with gold.
type RewardService struct {
	*Deps
}

func NewRewardService(d *Deps) *RewardService {
	return &RewardService{Deps: d}
}

type RewardInput struct {
	Title string
	Notes *string
	Cost  int64
}

func (s *RewardService) load(ctx context.Context, tx store.Tx, id, userID uuid.UUID) (*domain.Reward, error) {
	r, err := tx.GetReward(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, domain.Forbidden("reward belongs to another user")
	}
	return r, nil
}

func (s *RewardService) Create(ctx context.Context, userID uuid.UUID, in RewardInput) (*domain.Reward, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	if in.Cost < 0 {
		return nil, domain.BadRequest("cost must not be negative")
	}
	var r *domain.Reward
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		now := s.Clock.Now()
		r = &domain.Reward{UserID: userID, Title: title, Notes: in.Notes, Cost: in.Cost, CreatedAt: now, UpdatedAt: now}
		return tx.CreateReward(ctx, r)
	})
	return r, err
}

func (s *RewardService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error) {
	var out []*domain.Reward
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListRewards(ctx, userID)
		return err
	})
	return out, err
}

type RewardPatch struct {
	Title *string
	Notes *string
	Cost  *int64
}

func (s *RewardService) Update(ctx context.Context, id, userID uuid.UUID, patch RewardPatch) (*domain.Reward, error) {
	var r *domain.Reward
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if r, err = s.load(ctx, tx, id, userID); err != nil {
			return err
		}
		if patch.Title != nil {
			if r.Title, err = requireText("title", *patch.Title); err != nil {
				return err
			}
		}
		if patch.Notes != nil {
			r.Notes = patch.Notes
		}
		if patch.Cost != nil {
			if *patch.Cost < 0 {
				return domain.BadRequest("cost must not be negative")
			}
			r.Cost = *patch.Cost
		}
		r.UpdatedAt = s.Clock.Now()
		return tx.UpdateReward(ctx, r)
	})
	return r, err
}

func (s *RewardService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.load(ctx, tx, id, userID); err != nil {
			return err
		}
		return tx.DeleteReward(ctx, id)
	})
}

type RedeemResult struct {
	Reward *domain.Reward `json:"reward"`
	Gold   int64          `json:"gold"`
}

// Redeem spends the reward's cost. Free rewards leave no ledger entry.
func (s *RewardService) Redeem(ctx context.Context, id, userID uuid.UUID) (*RedeemResult, error) {
	var res *RedeemResult
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		r, err := s.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		user, err := s.Balance.Apply(ctx, tx, userID, -r.Cost, domain.TxRewardRedeem, map[string]interface{}{
			"reward_id": id.String(),
			"title":     r.Title,
		})
		if err != nil {
			return err
		}
		res = &RedeemResult{Reward: r, Gold: user.Gold}
		return nil
	})
	return res, err
}
