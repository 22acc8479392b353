package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/store"
)

const leaderboardSize = 10

type ChallengeService struct {
	*Deps
}

func NewChallengeService(d *Deps) *ChallengeService {
	return &ChallengeService{Deps: d}
}

type ChallengeInput struct {
	Title       string
	Description string
	Goal        string
	IsPrivate   bool
}

type ChallengeDetail struct {
	*domain.Challenge
	Participants []*domain.Participation `json:"participants"`
}

type PrizePayout struct {
	Rank           int       `json:"rank"`
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	CompletionTime int64     `json:"completion_time"`
	Prize          int64     `json:"prize"`
}

func (s *ChallengeService) asCreator(ctx context.Context, tx store.Tx, challengeID, userID uuid.UUID, action string) (*domain.Challenge, error) {
	c, err := tx.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != userID {
		return nil, domain.Forbidden("only the creator can %s", action)
	}
	return c, nil
}

// ownParticipation loads a participation that must belong to userID.
func (s *ChallengeService) ownParticipation(ctx context.Context, tx store.Tx, id, userID uuid.UUID) (*domain.Participation, error) {
	p, err := tx.GetParticipation(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.Forbidden("participation belongs to another user")
	}
	return p, nil
}

// Create charges the creation fee and enrolls the creator as an active participant.
func (s *ChallengeService) Create(ctx context.Context, userID uuid.UUID, in ChallengeInput) (*domain.Challenge, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	var c *domain.Challenge
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		now := s.Clock.Now()
		c = &domain.Challenge{
			ID:          uuid.New(),
			CreatorID:   userID,
			Title:       title,
			Description: in.Description,
			Goal:        in.Goal,
			IsPrivate:   in.IsPrivate,
			Status:      domain.ChallengePending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, s.rules().ChallengeCreateCost, domain.TxChallengeCreate, map[string]interface{}{
			"challenge_id": c.ID.String(),
			"title":        title,
		}); err != nil {
			return err
		}
		if err := tx.CreateChallenge(ctx, c); err != nil {
			return err
		}
		c.ParticipantCount = 1
		return tx.CreateParticipation(ctx, &domain.Participation{
			ChallengeID: c.ID,
			UserID:      userID,
			Status:      domain.StatusActive,
			JoinedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChallengeService) List(ctx context.Context) ([]*domain.Challenge, error) {
	var out []*domain.Challenge
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListChallenges(ctx)
		return err
	})
	return out, err
}

func (s *ChallengeService) Get(ctx context.Context, id uuid.UUID) (*ChallengeDetail, error) {
	var d *ChallengeDetail
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.GetChallenge(ctx, id)
		if err != nil {
			return err
		}
		parts, err := tx.ListParticipants(ctx, id)
		if err != nil {
			return err
		}
		d = &ChallengeDetail{Challenge: c, Participants: parts}
		return nil
	})
	return d, err
}

// Mine lists userID's participations with their challenges.
func (s *ChallengeService) Mine(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	var out []*domain.Participation
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		out, err = tx.ListUserParticipations(ctx, userID)
		return err
	})
	return out, err
}

func (s *ChallengeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.asCreator(ctx, tx, id, userID, "delete the challenge"); err != nil {
			return err
		}
		return tx.DeleteChallenge(ctx, id)
	})
}

// Join enrolls userID; private challenges need the creator's approval.
func (s *ChallengeService) Join(ctx context.Context, challengeID, userID uuid.UUID) (*domain.Participation, error) {
	var p *domain.Participation
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := tx.GetChallenge(ctx, challengeID)
		if err != nil {
			return err
		}
		if c.Status == domain.ChallengeCompleted {
			return domain.Conflict("challenge has already finished")
		}
		_, err = tx.FindParticipation(ctx, challengeID, userID)
		switch {
		case err == nil:
			return domain.Conflict("you have already joined or requested to join this challenge")
		case !domain.IsKind(err, domain.KindNotFound):
			return err
		}

		status := domain.StatusActive
		if c.IsPrivate {
			status = domain.StatusPending
		}
		p = &domain.Participation{
			ChallengeID: challengeID,
			UserID:      userID,
			Status:      status,
			JoinedAt:    s.Clock.Now(),
		}
		return tx.CreateParticipation(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// pendingRequest loads a join request the creator may decide on.
func (s *ChallengeService) pendingRequest(ctx context.Context, tx store.Tx, participationID, actorID uuid.UUID, action string) (*domain.Participation, error) {
	p, err := tx.GetParticipation(ctx, participationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.asCreator(ctx, tx, p.ChallengeID, actorID, action); err != nil {
		return nil, err
	}
	if p.Status != domain.StatusPending {
		return nil, domain.Conflict("this request is not pending approval")
	}
	return p, nil
}

func (s *ChallengeService) Approve(ctx context.Context, participationID, actorID uuid.UUID) (*domain.Participation, error) {
	var p *domain.Participation
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if p, err = s.pendingRequest(ctx, tx, participationID, actorID, "approve requests"); err != nil {
			return err
		}
		p.Status = domain.StatusActive
		if err := tx.UpdateParticipation(ctx, p); err != nil {
			return err
		}
		return s.Audit.LogChallenge(ctx, tx, actorID, domain.AuditActionChallengeApprove, p.ChallengeID, map[string]interface{}{
			"target_user_id": p.UserID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ChallengeService) Reject(ctx context.Context, participationID, actorID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := s.pendingRequest(ctx, tx, participationID, actorID, "reject requests")
		if err != nil {
			return err
		}
		if err := tx.DeleteParticipation(ctx, p.ID); err != nil {
			return err
		}
		return s.Audit.LogChallenge(ctx, tx, actorID, domain.AuditActionChallengeReject, p.ChallengeID, map[string]interface{}{
			"target_user_id": p.UserID.String(),
		})
	})
}

func (s *ChallengeService) Leave(ctx context.Context, participationID, userID uuid.UUID) error {
	return s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := s.ownParticipation(ctx, tx, participationID, userID); err != nil {
			return err
		}
		return tx.DeleteParticipation(ctx, participationID)
	})
}

func (s *ChallengeService) UpdateProgress(ctx context.Context, participationID, userID uuid.UUID, progress int) (*domain.Participation, error) {
	if progress < 0 {
		return nil, domain.BadRequest("progress must not be negative")
	}
	var p *domain.Participation
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if p, err = s.ownParticipation(ctx, tx, participationID, userID); err != nil {
			return err
		}
		if p.Status != domain.StatusActive {
			return domain.Conflict("participation is not active")
		}
		p.Progress = progress
		return tx.UpdateParticipation(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Start moves a pending challenge to ACTIVE and starts the clock that
// completion times are measured from.
func (s *ChallengeService) Start(ctx context.Context, challengeID, userID uuid.UUID) (*domain.Challenge, error) {
	var c *domain.Challenge
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if c, err = s.asCreator(ctx, tx, challengeID, userID, "start the challenge"); err != nil {
			return err
		}
		if c.Status != domain.ChallengePending {
			return domain.Conflict("this challenge has already started")
		}
		now := s.Clock.Now()
		c.Status = domain.ChallengeActive
		c.StartTime = &now
		c.UpdatedAt = now
		if err := tx.UpdateChallenge(ctx, c); err != nil {
			return err
		}
		return s.Audit.LogChallenge(ctx, tx, userID, domain.AuditActionChallengeStart, challengeID, nil)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

type ChallengeCompletion struct {
	Participation *domain.Participation `json:"participation"`
	Reward        int64                 `json:"reward"`
	Gold          int64                 `json:"gold"`
}

// Complete finishes the caller's participation and pays the flat completion reward.
func (s *ChallengeService) Complete(ctx context.Context, participationID, userID uuid.UUID) (*ChallengeCompletion, error) {
	var res *ChallengeCompletion
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		p, err := s.ownParticipation(ctx, tx, participationID, userID)
		if err != nil {
			return err
		}
		c, err := tx.GetChallenge(ctx, p.ChallengeID)
		if err != nil {
			return err
		}
		if c.Status != domain.ChallengeActive || c.StartTime == nil {
			return domain.Conflict("this challenge is not active")
		}
		if p.Status != domain.StatusActive {
			return domain.Conflict("participation is not active")
		}
		if p.Completed {
			return domain.Conflict("challenge already completed")
		}

		elapsed := int64(s.Clock.Now().Sub(*c.StartTime) / time.Second)
		p.Completed = true
		p.CompletionTime = &elapsed
		if err := tx.UpdateParticipation(ctx, p); err != nil {
			return err
		}

		reward := s.rules().ChallengeCompletion
		user, err := s.Balance.Credit(ctx, tx, userID, domain.CurrencyGold, reward, domain.TxChallengeComplete, map[string]interface{}{
			"challenge_id": c.ID.String(),
		})
		if err != nil {
			return err
		}
		res = &ChallengeCompletion{Participation: p, Reward: reward, Gold: user.Gold}
		return nil
	})
	return res, err
}

// Leaderboard returns the fastest finishers.
func (s *ChallengeService) Leaderboard(ctx context.Context, challengeID uuid.UUID) ([]*domain.Participation, error) {
	var out []*domain.Participation
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.GetChallenge(ctx, challengeID); err != nil {
			return err
		}
		var err error
		out, err = tx.ListFinishers(ctx, challengeID, leaderboardSize)
		return err
	})
	return out, err
}

// DistributeRewards pays the prize schedule to the fastest finishers and
// closes the challenge. It can run only once.
func (s *ChallengeService) DistributeRewards(ctx context.Context, challengeID, userID uuid.UUID) ([]PrizePayout, error) {
	var payouts []PrizePayout
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		c, err := s.asCreator(ctx, tx, challengeID, userID, "distribute rewards")
		if err != nil {
			return err
		}
		switch c.Status {
		case domain.ChallengeCompleted:
			return domain.Conflict("rewards have already been distributed")
		case domain.ChallengePending:
			return domain.Conflict("this challenge has not started")
		}

		finishers, err := tx.ListFinishers(ctx, challengeID, leaderboardSize)
		if err != nil {
			return err
		}
		payouts = make([]PrizePayout, 0, len(finishers))
		for i, p := range finishers {
			prize, ok := s.rules().Prize(i + 1)
			if !ok {
				break
			}
			if _, err := s.Balance.Credit(ctx, tx, p.UserID, domain.CurrencyGold, prize, domain.TxChallengePrize, map[string]interface{}{
				"challenge_id": challengeID.String(),
				"rank":         i + 1,
			}); err != nil {
				return err
			}
			payouts = append(payouts, PrizePayout{
				Rank:           i + 1,
				UserID:         p.UserID,
				Username:       p.Username,
				CompletionTime: *p.CompletionTime,
				Prize:          prize,
			})
		}

		c.Status = domain.ChallengeCompleted
		c.UpdatedAt = s.Clock.Now()
		if err := tx.UpdateChallenge(ctx, c); err != nil {
			return err
		}
		return s.Audit.LogChallenge(ctx, tx, userID, domain.AuditActionChallengeDistribute, challengeID, map[string]interface{}{
			"winners": len(payouts),
		})
	})
	if err != nil {
		return nil, err
	}
	return payouts, nil
}
