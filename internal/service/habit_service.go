package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/economy"
	"habitquest/internal/store"
)

type HabitService struct {
	*Deps
	life *taskLifecycle
}

func NewHabitService(d *Deps) *HabitService {
	return &HabitService{Deps: d, life: &taskLifecycle{Deps: d, kind: domain.TaskHabit}}
}

type CreateHabitInput struct {
	Title      string
	Notes      *string
	Difficulty domain.Difficulty
	Type       domain.HabitType
}

func (s *HabitService) Create(ctx context.Context, userID uuid.UUID, in CreateHabitInput) (*domain.Habit, error) {
	base, err := newTaskBase(userID, in.Title, in.Notes, in.Difficulty, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = domain.HabitPositive
	}
	if !in.Type.Valid() {
		return nil, domain.BadRequest("unknown habit type %q", in.Type)
	}
	h := &domain.Habit{TaskBase: base, Type: in.Type}
	if err := s.life.create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Habit, error) {
	tasks, err := s.life.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Habit, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.(*domain.Habit))
	}
	return out, nil
}

func (s *HabitService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Habit, error) {
	t, err := s.life.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return t.(*domain.Habit), nil
}

// HabitPatch edits a habit. Difficulty is accepted only to reject it.
type HabitPatch struct {
	TaskPatch
	Type     *domain.HabitType
	IsPaused *bool
}

func (s *HabitService) Update(ctx context.Context, id, userID uuid.UUID, patch HabitPatch) (*domain.Habit, error) {
	t, err := s.life.update(ctx, id, userID, patch.TaskPatch, func(t domain.Task) error {
		h := t.(*domain.Habit)
		if patch.Type != nil {
			if !patch.Type.Valid() {
				return domain.BadRequest("unknown habit type %q", *patch.Type)
			}
			h.Type = *patch.Type
		}
		if patch.IsPaused != nil {
			h.IsPaused = *patch.IsPaused
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.(*domain.Habit), nil
}

type HabitLogResult struct {
	Habit      *domain.Habit   `json:"habit"`
	Log        *domain.TaskLog `json:"log"`
	GoldChange int64           `json:"gold_change"`
	Gold       int64           `json:"gold"`
	Pet        *domain.Pet     `json:"pet"`
}

// Log records a positive (completed) or negative log for today. Only one
// log per habit per calendar day is accepted.
func (s *HabitService) Log(ctx context.Context, id, userID uuid.UUID, completed bool, notes *string) (*HabitLogResult, error) {
	var res *HabitLogResult
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		t, err := s.life.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		h := t.(*domain.Habit)
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		last, err := tx.LatestTaskLog(ctx, domain.TaskHabit, id)
		if err != nil {
			return err
		}
		var lastDate *time.Time
		if last != nil {
			lastDate = &last.Date
		}

		now := s.Clock.Now()
		out, err := s.Engine.EvaluateHabitLog(h, completed, lastDate, user.Gold, now)
		if err != nil {
			return err
		}

		h.CurrentStreak = out.CurrentStreak
		h.LongestStreak = out.LongestStreak
		h.PositiveCounter = out.PositiveCounter
		h.NegativeCounter = out.NegativeCounter
		h.UpdatedAt = now
		if err := tx.UpdateTask(ctx, h); err != nil {
			return err
		}

		if out.Gold != 0 {
			user, err = s.Balance.Apply(ctx, tx, userID, out.Gold, domain.TxHabitLog, map[string]interface{}{
				"task_id":   id.String(),
				"completed": completed,
			})
			if err != nil {
				return err
			}
		}
		pet, err := s.applyPetOutcome(ctx, tx, userID, out.Outcome)
		if err != nil {
			return err
		}

		entry := &domain.TaskLog{
			TaskID:    id,
			UserID:    userID,
			Kind:      domain.TaskHabit,
			Date:      now,
			Completed: &completed,
			Notes:     notes,
		}
		if err := tx.CreateTaskLog(ctx, entry); err != nil {
			return err
		}

		res = &HabitLogResult{Habit: h, Log: entry, GoldChange: out.Gold, Gold: user.Gold, Pet: pet}
		return nil
	})
	return res, err
}

func (s *HabitService) Logs(ctx context.Context, id, userID uuid.UUID) ([]*domain.TaskLog, error) {
	return s.life.logs(ctx, id, userID)
}

func (s *HabitService) PayToUpdate(ctx context.Context, id, userID uuid.UUID, to domain.Difficulty) (*DifficultyChangeResult, error) {
	return s.life.payToUpdate(ctx, id, userID, to)
}

// DeletionQuote is the deletion price and whether the user can pay it now.
type DeletionQuote struct {
	economy.Deletion
	Affordable bool `json:"affordable"`
}

// DeletionQuote reports whether deleting the habit would be free and what it would cost.
func (s *HabitService) DeletionQuote(ctx context.Context, id, userID uuid.UUID) (DeletionQuote, error) {
	var q DeletionQuote
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		t, err := s.life.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		del, err := s.Engine.EvaluateDeletion(t, user.Gold)
		if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
			return err
		}
		q = DeletionQuote{Deletion: del, Affordable: err == nil}
		return nil
	})
	return q, err
}

func (s *HabitService) PayToDelete(ctx context.Context, id, userID uuid.UUID) (*DeletionResult, error) {
	return s.life.payToDelete(ctx, id, userID)
}

// Remove deletes the habit for free; it fails Forbidden until the streak
// reaches the difficulty's threshold.
func (s *HabitService) Remove(ctx context.Context, id, userID uuid.UUID) error {
	return s.life.remove(ctx, id, userID)
}
