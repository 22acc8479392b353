package service

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

// DailyService manages tasks that reset every calendar day. The reset is
// applied when a daily is read, never stored ahead of time.
type DailyService struct {
	*Deps
	life *taskLifecycle
}

func NewDailyService(d *Deps) *DailyService {
	return &DailyService{Deps: d, life: &taskLifecycle{Deps: d, kind: domain.TaskDaily}}
}

type CreateDailyInput struct {
	Title      string
	Notes      *string
	Difficulty domain.Difficulty
}

func (s *DailyService) Create(ctx context.Context, userID uuid.UUID, in CreateDailyInput) (*domain.Daily, error) {
	base, err := newTaskBase(userID, in.Title, in.Notes, in.Difficulty, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	d := &domain.Daily{TaskBase: base}
	if err := s.life.create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DailyService) view(t domain.Task) *domain.Daily {
	d := t.(*domain.Daily).AsOf(s.Clock.Now())
	return &d
}

func (s *DailyService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Daily, error) {
	tasks, err := s.life.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Daily, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.view(t))
	}
	return out, nil
}

func (s *DailyService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Daily, error) {
	t, err := s.life.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

func (s *DailyService) Update(ctx context.Context, id, userID uuid.UUID, patch TaskPatch) (*domain.Daily, error) {
	t, err := s.life.update(ctx, id, userID, patch, nil)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Complete marks the daily done for today and pays its reward.
func (s *DailyService) Complete(ctx context.Context, id, userID uuid.UUID, notes *string) (*CompletionResult, error) {
	res, err := s.life.complete(ctx, id, userID, notes, domain.TxDailyComplete)
	if err != nil {
		return nil, err
	}
	res.Task = s.view(res.Task)
	return res, nil
}

func (s *DailyService) Logs(ctx context.Context, id, userID uuid.UUID) ([]*domain.TaskLog, error) {
	return s.life.logs(ctx, id, userID)
}

func (s *DailyService) PayToUpdate(ctx context.Context, id, userID uuid.UUID, to domain.Difficulty) (*DifficultyChangeResult, error) {
	res, err := s.life.payToUpdate(ctx, id, userID, to)
	if err != nil {
		return nil, err
	}
	res.Task = s.view(res.Task)
	return res, nil
}

func (s *DailyService) PayToDelete(ctx context.Context, id, userID uuid.UUID) (*DeletionResult, error) {
	return s.life.payToDelete(ctx, id, userID)
}

func (s *DailyService) Remove(ctx context.Context, id, userID uuid.UUID) error {
	return s.life.remove(ctx, id, userID)
}
