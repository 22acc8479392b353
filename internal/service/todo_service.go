package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

type TodoService struct {
	*Deps
	life *taskLifecycle
}

func NewTodoService(d *Deps) *TodoService {
	return &TodoService{Deps: d, life: &taskLifecycle{Deps: d, kind: domain.TaskTodo}}
}

type CreateTodoInput struct {
	Title      string
	Notes      *string
	Difficulty domain.Difficulty
	DueDate    *time.Time
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, in CreateTodoInput) (*domain.Todo, error) {
	base, err := newTaskBase(userID, in.Title, in.Notes, in.Difficulty, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	t := &domain.Todo{TaskBase: base, DueDate: in.DueDate}
	if err := s.life.create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	tasks, err := s.life.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Todo, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.(*domain.Todo))
	}
	return out, nil
}

func (s *TodoService) Get(ctx context.Context, id, userID uuid.UUID) (*domain.Todo, error) {
	t, err := s.life.get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return t.(*domain.Todo), nil
}

// TodoPatch edits a todo. Completion only happens through Complete.
type TodoPatch struct {
	TaskPatch
	DueDate *time.Time
}

func (s *TodoService) Update(ctx context.Context, id, userID uuid.UUID, patch TodoPatch) (*domain.Todo, error) {
	t, err := s.life.update(ctx, id, userID, patch.TaskPatch, func(t domain.Task) error {
		if patch.DueDate != nil {
			t.(*domain.Todo).DueDate = patch.DueDate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.(*domain.Todo), nil
}

// Complete closes the todo for good and pays its reward.
func (s *TodoService) Complete(ctx context.Context, id, userID uuid.UUID) (*CompletionResult, error) {
	return s.life.complete(ctx, id, userID, nil, domain.TxTodoComplete)
}

func (s *TodoService) PayToUpdate(ctx context.Context, id, userID uuid.UUID, to domain.Difficulty) (*DifficultyChangeResult, error) {
	return s.life.payToUpdate(ctx, id, userID, to)
}

func (s *TodoService) Remove(ctx context.Context, id, userID uuid.UUID) error {
	return s.life.remove(ctx, id, userID)
}
