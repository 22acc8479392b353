package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
	"habitquest/internal/economy"
	"habitquest/internal/store"
)

// taskLifecycle holds the operations habits, dailies and todos share:
// ownership checks, edits, paid difficulty changes and deletion.
type taskLifecycle struct {
	*Deps
	kind domain.TaskKind
}

// TaskPatch is a partial update of the common task fields.
type TaskPatch struct {
	Title      *string
	Notes      *string
	Difficulty *domain.Difficulty
}

func (p TaskPatch) apply(b *domain.TaskBase) error {
	if p.Difficulty != nil && *p.Difficulty != b.Difficulty {
		return domain.Forbidden("difficulty can only be changed through pay-to-update")
	}
	if p.Title != nil {
		title, err := requireText("title", *p.Title)
		if err != nil {
			return err
		}
		b.Title = title
	}
	if p.Notes != nil {
		b.Notes = p.Notes
	}
	return nil
}

func newTaskBase(userID uuid.UUID, title string, notes *string, difficulty domain.Difficulty, now time.Time) (domain.TaskBase, error) {
	title, err := requireText("title", title)
	if err != nil {
		return domain.TaskBase{}, err
	}
	if difficulty == "" {
		difficulty = domain.DifficultyEasy
	}
	if !difficulty.Valid() {
		return domain.TaskBase{}, domain.BadRequest("unknown difficulty %q", difficulty)
	}
	return domain.TaskBase{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      title,
		Notes:      notes,
		Difficulty: difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// load fetches a task and checks that userID owns it.
func (l *taskLifecycle) load(ctx context.Context, tx store.Tx, id, userID uuid.UUID) (domain.Task, error) {
	task, err := tx.GetTask(ctx, l.kind, id)
	if err != nil {
		return nil, err
	}
	if task.Base().UserID != userID {
		return nil, domain.Forbidden("%s belongs to another user", l.kind)
	}
	return task, nil
}

func (l *taskLifecycle) create(ctx context.Context, task domain.Task) error {
	return l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateTask(ctx, task)
	})
}

func (l *taskLifecycle) get(ctx context.Context, id, userID uuid.UUID) (domain.Task, error) {
	var task domain.Task
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		task, err = l.load(ctx, tx, id, userID)
		return err
	})
	return task, err
}

func (l *taskLifecycle) list(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		tasks, err = tx.ListTasks(ctx, l.kind, userID)
		return err
	})
	return tasks, err
}

func (l *taskLifecycle) logs(ctx context.Context, id, userID uuid.UUID) ([]*domain.TaskLog, error) {
	var logs []*domain.TaskLog
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := l.load(ctx, tx, id, userID); err != nil {
			return err
		}
		var err error
		logs, err = tx.ListTaskLogs(ctx, l.kind, id)
		return err
	})
	return logs, err
}

// update applies patch plus any kind-specific edits in extra.
func (l *taskLifecycle) update(ctx context.Context, id, userID uuid.UUID, patch TaskPatch, extra func(domain.Task) error) (domain.Task, error) {
	var task domain.Task
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if task, err = l.load(ctx, tx, id, userID); err != nil {
			return err
		}
		if err := patch.apply(task.Base()); err != nil {
			return err
		}
		if extra != nil {
			if err := extra(task); err != nil {
				return err
			}
		}
		task.Base().UpdatedAt = l.Clock.Now()
		return tx.UpdateTask(ctx, task)
	})
	return task, err
}

type CompletionResult struct {
	Task    domain.Task     `json:"task"`
	Outcome economy.Outcome `json:"outcome"`
	Gold    int64           `json:"gold"`
	Pet     *domain.Pet     `json:"pet"`
}

// complete finishes a daily or a todo: it pays the reward, cheers up the
// pet and, for dailies, appends a log.
func (l *taskLifecycle) complete(ctx context.Context, id, userID uuid.UUID, notes *string, txType string) (*CompletionResult, error) {
	var res *CompletionResult
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		task, err := l.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		now := l.Clock.Now()
		out, err := l.Engine.EvaluateCompletion(task, now)
		if err != nil {
			return err
		}

		switch t := task.(type) {
		case *domain.Daily:
			t.Completed = true
			t.LastCompleted = &now
		case *domain.Todo:
			t.Completed = true
		}
		task.Base().UpdatedAt = now
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}

		user, err := l.Balance.Apply(ctx, tx, userID, out.Gold, txType, map[string]interface{}{
			"task_id": id.String(),
			"kind":    string(l.kind),
		})
		if err != nil {
			return err
		}
		pet, err := l.applyPetOutcome(ctx, tx, userID, out)
		if err != nil {
			return err
		}

		if l.kind == domain.TaskDaily {
			if err := tx.CreateTaskLog(ctx, &domain.TaskLog{
				TaskID: id,
				UserID: userID,
				Kind:   l.kind,
				Date:   now,
				Notes:  notes,
			}); err != nil {
				return err
			}
		}

		res = &CompletionResult{Task: task, Outcome: out, Gold: user.Gold, Pet: pet}
		return nil
	})
	return res, err
}

type DifficultyChangeResult struct {
	Task   domain.Task              `json:"task"`
	Change economy.DifficultyChange `json:"change"`
	Gold   int64                    `json:"gold"`
}

// payToUpdate changes difficulty: upgrades lock gold rewards for a while,
// downgrades cost gold and lift any lock.
func (l *taskLifecycle) payToUpdate(ctx context.Context, id, userID uuid.UUID, to domain.Difficulty) (*DifficultyChangeResult, error) {
	var res *DifficultyChangeResult
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		task, err := l.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		now := l.Clock.Now()
		base := task.Base()
		change, err := l.Engine.EvaluateDifficultyChange(task, to, user.Gold, now)
		if err != nil {
			return err
		}
		if change.Cost > 0 {
			user, err = l.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, change.Cost, domain.TxDifficultyChange, map[string]interface{}{
				"task_id": id.String(),
				"kind":    string(l.kind),
				"from":    string(base.Difficulty),
				"to":      string(to),
			})
			if err != nil {
				return err
			}
		}

		base.Difficulty = to
		base.GoldRewardLockedUntil = change.LockedUntil
		base.UpdatedAt = now
		if err := tx.UpdateTask(ctx, task); err != nil {
			return err
		}
		res = &DifficultyChangeResult{Task: task, Change: change, Gold: user.Gold}
		return nil
	})
	return res, err
}

type DeletionResult struct {
	Deletion economy.Deletion `json:"deletion"`
	Gold     int64            `json:"gold"`
}

// payToDelete removes the task, charging the deletion price when the task
// is not yet eligible for free removal.
func (l *taskLifecycle) payToDelete(ctx context.Context, id, userID uuid.UUID) (*DeletionResult, error) {
	var res *DeletionResult
	err := l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		task, err := l.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		del, err := l.Engine.EvaluateDeletion(task, user.Gold)
		if err != nil {
			return err
		}
		if del.Mode == economy.DeletePaid {
			user, err = l.Balance.Debit(ctx, tx, userID, domain.CurrencyGold, del.Cost, domain.TxTaskDelete, map[string]interface{}{
				"task_id": id.String(),
				"kind":    string(l.kind),
			})
			if err != nil {
				return err
			}
		}
		if err := tx.DeleteTask(ctx, l.kind, id); err != nil {
			return err
		}
		res = &DeletionResult{Deletion: del, Gold: user.Gold}
		return nil
	})
	return res, err
}

// remove deletes the task only when deletion is free.
func (l *taskLifecycle) remove(ctx context.Context, id, userID uuid.UUID) error {
	return l.runInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		task, err := l.load(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		del, err := l.Engine.EvaluateDeletion(task, 0)
		if del.Mode == economy.DeletePaid {
			return domain.Forbidden("a streak of %d is required to delete for free; use pay-to-delete", del.RequiredStreak)
		}
		if err != nil {
			return err
		}
		return tx.DeleteTask(ctx, l.kind, id)
	})
}
