package repository

import (
	"context"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

const taskBaseColumns = `id, user_id, title, notes, difficulty, gold_reward_locked_until, created_at, updated_at`

type taskTable struct {
	name    string
	columns string
	scan    func(rowScanner) (domain.Task, error)
}

var taskTables = map[domain.TaskKind]taskTable{
	domain.TaskHabit: {
		name:    "habits",
		columns: taskBaseColumns + `, type, is_paused, current_streak, longest_streak, positive_counter, negative_counter`,
		scan: func(row rowScanner) (domain.Task, error) {
			var h domain.Habit
			err := row.Scan(baseDest(&h.TaskBase,
				&h.Type, &h.IsPaused, &h.CurrentStreak, &h.LongestStreak, &h.PositiveCounter, &h.NegativeCounter)...)
			return &h, err
		},
	},
	domain.TaskDaily: {
		name:    "dailies",
		columns: taskBaseColumns + `, completed, last_completed`,
		scan: func(row rowScanner) (domain.Task, error) {
			var d domain.Daily
			err := row.Scan(baseDest(&d.TaskBase, &d.Completed, &d.LastCompleted)...)
			return &d, err
		},
	},
	domain.TaskTodo: {
		name:    "todos",
		columns: taskBaseColumns + `, completed, due_date`,
		scan: func(row rowScanner) (domain.Task, error) {
			var t domain.Todo
			err := row.Scan(baseDest(&t.TaskBase, &t.Completed, &t.DueDate)...)
			return &t, err
		},
	},
}

func baseDest(b *domain.TaskBase, extra ...any) []any {
	return append([]any{
		&b.ID, &b.UserID, &b.Title, &b.Notes, &b.Difficulty, &b.GoldRewardLockedUntil, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
}

func tableFor(kind domain.TaskKind) (taskTable, error) {
	t, ok := taskTables[kind]
	if !ok {
		return taskTable{}, domain.BadRequest("unknown task kind %q", kind)
	}
	return t, nil
}

func (r *Tx) CreateTask(ctx context.Context, task domain.Task) error {
	b := task.Base()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	var err error
	switch t := task.(type) {
	case *domain.Habit:
		_, err = r.tx.Exec(ctx,
			`INSERT INTO habits (`+taskTables[domain.TaskHabit].columns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			b.ID, b.UserID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.CreatedAt, b.UpdatedAt,
			t.Type, t.IsPaused, t.CurrentStreak, t.LongestStreak, t.PositiveCounter, t.NegativeCounter,
		)
	case *domain.Daily:
		_, err = r.tx.Exec(ctx,
			`INSERT INTO dailies (`+taskTables[domain.TaskDaily].columns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			b.ID, b.UserID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.CreatedAt, b.UpdatedAt,
			t.Completed, t.LastCompleted,
		)
	case *domain.Todo:
		_, err = r.tx.Exec(ctx,
			`INSERT INTO todos (`+taskTables[domain.TaskTodo].columns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			b.ID, b.UserID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.CreatedAt, b.UpdatedAt,
			t.Completed, t.DueDate,
		)
	default:
		return domain.BadRequest("unknown task kind %q", task.Kind())
	}
	return translate(err, string(task.Kind()))
}

// GetTask locks the task row for the rest of the transaction.
func (r *Tx) GetTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) (domain.Task, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	task, err := t.scan(r.tx.QueryRow(ctx,
		`SELECT `+t.columns+` FROM `+t.name+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, string(kind))
	}
	return task, nil
}

func (r *Tx) ListTasks(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) ([]domain.Task, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.tx.Query(ctx,
		`SELECT `+t.columns+` FROM `+t.name+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		task, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *Tx) UpdateTask(ctx context.Context, task domain.Task) error {
	b := task.Base()
	var (
		what = string(task.Kind())
		err  error
	)
	switch t := task.(type) {
	case *domain.Habit:
		tag, e := r.tx.Exec(ctx,
			`UPDATE habits SET title = $2, notes = $3, difficulty = $4, gold_reward_locked_until = $5, updated_at = $6,
			        type = $7, is_paused = $8, current_streak = $9, longest_streak = $10,
			        positive_counter = $11, negative_counter = $12
			 WHERE id = $1`,
			b.ID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.UpdatedAt,
			t.Type, t.IsPaused, t.CurrentStreak, t.LongestStreak, t.PositiveCounter, t.NegativeCounter,
		)
		err = expectOne(tag, e, what)
	case *domain.Daily:
		tag, e := r.tx.Exec(ctx,
			`UPDATE dailies SET title = $2, notes = $3, difficulty = $4, gold_reward_locked_until = $5, updated_at = $6,
			        completed = $7, last_completed = $8
			 WHERE id = $1`,
			b.ID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.UpdatedAt,
			t.Completed, t.LastCompleted,
		)
		err = expectOne(tag, e, what)
	case *domain.Todo:
		tag, e := r.tx.Exec(ctx,
			`UPDATE todos SET title = $2, notes = $3, difficulty = $4, gold_reward_locked_until = $5, updated_at = $6,
			        completed = $7, due_date = $8
			 WHERE id = $1`,
			b.ID, b.Title, b.Notes, b.Difficulty, b.GoldRewardLockedUntil, b.UpdatedAt,
			t.Completed, t.DueDate,
		)
		err = expectOne(tag, e, what)
	default:
		return domain.BadRequest("unknown task kind %q", task.Kind())
	}
	return err
}

func (r *Tx) DeleteTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.tx.Exec(ctx, `DELETE FROM task_logs WHERE kind = $1 AND task_id = $2`, kind, id); err != nil {
		return err
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM `+t.name+` WHERE id = $1`, id)
	return expectOne(tag, err, string(kind))
}

const taskLogColumns = `id, task_id, user_id, kind, date, completed, notes`

func scanTaskLog(row rowScanner) (*domain.TaskLog, error) {
	var l domain.TaskLog
	if err := row.Scan(&l.ID, &l.TaskID, &l.UserID, &l.Kind, &l.Date, &l.Completed, &l.Notes); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Tx) CreateTaskLog(ctx context.Context, l *domain.TaskLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := r.tx.Exec(ctx,
		`INSERT INTO task_logs (`+taskLogColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.TaskID, l.UserID, l.Kind, l.Date, l.Completed, l.Notes,
	)
	return translate(err, "task log")
}

func (r *Tx) LatestTaskLog(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) (*domain.TaskLog, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT `+taskLogColumns+` FROM task_logs WHERE kind = $1 AND task_id = $2 ORDER BY date DESC LIMIT 1`,
		kind, taskID)
	if err != nil {
		return nil, err
	}
	logs, err := collect(rows, scanTaskLog)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return logs[0], nil
}

func (r *Tx) ListTaskLogs(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) ([]*domain.TaskLog, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT `+taskLogColumns+` FROM task_logs WHERE kind = $1 AND task_id = $2 ORDER BY date DESC`,
		kind, taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTaskLog)
}
