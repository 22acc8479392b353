package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"habitquest/internal/domain"
)

func (t *tx) putTask(task domain.Task, mustExist bool) error {
	base := task.Base()
	if mustExist {
		if _, err := t.GetTask(context.Background(), task.Kind(), base.ID); err != nil {
			return err
		}
	} else {
		t.st.track(&base.ID)
	}

	switch v := task.(type) {
	case *domain.Habit:
		t.st.habits[base.ID] = *v
	case *domain.Daily:
		t.st.dailies[base.ID] = *v
	case *domain.Todo:
		t.st.todos[base.ID] = *v
	default:
		return domain.BadRequest("unknown task kind %s", task.Kind())
	}
	return nil
}

func (t *tx) CreateTask(ctx context.Context, task domain.Task) error {
	return t.putTask(task, false)
}

func (t *tx) UpdateTask(ctx context.Context, task domain.Task) error {
	return t.putTask(task, true)
}

func (t *tx) GetTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) (domain.Task, error) {
	switch kind {
	case domain.TaskHabit:
		if h, ok := t.st.habits[id]; ok {
			return &h, nil
		}
	case domain.TaskDaily:
		if d, ok := t.st.dailies[id]; ok {
			return &d, nil
		}
	case domain.TaskTodo:
		if td, ok := t.st.todos[id]; ok {
			return &td, nil
		}
	}
	return nil, domain.NotFound("%s not found", kind)
}

func (t *tx) ListTasks(ctx context.Context, kind domain.TaskKind, userID uuid.UUID) ([]domain.Task, error) {
	var bases []*domain.TaskBase
	byBase := make(map[*domain.TaskBase]domain.Task)
	add := func(task domain.Task) {
		if task.Base().UserID == userID {
			bases = append(bases, task.Base())
			byBase[task.Base()] = task
		}
	}

	switch kind {
	case domain.TaskHabit:
		for _, h := range t.st.habits {
			add(&h)
		}
	case domain.TaskDaily:
		for _, d := range t.st.dailies {
			add(&d)
		}
	case domain.TaskTodo:
		for _, td := range t.st.todos {
			add(&td)
		}
	}

	sortNewestFirst(t.st, bases, func(b *domain.TaskBase) (time.Time, uuid.UUID) { return b.CreatedAt, b.ID })
	out := make([]domain.Task, 0, len(bases))
	for _, b := range bases {
		out = append(out, byBase[b])
	}
	return out, nil
}

func (t *tx) DeleteTask(ctx context.Context, kind domain.TaskKind, id uuid.UUID) error {
	if _, err := t.GetTask(ctx, kind, id); err != nil {
		return err
	}
	switch kind {
	case domain.TaskHabit:
		delete(t.st.habits, id)
	case domain.TaskDaily:
		delete(t.st.dailies, id)
	case domain.TaskTodo:
		delete(t.st.todos, id)
	}
	for logID, l := range t.st.logs {
		if l.Kind == kind && l.TaskID == id {
			delete(t.st.logs, logID)
		}
	}
	return nil
}

func (t *tx) CreateTaskLog(ctx context.Context, l *domain.TaskLog) error {
	t.st.track(&l.ID)
	t.st.logs[l.ID] = *l
	return nil
}

func (t *tx) ListTaskLogs(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) ([]*domain.TaskLog, error) {
	var out []*domain.TaskLog
	for _, l := range t.st.logs {
		if l.Kind == kind && l.TaskID == taskID {
			out = append(out, &l)
		}
	}
	sortNewestFirst(t.st, out, func(l *domain.TaskLog) (time.Time, uuid.UUID) { return l.Date, l.ID })
	return out, nil
}

func (t *tx) LatestTaskLog(ctx context.Context, kind domain.TaskKind, taskID uuid.UUID) (*domain.TaskLog, error) {
	logs, err := t.ListTaskLogs(ctx, kind, taskID)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	return logs[0], nil
}

func (t *tx) CreateReward(ctx context.Context, r *domain.Reward) error {
	t.st.track(&r.ID)
	t.st.rewards[r.ID] = *r
	return nil
}

func (t *tx) GetReward(ctx context.Context, id uuid.UUID) (*domain.Reward, error) {
	r, ok := t.st.rewards[id]
	if !ok {
		return nil, domain.NotFound("reward not found")
	}
	return &r, nil
}

func (t *tx) ListRewards(ctx context.Context, userID uuid.UUID) ([]*domain.Reward, error) {
	var out []*domain.Reward
	for _, r := range t.st.rewards {
		if r.UserID == userID {
			out = append(out, &r)
		}
	}
	sortNewestFirst(t.st, out, func(r *domain.Reward) (time.Time, uuid.UUID) { return r.CreatedAt, r.ID })
	return out, nil
}

func (t *tx) UpdateReward(ctx context.Context, r *domain.Reward) error {
	if _, ok := t.st.rewards[r.ID]; !ok {
		return domain.NotFound("reward not found")
	}
	t.st.rewards[r.ID] = *r
	return nil
}

func (t *tx) DeleteReward(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.st.rewards[id]; !ok {
		return domain.NotFound("reward not found")
	}
	delete(t.st.rewards, id)
	return nil
}
