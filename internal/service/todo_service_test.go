package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/domain"
)

func TestTodoCompletesOnce(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	due := testStart.Add(48 * time.Hour)
	todo, err := f.todos.Create(f.ctx, user.ID, CreateTodoInput{Title: "File taxes", Difficulty: domain.DifficultyMedium, DueDate: &due})
	require.NoError(t, err)

	res, err := f.todos.Complete(f.ctx, todo.ID, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 8, res.Outcome.Gold)
	assert.EqualValues(t, 108, res.Gold)

	f.clock.Advance(72 * time.Hour)
	_, err = f.todos.Complete(f.ctx, todo.ID, user.ID)
	requireKind(t, err, domain.KindConflict)

	got, err := f.todos.Get(f.ctx, todo.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
}

func TestTodoUpdateAndRemove(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	other := f.register("bob")
	todo, err := f.todos.Create(f.ctx, user.ID, CreateTodoInput{Title: "Call mom"})
	require.NoError(t, err)

	due := testStart.Add(time.Hour)
	got, err := f.todos.Update(f.ctx, todo.ID, user.ID, TodoPatch{TaskPatch: TaskPatch{Notes: ptr("Sunday")}, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "Sunday", *got.Notes)
	assert.Equal(t, due, *got.DueDate)

	_, err = f.todos.Update(f.ctx, todo.ID, user.ID, TodoPatch{TaskPatch: TaskPatch{Title: ptr("   ")}})
	requireKind(t, err, domain.KindBadRequest)

	err = f.todos.Remove(f.ctx, todo.ID, other.ID)
	requireKind(t, err, domain.KindForbidden)

	require.NoError(t, f.todos.Remove(f.ctx, todo.ID, user.ID))
	list, err := f.todos.List(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTodoCreateValidation(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")

	_, err := f.todos.Create(f.ctx, user.ID, CreateTodoInput{Title: ""})
	requireKind(t, err, domain.KindBadRequest)

	_, err = f.todos.Create(f.ctx, user.ID, CreateTodoInput{Title: "x", Difficulty: "LEGENDARY"})
	requireKind(t, err, domain.KindBadRequest)
}
