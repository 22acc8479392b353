package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/domain"
	"habitquest/internal/store"
)

func seedUser(t *testing.T, s *Store, gold int64) *domain.User {
	t.Helper()
	u := &domain.User{Email: "a@example.com", Username: "alice", Gold: gold}
	require.NoError(t, s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.CreateUser(ctx, u)
	}))
	require.NotEqual(t, uuid.Nil, u.ID)
	return u
}

func TestRollbackOnError(t *testing.T) {
	s := New()
	u := seedUser(t, s, 100)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.AdjustBalance(ctx, u.ID, -40, 0); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		got, err := tx.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Gold)
		return nil
	}))
}

func TestAdjustBalanceNeverNegative(t *testing.T) {
	s := New()
	u := seedUser(t, s, 10)

	err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AdjustBalance(ctx, u.ID, -11, 0)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestConcurrentDebitsAreSerial(t *testing.T) {
	s := New()
	u := seedUser(t, s, 100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
				cur, err := tx.GetUser(ctx, u.ID)
				if err != nil {
					return err
				}
				if cur.Gold < 30 {
					return domain.ErrInsufficientFunds
				}
				_, err = tx.AdjustBalance(ctx, u.ID, -30, 0)
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, succeeded)
}

func TestGroupNameUnique(t *testing.T) {
	s := New()
	err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, tx.CreateGroup(ctx, &domain.Group{Name: "Runners"}))
		return tx.CreateGroup(ctx, &domain.Group{Name: "runners"})
	})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestTaskLogsNewestFirst(t *testing.T) {
	s := New()
	u := seedUser(t, s, 0)
	day := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		h := &domain.Habit{TaskBase: domain.TaskBase{UserID: u.ID, Title: "Read", Difficulty: domain.DifficultyEasy}, Type: domain.HabitPositive}
		require.NoError(t, tx.CreateTask(ctx, h))

		latest, err := tx.LatestTaskLog(ctx, domain.TaskHabit, h.ID)
		require.NoError(t, err)
		assert.Nil(t, latest)

		for i := 0; i < 3; i++ {
			require.NoError(t, tx.CreateTaskLog(ctx, &domain.TaskLog{TaskID: h.ID, UserID: u.ID, Kind: domain.TaskHabit, Date: day.AddDate(0, 0, i)}))
		}
		latest, err = tx.LatestTaskLog(ctx, domain.TaskHabit, h.ID)
		require.NoError(t, err)
		assert.Equal(t, day.AddDate(0, 0, 2), latest.Date)

		require.NoError(t, tx.DeleteTask(ctx, domain.TaskHabit, h.ID))
		logs, err := tx.ListTaskLogs(ctx, domain.TaskHabit, h.ID)
		require.NoError(t, err)
		assert.Empty(t, logs)

		_, err = tx.GetTask(ctx, domain.TaskHabit, h.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		return nil
	}))
}

func TestFinishersOrder(t *testing.T) {
	s := New()
	c := &domain.Challenge{Title: "Plank"}
	secs := func(v int64) *int64 { return &v }

	require.NoError(t, s.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		require.NoError(t, tx.CreateChallenge(ctx, c))
		for i, ct := range []*int64{secs(50), nil, secs(20), secs(50)} {
			p := &domain.Participation{ChallengeID: c.ID, UserID: uuid.New(), Status: domain.StatusActive, JoinedAt: time.Unix(int64(i), 0)}
			if ct != nil {
				p.Completed = true
				p.CompletionTime = ct
			}
			require.NoError(t, tx.CreateParticipation(ctx, p))
		}

		got, err := tx.ListFinishers(ctx, c.ID, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, int64(20), *got[0].CompletionTime)
		assert.True(t, got[1].JoinedAt.Before(got[2].JoinedAt))
		return nil
	}))
}
