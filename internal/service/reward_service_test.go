package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/domain"
)

func TestRewardRedeem(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")

	r, err := f.rewards.Create(f.ctx, user.ID, RewardInput{Title: "Movie night", Cost: 60})
	require.NoError(t, err)

	res, err := f.rewards.Redeem(f.ctx, r.ID, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 40, res.Gold)

	_, err = f.rewards.Redeem(f.ctx, r.ID, user.ID)
	requireKind(t, err, domain.KindConflict)
	assert.EqualValues(t, 40, f.gold(user.ID))

	txs := f.ledger(user.ID)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxRewardRedeem, txs[0].Type)
}

func TestRewardCRUD(t *testing.T) {
	f := newFixture(t)
	user := f.register("ada")
	other := f.register("bob")

	_, err := f.rewards.Create(f.ctx, user.ID, RewardInput{Title: "Cake", Cost: -1})
	requireKind(t, err, domain.KindBadRequest)

	r, err := f.rewards.Create(f.ctx, user.ID, RewardInput{Title: "Cake", Cost: 10})
	require.NoError(t, err)

	updated, err := f.rewards.Update(f.ctx, r.ID, user.ID, RewardPatch{Cost: ptr(int64(25))})
	require.NoError(t, err)
	assert.EqualValues(t, 25, updated.Cost)

	_, err = f.rewards.Update(f.ctx, r.ID, other.ID, RewardPatch{Title: ptr("Mine now")})
	requireKind(t, err, domain.KindForbidden)

	list, err := f.rewards.List(f.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.rewards.Delete(f.ctx, r.ID, user.ID))
	list, err = f.rewards.List(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
