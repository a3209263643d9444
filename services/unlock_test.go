package services

import (
	"testing"

	"task-tree-system/stores"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnlockService(b stores.Backend) *UnlockService {
	return NewUnlockService(b, NewAccountLocks())
}

func TestUnlockRewardInsufficientPoints(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	user := testUser(t, b, "alice", 99)
	reward := testReward(t, b, "Sunny Peach", 100)

	_, err := svc.UnlockReward(user.ID, reward.ID)

	var insufficient *InsufficientPointsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Required)
	assert.Equal(t, int64(99), insufficient.Balance)
	assert.Equal(t, int64(1), insufficient.Shortfall())
}

func TestUnlockRewardTwice(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	user := testUser(t, b, "alice", 100)
	reward := testReward(t, b, "Sweet Berry", 50)

	result, err := svc.UnlockReward(user.ID, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, reward.ID, result.RewardID)
	assert.Equal(t, "Sweet Berry", result.RewardName)

	_, err = svc.UnlockReward(user.ID, reward.ID)
	require.ErrorIs(t, err, ErrAlreadyUnlocked)

	// No duplicate record.
	ids, err := b.UnlockedRewardIDs(user.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Unlocking never spends points.
	balance, err := b.UserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Points)
}

func TestUnlockRewardNotFound(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	user := testUser(t, b, "alice", 100)
	reward := testReward(t, b, "Sweet Berry", 50)

	var notFound *NotFoundError

	_, err := svc.UnlockReward(user.ID, "no-such-reward")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "reward", notFound.Entity)

	_, err = svc.UnlockReward("no-such-user", reward.ID)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Entity)
}

func TestListRewardsDualUnlockSemantics(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	user := testUser(t, b, "alice", 20)

	free := testReward(t, b, "First Sprout", 0)
	cheap := testReward(t, b, "Sweet Berry", 20)
	pricey := testReward(t, b, "Golden Pomelo", 500)

	states, points, err := svc.ListRewards(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), points)
	require.Len(t, states, 3)

	// Ascending threshold order.
	assert.Equal(t, free.ID, states[0].ID)
	assert.Equal(t, cheap.ID, states[1].ID)
	assert.Equal(t, pricey.ID, states[2].ID)

	// Threshold met counts as unlocked even before an explicit claim.
	assert.True(t, states[0].Unlocked)
	assert.True(t, states[0].CanUnlock)
	assert.True(t, states[1].Unlocked)
	assert.True(t, states[1].CanUnlock)
	assert.False(t, states[2].Unlocked)
	assert.False(t, states[2].CanUnlock)

	_, err = svc.UnlockReward(user.ID, cheap.ID)
	require.NoError(t, err)

	states, _, err = svc.ListRewards(user.ID)
	require.NoError(t, err)
	assert.True(t, states[1].Unlocked)
	assert.False(t, states[1].CanUnlock, "claimed rewards are no longer claimable")
}

func TestListRewardsUnknownUser(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	testReward(t, b, "First Sprout", 0)

	var notFound *NotFoundError
	_, _, err := svc.ListRewards("nobody")
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateRewardIcon(t *testing.T) {
	b := stores.NewMemory()
	svc := newUnlockService(b)
	reward := testReward(t, b, "Sweet Berry", 50)

	require.NoError(t, svc.UpdateRewardIcon(reward.ID, "https://cdn.example.com/berry.png"))

	updated, err := b.RewardByID(reward.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/berry.png", updated.IconURL)

	var notFound *NotFoundError
	err = svc.UpdateRewardIcon("no-such-reward", "x")
	require.ErrorAs(t, err, &notFound)
}
