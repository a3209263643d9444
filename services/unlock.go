package services

import (
	"errors"
	"log"

	"task-tree-system/models"
	"task-tree-system/stores"
)

// UnlockService gates reward claims on the point threshold and records each
// claim at most once per (account, reward) pair.
type UnlockService struct {
	store stores.Backend
	locks *AccountLocks
}

func NewUnlockService(store stores.Backend, locks *AccountLocks) *UnlockService {
	return &UnlockService{store: store, locks: locks}
}

// UnlockResult confirms which reward was claimed.
type UnlockResult struct {
	RewardID   string `json:"reward_id"`
	RewardName string `json:"reward_name"`
}

// RewardState is a catalog entry decorated with the caller's unlock state.
// Unlocked is true once a claim record exists OR the balance already meets
// the threshold; meeting the threshold alone is a passive unlock signal.
// CanUnlock is true only while the threshold is met and no record exists.
type RewardState struct {
	models.Reward
	Unlocked  bool `json:"unlocked"`
	CanUnlock bool `json:"can_unlock"`
}

// UnlockReward claims a reward for the user. Precondition order matches the
// checks clients rely on: reward exists, user exists, balance suffices, not
// yet claimed.
func (s *UnlockService) UnlockReward(userID, rewardID string) (*UnlockResult, error) {
	release := s.locks.Acquire(userID)
	defer release()

	var result *UnlockResult
	err := s.store.Transact(func(tx stores.Backend) error {
		reward, err := tx.RewardByID(rewardID)
		if errors.Is(err, stores.ErrNotFound) {
			return notFoundErr("reward")
		}
		if err != nil {
			return err
		}

		user, err := tx.UserByID(userID)
		if errors.Is(err, stores.ErrNotFound) {
			return notFoundErr("user")
		}
		if err != nil {
			return err
		}

		if user.Points < reward.UnlockPoints {
			return &InsufficientPointsError{Required: reward.UnlockPoints, Balance: user.Points}
		}

		exists, err := tx.UnlockExists(userID, rewardID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyUnlocked
		}

		if err := tx.CreateUnlock(&models.RewardUnlock{UserID: userID, RewardID: rewardID}); err != nil {
			return err
		}
		result = &UnlockResult{RewardID: reward.ID, RewardName: reward.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Rewards] user %s unlocked %q", userID, result.RewardName)
	return result, nil
}

// Reward fetches one catalog entry.
func (s *UnlockService) Reward(rewardID string) (*models.Reward, error) {
	reward, err := s.store.RewardByID(rewardID)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, notFoundErr("reward")
	}
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// UpdateRewardIcon swaps the catalog icon after an upload. The only mutable
// field of a seeded reward.
func (s *UnlockService) UpdateRewardIcon(rewardID, iconURL string) error {
	err := s.store.SetRewardIcon(rewardID, iconURL)
	if errors.Is(err, stores.ErrNotFound) {
		return notFoundErr("reward")
	}
	return err
}

// ListRewards returns the whole catalog decorated for the user, plus the
// user's current balance for the header display.
func (s *UnlockService) ListRewards(userID string) ([]RewardState, int64, error) {
	user, err := s.store.UserByID(userID)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, 0, notFoundErr("user")
	}
	if err != nil {
		return nil, 0, err
	}

	rewards, err := s.store.Rewards()
	if err != nil {
		return nil, 0, err
	}
	claimed, err := s.store.UnlockedRewardIDs(userID)
	if err != nil {
		return nil, 0, err
	}

	states := make([]RewardState, 0, len(rewards))
	for _, r := range rewards {
		affordable := user.Points >= r.UnlockPoints
		states = append(states, RewardState{
			Reward:    r,
			Unlocked:  claimed[r.ID] || affordable,
			CanUnlock: affordable && !claimed[r.ID],
		})
	}
	return states, user.Points, nil
}
