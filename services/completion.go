package services

import (
	"errors"
	"log"
	"time"

	"task-tree-system/models"
	"task-tree-system/stores"
)

// CompletionService awards task points exactly once. The per-account lock
// plus the store transaction keep the status check and the balance write
// from interleaving with a concurrent call for the same account.
type CompletionService struct {
	store stores.Backend
	locks *AccountLocks
}

func NewCompletionService(store stores.Backend, locks *AccountLocks) *CompletionService {
	return &CompletionService{store: store, locks: locks}
}

// CompletionResult reports the award and the resulting balance.
type CompletionResult struct {
	AddedPoints int64 `json:"added_points"`
	TotalPoints int64 `json:"total_points"`
}

// CompleteTask flips a pending task to completed and credits its points to
// the owner. A second call for the same task fails with ErrAlreadyCompleted.
func (s *CompletionService) CompleteTask(userID, taskID string) (*CompletionResult, error) {
	release := s.locks.Acquire(userID)
	defer release()

	var result *CompletionResult
	err := s.store.Transact(func(tx stores.Backend) error {
		task, err := tx.TaskByID(userID, taskID)
		if errors.Is(err, stores.ErrNotFound) {
			return notFoundErr("task")
		}
		if err != nil {
			return err
		}
		if task.Status == models.TaskStatusCompleted {
			return ErrAlreadyCompleted
		}

		points := task.Points
		if points <= 0 {
			points = models.DefaultTaskPoints
		}

		total, err := tx.AddPoints(userID, points)
		if errors.Is(err, stores.ErrNotFound) {
			return notFoundErr("user")
		}
		if err != nil {
			return err
		}
		if err := tx.MarkTaskCompleted(task.ID, time.Now()); err != nil {
			return err
		}

		result = &CompletionResult{AddedPoints: points, TotalPoints: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Points] user %s completed task %s (+%d, total %d)",
		userID, taskID, result.AddedPoints, result.TotalPoints)
	return result, nil
}

// PointsSummary is the balance view shown on the dashboard.
type PointsSummary struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Points         int64  `json:"points"`
	CompletedTasks int64  `json:"completed_tasks"`
}

func (s *CompletionService) Summary(userID string) (*PointsSummary, error) {
	user, err := s.store.UserByID(userID)
	if errors.Is(err, stores.ErrNotFound) {
		return nil, notFoundErr("user")
	}
	if err != nil {
		return nil, err
	}

	completed, err := s.store.CompletedTaskCount(userID)
	if err != nil {
		return nil, err
	}

	return &PointsSummary{
		UserID:         user.ID,
		Username:       user.Username,
		Points:         user.Points,
		CompletedTasks: completed,
	}, nil
}
