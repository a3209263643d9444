package stores

import (
	"errors"
	"time"

	"task-tree-system/models"
)

// ErrNotFound is returned by every fetch that misses, including writes scoped
// to a row that does not exist.
var ErrNotFound = errors.New("record not found")

// TaskFilter narrows a task listing. Empty fields match everything; both
// fields set means both must match.
type TaskFilter struct {
	Status   string
	Category string
}

// TaskUpdate carries optional field changes; nil means leave untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	AssignedTo  *string
	Status      *string
	DueDate     *time.Time
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.AssignedTo == nil &&
		u.Status == nil && u.DueDate == nil
}

// TaskStats are the per-user counters the dashboard shows.
type TaskStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

// Backend is the persistence boundary. Accessors are thin: no invariant
// enforcement lives here, the services own all business rules. Two
// implementations exist, GORM over Postgres for deployments and an in-memory
// one for tests.
type Backend interface {
	// Transact runs fn against a transactional view of the backend; returning
	// an error rolls the unit of work back.
	Transact(fn func(Backend) error) error
	Close() error

	CreateUser(u *models.User) error
	UserByID(id string) (*models.User, error)
	UserByUsername(username string) (*models.User, error)
	// AddPoints increments the balance and returns the new total.
	AddPoints(userID string, delta int64) (int64, error)

	CreateTask(t *models.Task) error
	// TaskByID is ownership-scoped: a task owned by someone else is not found.
	TaskByID(userID, taskID string) (*models.Task, error)
	// TasksByUser lists most-recently-created first.
	TasksByUser(userID string, f TaskFilter) ([]models.Task, error)
	UpdateTask(userID, taskID string, u TaskUpdate) error
	MarkTaskCompleted(taskID string, at time.Time) error
	DeleteTask(taskID string) error
	TaskStats(userID string) (TaskStats, error)
	CompletedTaskCount(userID string) (int64, error)
	// OverduePendingTasks lists pending tasks whose due date has passed.
	OverduePendingTasks(now time.Time) ([]models.Task, error)

	CreateReward(r *models.Reward) error
	// Rewards lists the catalog by ascending threshold.
	Rewards() ([]models.Reward, error)
	RewardByID(id string) (*models.Reward, error)
	SetRewardIcon(id, iconURL string) error

	CreateUnlock(u *models.RewardUnlock) error
	UnlockExists(userID, rewardID string) (bool, error)
	UnlockedRewardIDs(userID string) (map[string]bool, error)
}
