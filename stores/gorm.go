package stores

import (
	"errors"
	"time"

	"task-tree-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the Postgres-backed Backend.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and runs migrations.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.Reward{},
		&models.RewardUnlock{},
	); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Transact(fn func(Backend) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Users ---

func (s *Store) CreateUser(u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return s.db.Create(u).Error
}

func (s *Store) UserByID(id string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(username string) (*models.User, error) {
	var u models.User
	if err := s.db.First(&u, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) AddPoints(userID string, delta int64) (int64, error) {
	res := s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	var u models.User
	if err := s.db.Select("points").First(&u, "id = ?", userID).Error; err != nil {
		return 0, notFound(err)
	}
	return u.Points, nil
}

// --- Tasks ---

func (s *Store) CreateTask(t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return s.db.Create(t).Error
}

func (s *Store) TaskByID(userID, taskID string) (*models.Task, error) {
	var t models.Task
	if err := s.db.First(&t, "id = ? AND user_id = ?", taskID, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) TasksByUser(userID string, f TaskFilter) ([]models.Task, error) {
	query := s.db.Where("user_id = ?", userID)
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) UpdateTask(userID, taskID string, u TaskUpdate) error {
	changes := map[string]interface{}{}
	if u.Title != nil {
		changes["title"] = *u.Title
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.AssignedTo != nil {
		changes["assigned_to"] = *u.AssignedTo
	}
	if u.DueDate != nil {
		changes["due_date"] = *u.DueDate
	}
	if u.Status != nil {
		changes["status"] = *u.Status
		if *u.Status == models.TaskStatusCompleted {
			changes["completed_at"] = time.Now()
		}
	}
	if len(changes) == 0 {
		return nil
	}

	res := s.db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkTaskCompleted(taskID string, at time.Time) error {
	res := s.db.Model(&models.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTask(taskID string) error {
	res := s.db.Delete(&models.Task{}, "id = ?", taskID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TaskStats(userID string) (TaskStats, error) {
	var stats TaskStats
	err := s.db.Model(&models.Task{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending",
			models.TaskStatusCompleted, models.TaskStatusPending,
		).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	return stats, err
}

func (s *Store) CompletedTaskCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, models.TaskStatusCompleted).
		Count(&count).Error
	return count, err
}

func (s *Store) OverduePendingTasks(now time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.
		Where("status = ? AND due_date IS NOT NULL AND due_date <= ?", models.TaskStatusPending, now).
		Order("due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

// --- Rewards ---

func (s *Store) CreateReward(r *models.Reward) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return s.db.Create(r).Error
}

func (s *Store) Rewards() ([]models.Reward, error) {
	var rewards []models.Reward
	if err := s.db.Order("unlock_points ASC").Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (s *Store) RewardByID(id string) (*models.Reward, error) {
	var r models.Reward
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) SetRewardIcon(id, iconURL string) error {
	res := s.db.Model(&models.Reward{}).Where("id = ?", id).Update("icon_url", iconURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Unlocks ---

func (s *Store) CreateUnlock(u *models.RewardUnlock) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return s.db.Create(u).Error
}

func (s *Store) UnlockExists(userID, rewardID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RewardUnlock{}).
		Where("user_id = ? AND reward_id = ?", userID, rewardID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) UnlockedRewardIDs(userID string) (map[string]bool, error) {
	var unlocks []models.RewardUnlock
	if err := s.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		ids[u.RewardID] = true
	}
	return ids, nil
}
