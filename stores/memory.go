package stores

import (
	"sort"
	"sync"
	"time"

	"task-tree-system/models"

	"github.com/google/uuid"
)

// Memory is the in-memory Backend. It backs the test suites and is handy for
// running the server without Postgres. Transact snapshots all state up front
// and restores it when the unit of work fails, so a mid-sequence error never
// leaves a partial write behind.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	tasks   map[string]*models.Task
	rewards map[string]*models.Reward
	unlocks map[string]*models.RewardUnlock

	// txMu serializes transactions so a restore never clobbers another
	// in-flight unit of work.
	txMu sync.Mutex

	// taskSeq breaks created_at ties so listing order is stable.
	taskSeq map[string]int64
	seq     int64
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]*models.User),
		tasks:   make(map[string]*models.Task),
		rewards: make(map[string]*models.Reward),
		unlocks: make(map[string]*models.RewardUnlock),
		taskSeq: make(map[string]int64),
	}
}

type memorySnapshot struct {
	users   map[string]*models.User
	tasks   map[string]*models.Task
	rewards map[string]*models.Reward
	unlocks map[string]*models.RewardUnlock
	taskSeq map[string]int64
	seq     int64
}

func cloneRecords[T any](src map[string]*T) map[string]*T {
	dst := make(map[string]*T, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}

func (m *Memory) snapshot() memorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seq := make(map[string]int64, len(m.taskSeq))
	for k, v := range m.taskSeq {
		seq[k] = v
	}
	return memorySnapshot{
		users:   cloneRecords(m.users),
		tasks:   cloneRecords(m.tasks),
		rewards: cloneRecords(m.rewards),
		unlocks: cloneRecords(m.unlocks),
		taskSeq: seq,
		seq:     m.seq,
	}
}

func (m *Memory) restore(snap memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = snap.users
	m.tasks = snap.tasks
	m.rewards = snap.rewards
	m.unlocks = snap.unlocks
	m.taskSeq = snap.taskSeq
	m.seq = snap.seq
}

func (m *Memory) Transact(fn func(Backend) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// --- Users ---

func (m *Memory) CreateUser(u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UserByID(id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) UserByUsername(username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) AddPoints(userID string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, ErrNotFound
	}
	u.Points += delta
	return u.Points, nil
}

// --- Tasks ---

func (m *Memory) CreateTask(t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.seq++
	m.taskSeq[t.ID] = m.seq
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *Memory) TaskByID(userID, taskID string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) TasksByUser(userID string, f TaskFilter) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return m.taskSeq[tasks[i].ID] > m.taskSeq[tasks[j].ID]
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m *Memory) UpdateTask(userID, taskID string, u TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.AssignedTo != nil {
		t.AssignedTo = *u.AssignedTo
	}
	if u.DueDate != nil {
		due := *u.DueDate
		t.DueDate = &due
	}
	if u.Status != nil {
		t.Status = *u.Status
		if *u.Status == models.TaskStatusCompleted {
			now := time.Now()
			t.CompletedAt = &now
		}
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) MarkTaskCompleted(taskID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	t.Status = models.TaskStatusCompleted
	t.CompletedAt = &at
	t.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteTask(taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, taskID)
	delete(m.taskSeq, taskID)
	return nil
}

func (m *Memory) TaskStats(userID string) (TaskStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats TaskStats
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		stats.Total++
		switch t.Status {
		case models.TaskStatusCompleted:
			stats.Completed++
		case models.TaskStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

func (m *Memory) CompletedTaskCount(userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, t := range m.tasks {
		if t.UserID == userID && t.Status == models.TaskStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (m *Memory) OverduePendingTasks(now time.Time) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var tasks []models.Task
	for _, t := range m.tasks {
		if t.Status == models.TaskStatusPending && t.DueDate != nil && !t.DueDate.After(now) {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
	return tasks, nil
}

// --- Rewards ---

func (m *Memory) CreateReward(r *models.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	m.rewards[r.ID] = &cp
	return nil
}

func (m *Memory) Rewards() ([]models.Reward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rewards := make([]models.Reward, 0, len(m.rewards))
	for _, r := range m.rewards {
		rewards = append(rewards, *r)
	}
	sort.Slice(rewards, func(i, j int) bool {
		return rewards[i].UnlockPoints < rewards[j].UnlockPoints
	})
	return rewards, nil
}

func (m *Memory) RewardByID(id string) (*models.Reward, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rewards[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) SetRewardIcon(id, iconURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rewards[id]
	if !ok {
		return ErrNotFound
	}
	r.IconURL = iconURL
	return nil
}

// --- Unlocks ---

func (m *Memory) CreateUnlock(u *models.RewardUnlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.UnlockedAt.IsZero() {
		u.UnlockedAt = time.Now()
	}
	cp := *u
	m.unlocks[u.ID] = &cp
	return nil
}

func (m *Memory) UnlockExists(userID, rewardID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.unlocks {
		if u.UserID == userID && u.RewardID == rewardID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UnlockedRewardIDs(userID string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]bool)
	for _, u := range m.unlocks {
		if u.UserID == userID {
			ids[u.RewardID] = true
		}
	}
	return ids, nil
}
