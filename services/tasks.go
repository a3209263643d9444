package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"task-tree-system/models"
	"task-tree-system/stores"

	"github.com/gosimple/slug"
)

// TaskService is plain CRUD over the task store. Completion goes through the
// CompletionService; flipping status to completed here stamps the timestamp
// but never awards points. Mutations take the account locks shared with the
// completion and unlock services, so an update or delete cannot slip between
// a completion's balance credit and its status flip.
type TaskService struct {
	store stores.Backend
	locks *AccountLocks
}

func NewTaskService(store stores.Backend, locks *AccountLocks) *TaskService {
	return &TaskService{store: store, locks: locks}
}

// CreateTaskParams are the client-supplied fields; everything but Title has
// a default.
type CreateTaskParams struct {
	Title       string
	Description string
	Category    string
	AssignedTo  string
	Points      int64
	DueDate     *time.Time
}

// normalizeCategory collapses free-text category labels to stable slugs so
// the category filter matches regardless of spacing or case.
func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.DefaultTaskCategory
	}
	return slug.Make(category)
}

func (s *TaskService) Create(userID string, p CreateTaskParams) (*models.Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, validationErr("title is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return nil, validationErr("title must be at most 200 characters")
	}
	if _, err := s.store.UserByID(userID); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return nil, notFoundErr("user")
		}
		return nil, err
	}

	points := p.Points
	if points <= 0 {
		points = models.DefaultTaskPoints
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: p.Description,
		Category:    normalizeCategory(p.Category),
		AssignedTo:  p.AssignedTo,
		Status:      models.TaskStatusPending,
		Points:      points,
		DueDate:     p.DueDate,
	}
	if err := s.store.CreateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(userID string, f stores.TaskFilter) ([]models.Task, error) {
	if f.Category != "" {
		f.Category = normalizeCategory(f.Category)
	}
	tasks, err := s.store.TasksByUser(userID, f)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(userID, taskID string, u stores.TaskUpdate) error {
	if u.Empty() {
		return validationErr("no fields to update")
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return validationErr("title cannot be empty")
	}

	release := s.locks.Acquire(userID)
	defer release()

	err := s.store.UpdateTask(userID, taskID, u)
	if errors.Is(err, stores.ErrNotFound) {
		return notFoundErr("task")
	}
	return err
}

func (s *TaskService) Delete(userID, taskID string) error {
	release := s.locks.Acquire(userID)
	defer release()

	// Ownership check first so deleting someone else's task reads as absent.
	if _, err := s.store.TaskByID(userID, taskID); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return notFoundErr("task")
		}
		return err
	}
	return s.store.DeleteTask(taskID)
}

func (s *TaskService) Stats(userID string) (stores.TaskStats, error) {
	return s.store.TaskStats(userID)
}
