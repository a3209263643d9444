package models

import (
	"time"
)

// TaskStatus is an open set; pending and completed are the two states the
// services care about, clients may introduce more via updates.
type TaskStatus = string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

const (
	DefaultTaskCategory = "general"
	DefaultTaskPoints   = 10
)

// Task belongs to exactly one user. Points are fixed at creation and paid out
// at most once, when the completion service flips the status.
type Task struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string     `gorm:"index;not null" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"default:'general';index" json:"category"`
	AssignedTo  string     `json:"assigned_to"`
	Status      TaskStatus `gorm:"default:'pending';index" json:"status"`
	Points      int64      `gorm:"default:10;not null" json:"points"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
