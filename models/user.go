package models

import (
	"time"
)

// User is one half of the pair sharing the task tree. Points only grow:
// completing tasks is the single source of balance increments, and unlocking
// a reward never spends them.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Points       int64  `gorm:"default:0;not null" json:"points"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
