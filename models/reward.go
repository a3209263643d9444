package models

import (
	"time"
)

// Reward is one fruit on the tree: a catalog item gated by a point threshold.
// The catalog is seeded once and immutable apart from the icon URL.
type Reward struct {
	ID           string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	IconURL      string `gorm:"type:text" json:"icon"`
	UnlockPoints int64  `gorm:"not null" json:"unlock_points"`
	Description  string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RewardUnlock records that a user has claimed a reward. One row per
// (user, reward) pair; the unlock service enforces this before insert and the
// composite index backs it up.
type RewardUnlock struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"uniqueIndex:idx_user_reward;not null" json:"user_id"`
	RewardID   string    `gorm:"uniqueIndex:idx_user_reward;not null" json:"reward_id"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
}

// DefaultRewardCatalog is the five-tier fruit ladder seeded on first run.
var DefaultRewardCatalog = []Reward{
	{Name: "First Sprout", IconURL: "/icons/sprout.png", UnlockPoints: 0, Description: "Where it all begins"},
	{Name: "Sweet Berry", IconURL: "/icons/berry.png", UnlockPoints: 50, Description: "Warm company"},
	{Name: "Sunny Peach", IconURL: "/icons/peach.png", UnlockPoints: 100, Description: "Happy days together"},
	{Name: "Rosy Apple", IconURL: "/icons/apple.png", UnlockPoints: 200, Description: "Memories worth keeping"},
	{Name: "Golden Pomelo", IconURL: "/icons/pomelo.png", UnlockPoints: 500, Description: "A promise that lasts"},
}
