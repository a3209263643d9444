package stores

import (
	"errors"
	"log"

	"task-tree-system/models"
)

// SeedUser is the development account created on first run. The password is
// hashed by the caller; the store never sees plaintext.
type SeedUser struct {
	Username     string
	PasswordHash string
}

// Seed inserts the default account and the reward catalog if they are not
// already present. Individual insert failures are logged and skipped: the
// data may already exist from a previous run, and an empty catalog is not
// worth refusing to boot over.
func Seed(b Backend, user SeedUser, catalog []models.Reward) error {
	if _, err := b.UserByUsername(user.Username); errors.Is(err, ErrNotFound) {
		u := models.User{
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
			Points:       0,
		}
		if err := b.CreateUser(&u); err != nil {
			log.Printf("[Seed] default user %q not created: %v", user.Username, err)
		} else {
			log.Printf("[Seed] created default user %q", user.Username)
		}
	} else if err != nil {
		return err
	}

	rewards, err := b.Rewards()
	if err != nil {
		return err
	}
	if len(rewards) > 0 {
		return nil
	}
	for _, r := range catalog {
		reward := r
		if err := b.CreateReward(&reward); err != nil {
			log.Printf("[Seed] reward %q not created: %v", r.Name, err)
		}
	}
	log.Printf("[Seed] reward catalog seeded (%d tiers)", len(catalog))
	return nil
}
