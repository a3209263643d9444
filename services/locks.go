package services

import (
	"sync"
)

// AccountLocks serializes mutations per account id. The completion, unlock
// and task services share one instance so their check-then-mutate sequences
// against the same balance never interleave. Entries are never evicted: the
// map is keyed by account id, so it grows with the registered accounts (a
// pair of users in the intended deployment), not with request volume.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for the account and returns its release func.
func (l *AccountLocks) Acquire(accountID string) func() {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
