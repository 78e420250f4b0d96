// Package revocation stores the IDs of tokens revoked before their expiry.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local revocation list. Entries are dropped once the
// token they refer to has expired.
type Memory struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemory creates an empty in-memory revocation list.
func NewMemory() *Memory {
	return &Memory{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke records tokenID as revoked until expiresAt.
func (m *Memory) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked()
	if expiresAt.After(m.now()) {
		m.revoked[tokenID] = expiresAt
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(m.now()) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Len returns the number of tracked revocations.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.revoked)
}

func (m *Memory) pruneLocked() {
	now := m.now()
	for id, expiresAt := range m.revoked {
		if !expiresAt.After(now) {
			delete(m.revoked, id)
		}
	}
}
