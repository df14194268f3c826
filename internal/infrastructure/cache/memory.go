package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// MemorySessionStore is an in-process SessionStore. Single-node only;
// sessions do not survive a restart.
type MemorySessionStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
}

type memoryItem struct {
	username   string
	expireTime time.Time
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	store := &MemorySessionStore{
		items: make(map[string]*memoryItem),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Set stores a session with the given TTL
func (ms *MemorySessionStore) Set(ctx context.Context, tokenHash, username string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[tokenHash] = &memoryItem{
		username:   username,
		expireTime: time.Now().Add(ttl),
	}
	return nil
}

// Get returns the username of an active session
func (ms *MemorySessionStore) Get(ctx context.Context, tokenHash string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[tokenHash]
	if !exists || time.Now().After(item.expireTime) {
		return "", entities.ErrSessionNotFound
	}
	return item.username, nil
}

// Refresh extends an active session's TTL
func (ms *MemorySessionStore) Refresh(ctx context.Context, tokenHash string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[tokenHash]
	if !exists || time.Now().After(item.expireTime) {
		return entities.ErrSessionNotFound
	}
	item.expireTime = time.Now().Add(ttl)
	return nil
}

// Delete removes a session
func (ms *MemorySessionStore) Delete(ctx context.Context, tokenHash string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, tokenHash)
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemorySessionStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
