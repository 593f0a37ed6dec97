package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend with expiry and a size bound.
type MemoryBackend struct {
	mu         sync.RWMutex
	now        func() time.Time
	maxEntries int
	entries    map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryBackend returns a backend holding at most maxEntries values.
func NewMemoryBackend(maxEntries int, now func() time.Time) *MemoryBackend {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryBackend{now: now, maxEntries: maxEntries, entries: make(map[string]memoryEntry)}
}

// Get returns a copy of the value stored under key.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		defer m.mu.Unlock()
		// A Set may have replaced the entry since the read lock was released.
		entry, ok = m.entries[key]
		if !ok {
			return nil, false, nil
		}
		if !m.now().Before(entry.expiresAt) {
			delete(m.entries, key)
			return nil, false, nil
		}
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Set stores value under key until ttl elapses.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	expiry := m.now().Add(ttl)
	stored := append([]byte(nil), value...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	m.entries[key] = memoryEntry{value: stored, expiresAt: expiry}
	return nil
}

// Delete removes keys.
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictLocked drops expired entries, or an arbitrary one when none expired.
func (m *MemoryBackend) evictLocked() {
	now := m.now()
	removed := false
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed = true
		}
	}
	if removed {
		return
	}
	for key := range m.entries {
		delete(m.entries, key)
		return
	}
}
