// Package locker serializes remote lifecycle calls per workflow.
package locker

import (
	"context"
	"sync"
)

// Locker acquires an exclusive lock on key until the returned unlock is called.
// Lock gives up with ctx.Err() when ctx ends first.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// Memory is an in-process Locker. Entries are dropped once no caller holds
// or waits on them.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &memoryEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = entry
	}

	entry.refs++
	m.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, entry)

		return nil, ctx.Err()
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			<-entry.sem
			m.release(key, entry)
		})
	}, nil
}

func (m *Memory) release(key string, entry *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(m.entries, key)
	}
}
