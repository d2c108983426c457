package locker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryLocker блокировки в памяти процесса, для одного инстанса и тестов
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	seq   uint64
	now   func() time.Time
}

type memoryEntry struct {
	id        uint64
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
		now:   time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.locks[key]; ok && now.Before(entry.expiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, key)
	}

	l.seq++
	l.locks[key] = memoryEntry{id: l.seq, expiresAt: now.Add(ttl)}
	return &memoryLock{owner: l, key: key, id: l.seq}, nil
}

type memoryLock struct {
	owner *MemoryLocker
	key   string
	id    uint64
}

func (m *memoryLock) Release(_ context.Context) error {
	m.owner.mu.Lock()
	defer m.owner.mu.Unlock()

	if entry, ok := m.owner.locks[m.key]; ok && entry.id == m.id {
		delete(m.owner.locks, m.key)
	}
	return nil
}
