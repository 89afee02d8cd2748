package quota

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	day   string
	count int
}

// MemoryCounter implements a fixed-window in-memory usage counter. Suitable
// for single-instance deployments and tests.
type MemoryCounter struct {
	mu       sync.Mutex
	counters map[string]*memoryEntry
}

// NewMemoryCounter constructs a MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counters: make(map[string]*memoryEntry)}
}

// Usage returns the count recorded for the current UTC day.
func (c *MemoryCounter) Usage(_ context.Context, userID uint64, feature string, now time.Time) (int, error) {
	day := now.UTC().Format("2006-01-02")
	key := dayKey(userID, feature, now)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.counters[key]
	if entry == nil || entry.day != day {
		return 0, nil
	}
	return entry.count, nil
}

// Increment records one use for the current UTC day.
func (c *MemoryCounter) Increment(_ context.Context, userID uint64, feature string, now time.Time) (int, error) {
	day := now.UTC().Format("2006-01-02")
	key := dayKey(userID, feature, now)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.counters[key]
	if entry == nil || entry.day != day {
		entry = &memoryEntry{day: day}
		c.counters[key] = entry
	}
	entry.count++
	return entry.count, nil
}
