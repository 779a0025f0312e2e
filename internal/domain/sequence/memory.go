package sequence

import (
	"context"
	"sync"
)

// MemoryAllocator is a process-local Allocator guarded by a mutex.
// It backs tests and tooling that run without a database.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryAllocator creates an empty in-memory allocator
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{counters: make(map[string]int64)}
}

// Seed raises the scope's high-water mark to the highest suffix among ids
func (a *MemoryAllocator) Seed(scope Scope, ids ...string) {
	highest, _ := scope.MaxSuffix(ids)
	a.mu.Lock()
	defer a.mu.Unlock()
	if highest > a.counters[scope.Key()] {
		a.counters[scope.Key()] = highest
	}
}

// Allocate returns the next identifier in scope
func (a *MemoryAllocator) Allocate(ctx context.Context, scope Scope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.counters[scope.Key()] + 1
	id, err := scope.Format(next)
	if err != nil {
		return "", err
	}
	a.counters[scope.Key()] = next
	return id, nil
}

var _ Allocator = (*MemoryAllocator)(nil)
