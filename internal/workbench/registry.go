package workbench

import (
	"context"
	"sync"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/store"
)

// DefaultIdleTTL is how long an unused workbench stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// registryEntry tracks the last use of one owner's workbench.
type registryEntry struct {
	wb       *Workbench
	lastUsed time.Time
}

// Registry hands out one hydrated Workbench per owner. Workbenches idle for
// longer than the TTL are dropped and re-hydrated from the slots on next use;
// a workbench with a submission in flight is never dropped.
type Registry struct {
	mu        sync.Mutex
	slots     store.Slots
	items     map[string]*registryEntry
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRegistry constructs a Registry over slots. A non-positive idleTTL keeps
// workbenches forever.
func NewRegistry(slots store.Slots, idleTTL time.Duration) *Registry {
	return &Registry{
		slots: slots,
		items: make(map[string]*registryEntry),
		ttl:   idleTTL,
		now:   time.Now,
	}
}

// Get returns the owner's workbench, hydrating it on first use. Hydration
// runs without the registry lock; when two callers race, the first inserted
// workbench wins. A workbench whose hydrate fails is not cached.
func (r *Registry) Get(ctx context.Context, owner string) (*Workbench, error) {
	if wb, ok := r.lookup(owner); ok {
		return wb, nil
	}

	wb := New(r.slots, owner)
	if errHydrate := wb.Hydrate(ctx); errHydrate != nil {
		return nil, errHydrate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if existing, ok := r.items[owner]; ok {
		existing.lastUsed = now
		return existing.wb, nil
	}
	r.items[owner] = &registryEntry{wb: wb, lastUsed: now}
	return wb, nil
}

// CleanupExpired drops every idle workbench now.
func (r *Registry) CleanupExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanupExpiredLocked(r.now())
}

// lookup returns a cached workbench and refreshes its last use. It sweeps
// idle entries at most once per half TTL.
func (r *Registry) lookup(owner string) (*Workbench, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if r.ttl > 0 && now.Sub(r.lastSweep) >= r.ttl/2 {
		r.cleanupExpiredLocked(now)
	}
	entry, ok := r.items[owner]
	if !ok {
		return nil, false
	}
	entry.lastUsed = now
	return entry.wb, true
}

func (r *Registry) cleanupExpiredLocked(now time.Time) {
	r.lastSweep = now
	if r.ttl <= 0 {
		return
	}
	for owner, entry := range r.items {
		if now.Sub(entry.lastUsed) >= r.ttl && !entry.wb.Busy() {
			delete(r.items, owner)
		}
	}
}
