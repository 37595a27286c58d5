package swappool

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

/*
Stats tracks runtime indicators for a pool:

- Spawns      -> Entities created through SpawnNamed/Spawn/SpawnFromFile.
- Promotions  -> Cold-to-Hot transitions (Value/ValueAllocate hot-loads).
- Demotions   -> Hot-to-Cold transitions (Flush, forced or voluntary).
- Evictions   -> Demotions specifically caused by Handle.Free reclaiming
                 memory for another admission, a subset of Demotions.

Fields are modified under statsRegistry's own mutex; Pool.Stats returns a
snapshot copy, the same discipline tempuscache's own Cache.Stats() uses.
*/
type Stats struct {
	Spawns     uint64
	Promotions uint64
	Demotions  uint64
	Evictions  uint64
}

// String renders a human-readable summary using go-humanize, handy for
// log lines and debugging sessions.
func (s Stats) String() string {
	return fmt.Sprintf(
		"spawns=%s promotions=%s demotions=%s evictions=%s",
		humanize.Comma(int64(s.Spawns)),
		humanize.Comma(int64(s.Promotions)),
		humanize.Comma(int64(s.Demotions)),
		humanize.Comma(int64(s.Evictions)),
	)
}

// statsRegistry is the mutable counterpart Handle mutates; Stats itself
// stays a plain value type returned by snapshot.
type statsRegistry struct {
	mu sync.RWMutex
	s  Stats
}

func (r *statsRegistry) snapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.s
}

func (r *statsRegistry) incSpawns() {
	r.mu.Lock()
	r.s.Spawns++
	r.mu.Unlock()
}

func (r *statsRegistry) incPromotions() {
	r.mu.Lock()
	r.s.Promotions++
	r.mu.Unlock()
}

func (r *statsRegistry) incDemotions() {
	r.mu.Lock()
	r.s.Demotions++
	r.mu.Unlock()
}

func (r *statsRegistry) incEvictions() {
	r.mu.Lock()
	r.s.Evictions++
	r.mu.Unlock()
}

// humanizeBytes formats a byte count for log fields and error messages.
func humanizeBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
