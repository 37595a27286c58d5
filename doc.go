/*
Package swappool implements a bounded-memory pool of serializable values,
each backed by a file on disk.

================================================================================
ARCHITECTURAL OVERVIEW
================================================================================

A Pool owns a directory and a Handle. The Handle is the accounting layer:
it tracks every entity spawned through the pool, computes used/available
bytes against a fixed byte budget, and evicts the lowest-ranked entities
when admitting or restoring a value would overshoot that budget.

Each Entity is a two-state cell: Hot (the value lives in memory) or Cold
(only the file on disk is authoritative). Reads promote an entity back to
Hot when the budget allows; eviction demotes entities back to Cold by
flushing them to their backing file.

================================================================================
CONCURRENCY MODEL
================================================================================

InplaceCell guards the Handle's entity registry and each Entity's value
slot; the reference RankingPolicy implementations guard their rank tables
with their own sync.RWMutex. Constructed thread-safe, InplaceCell is a
sync.RWMutex-guarded cell:
concurrent readers always observe a complete prior value, never a
transient default, while a writer mutates. Constructed not-thread-safe, it
is unguarded — a single-goroutine optimization for callers who serialize
their own access.

================================================================================
DISK BOUNDARY
================================================================================

Every write to a backing file passes through a Transformer's Forward
method first; every read passes the bytes through Backward before
deserialization. The IdentityTransformer is the default; ZstdTransformer
compresses.

================================================================================
RANKING
================================================================================

A RankingPolicy assigns and returns an integer rank per entity uuid;
higher rank means "keep longer." LastUseTimestampPolicy ranks by
wall-clock seconds at last access; UpgradeCountPolicy ranks by access
count, avoiding a syscall per access under high request rates.
*/
package swappool
