package swappool

import (
	"sort"
	"weak"

	"go.uber.org/zap"
)

/*
Handle is a pool's accounting registry: it tracks every live entity via
non-owning weak references, computes used/available bytes against a fixed
byte budget, and drives eviction when admitting or restoring a value
would overshoot it.

The registry stores weak.Pointer[Entity[T, PT]] (stdlib `weak`, added in
Go 1.24) rather than strong *Entity pointers — the direct analogue of the
original's Weak<SwapEntity<T>>: an entity's lifetime is controlled by
whoever holds the strong reference returned from Spawn/SpawnNamed, not by
the handle. CollectGarbage prunes references whose Value() has gone nil.
*/
type Handle[T Payload, PT PayloadPtr[T]] struct {
	allocated   int
	entities    *InplaceCell[[]weak.Pointer[Entity[T, PT]]]
	manager     RankingPolicy
	transformer Transformer
	threadSafe  bool
	logger      *zap.Logger
	uuidConfig  uuidConfig
	stats       *statsRegistry
}

// NewHandle constructs a Handle with the given byte budget and options.
func NewHandle[T Payload, PT PayloadPtr[T]](allocated int, opts ...Option) *Handle[T, PT] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Handle[T, PT]{
		allocated:   allocated,
		manager:     cfg.manager,
		transformer: cfg.transformer,
		threadSafe:  cfg.threadSafe,
		logger:      cfg.logger,
		uuidConfig:  uuidConfig{hasher: cfg.hasher, salted: cfg.salted},
		stats:       &statsRegistry{},
	}
	h.entities = NewInplaceCell[[]weak.Pointer[Entity[T, PT]]](nil, h.threadSafe)

	return h
}

// pushEntity registers e in the handle's registry, upgrades its rank
// once, and returns it — spec.md §4.4's push_entity.
func (h *Handle[T, PT]) pushEntity(e *Entity[T, PT]) *Entity[T, PT] {
	h.entities.Update(func(list *[]weak.Pointer[Entity[T, PT]]) {
		*list = append(*list, weak.Make(e))
	})
	h.manager.Upgrade(e.uid)
	h.stats.incSpawns()

	return e
}

// UpgradeEntity upgrades uuid's rank via the handle's ranking policy.
func (h *Handle[T, PT]) UpgradeEntity(uuid uint64) uint64 { return h.manager.Upgrade(uuid) }

// RankEntity returns uuid's rank via the handle's ranking policy.
func (h *Handle[T, PT]) RankEntity(uuid uint64) uint64 { return h.manager.Rank(uuid) }

// Manager returns the handle's ranking policy.
func (h *Handle[T, PT]) Manager() RankingPolicy { return h.manager }

// Transformer returns the handle's byte transformer.
func (h *Handle[T, PT]) Transformer() Transformer { return h.transformer }

// Allocated returns the maximum number of bytes the handle's entities may
// occupy while hot.
func (h *Handle[T, PT]) Allocated() int { return h.allocated }

// Stats returns a snapshot of the pool's runtime counters.
func (h *Handle[T, PT]) Stats() Stats { return h.stats.snapshot() }

// liveEntities returns the live, non-garbage-collected entities currently
// registered. It does not itself prune dead references; call
// CollectGarbage first if a precise list matters.
func (h *Handle[T, PT]) liveEntities() []*Entity[T, PT] {
	refs := h.entities.Get()
	live := make([]*Entity[T, PT], 0, len(refs))
	for _, w := range refs {
		if e := w.Value(); e != nil {
			live = append(live, e)
		}
	}
	return live
}

// CollectGarbage drops back-references whose entity has been garbage
// collected, the Go analogue of the original's Weak::strong_count() == 0
// check.
func (h *Handle[T, PT]) CollectGarbage() {
	h.entities.Update(func(list *[]weak.Pointer[Entity[T, PT]]) {
		alive := (*list)[:0]
		for _, w := range *list {
			if w.Value() != nil {
				alive = append(alive, w)
			}
		}
		*list = alive
	})
}

// Used computes the total bytes occupied by every live, currently hot
// entity. Per DESIGN.md's Open Question resolution, it collects garbage
// first.
func (h *Handle[T, PT]) Used() int {
	h.CollectGarbage()

	total := 0
	for _, e := range h.liveEntities() {
		if e.IsHot() {
			total += e.SizeOf()
		}
	}
	return total
}

// Available returns max(0, Allocated - Used). Concurrent mutation may
// make this a stale snapshot; callers treat it as a hint, per spec.md
// §5's ordering guarantees.
func (h *Handle[T, PT]) Available() int {
	avail := h.allocated - h.Used()
	if avail < 0 {
		avail = 0
	}
	return avail
}

// Flush flushes every live entity to disk. The first error aborts the
// sweep.
func (h *Handle[T, PT]) Flush() error {
	for _, e := range h.liveEntities() {
		if err := e.Flush(); err != nil {
			return err
		}
	}
	return nil
}

/*
Free tries to reclaim memory bytes by flushing hot entities, lowest-ranked
first. It collects every live entity's current rank, sorts descending (so
the least-recently/least-frequently used entity is at the end), and pops
from the end until enough memory has been reclaimed or there are no more
hot entities to evict. Equal ranks break ties by uuid descending, for
deterministic test behavior (spec.md §4.4).

It returns false, not an error, if it exhausts every candidate before
reclaiming the requested amount — that's a normal "couldn't free enough"
result, not a failure.
*/
func (h *Handle[T, PT]) Free(memory int) (bool, error) {
	h.CollectGarbage()

	type candidate struct {
		rank   uint64
		uid    uint64
		entity *Entity[T, PT]
	}

	live := h.liveEntities()
	candidates := make([]candidate, 0, len(live))
	for _, e := range live {
		candidates = append(candidates, candidate{rank: h.manager.Rank(e.uid), uid: e.uid, entity: e})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank > candidates[j].rank
		}
		return candidates[i].uid > candidates[j].uid
	})

	for memory > 0 {
		if len(candidates) == 0 {
			return false, nil
		}

		last := candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		e := last.entity
		if !e.IsHot() {
			continue
		}

		before := e.SizeOf()
		if err := e.Flush(); err != nil {
			return false, err
		}
		after := e.SizeOf()

		reclaimed := before - after
		memory -= reclaimed
		if memory < 0 {
			memory = 0
		}

		h.stats.incEvictions()
		h.logger.Debug("entity evicted",
			zap.Uint64("uuid", last.uid),
			zap.String("reclaimed", humanizeBytes(reclaimed)),
		)
	}

	return true, nil
}
