package swappool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

/*
Pool is the user-facing entry point: a fixed byte budget backed by a
folder on disk, factory for Entity values. It wraps a Handle with path
bookkeeping (spawn_named/spawn's folder-join logic) and an optional
janitor goroutine, the same way tempuscache's Cache wraps its eviction
list and stats with the public New/Set/Get surface.
*/
type Pool[T Payload, PT PayloadPtr[T]] struct {
	handle  *Handle[T, PT]
	folder  string
	logger  *zap.Logger
	janitor *janitor
}

// NewPool creates a pool with the given byte budget, rooted at folder.
// folder is created if it does not already exist.
func NewPool[T Payload, PT PayloadPtr[T]](allocated int, folder string, opts ...Option) (*Pool[T, PT], error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, ioErr("new_pool", err)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	handle := NewHandle[T, PT](allocated, opts...)

	p := &Pool[T, PT]{
		handle: handle,
		folder: folder,
		logger: cfg.logger,
	}

	if cfg.janitorInterval > 0 {
		p.janitor = newJanitor(cfg.janitorInterval, handle.CollectGarbage, cfg.logger)
		p.janitor.start()
	}

	return p, nil
}

// Handle returns the pool's underlying accounting registry, for callers
// that need direct access to Used/Available/Flush/Free.
func (p *Pool[T, PT]) Handle() *Handle[T, PT] { return p.handle }

// Stats returns a snapshot of the pool's runtime counters.
func (p *Pool[T, PT]) Stats() Stats { return p.handle.Stats() }

// Close stops the pool's background janitor, if one is running. It does
// not flush or remove any entity; callers that want a clean shutdown
// should call Handle().Flush() first.
func (p *Pool[T, PT]) Close() {
	if p.janitor != nil {
		p.janitor.stop()
	}
}

func (p *Pool[T, PT]) pathFor(name string) string {
	return filepath.Join(p.folder, name)
}

/*
SpawnNamed creates a new entity for value at a caller-chosen name within
the pool's folder. It refuses to spawn over an existing backing file,
since a second entity silently aliasing the same path would violate
spec.md §3's invariant that exactly one entity owns a given path — use
SpawnFromFile to adopt a pre-existing file instead.
*/
func (p *Pool[T, PT]) SpawnNamed(name string, value T) (*Entity[T, PT], error) {
	path := p.pathFor(name)

	if _, err := os.Stat(path); err == nil {
		return nil, wrap("spawn_named", Io, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return nil, ioErr("spawn_named", err)
	}

	e, err := newEntity[T, PT](value, p.handle, path)
	if err != nil {
		return nil, err
	}

	return p.handle.pushEntity(e), nil
}

// Spawn creates a new entity for value, naming its backing file
// "<hex uuid>.swap" per the pool's documented filesystem layout. The uuid
// is derived from the serialized value and the current time the way the
// original's spawn() derives its filename — mixing value bytes and a
// timestamp so concurrent spawns of equal values never collide on the
// same file. On the vanishingly rare chance the derived name already
// exists on disk (e.g. a leftover file from a previous run), Spawn
// re-derives a fresh uuid and retries rather than failing outright.
func (p *Pool[T, PT]) Spawn(value T) (*Entity[T, PT], error) {
	data, err := value.MarshalBinary()
	if err != nil {
		return nil, serializeErr("spawn", err)
	}

	const maxAttempts = 8

	for attempt := 0; attempt < maxAttempts; attempt++ {
		uid := spawnUUID(data, p.handle.uuidConfig)
		name := fmt.Sprintf("%x.swap", uid)

		e, err := p.SpawnNamed(name, value)
		if err == nil {
			return e, nil
		}

		var swapErr *Error
		if !(errors.As(err, &swapErr) && errors.Is(swapErr.Err, os.ErrExist)) {
			return nil, err
		}
	}

	return nil, wrap("spawn", Io, os.ErrExist)
}

/*
SpawnFromFile adopts a file already present at name within the pool's
folder as a new, initially Cold entity, without reading or validating its
contents. This is the Go counterpart of restoring pool state across
process restarts: the original source has no direct equivalent, since
Rust's SwapPool is always constructed fresh, but spec.md's supplemented
persistence story (SPEC_FULL.md) calls for a way to re-attach to entities
left on disk by a previous run.
*/
func (p *Pool[T, PT]) SpawnFromFile(name string) (*Entity[T, PT], error) {
	path := p.pathFor(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, wrap("spawn_from_file", Io, os.ErrNotExist)
		}
		return nil, ioErr("spawn_from_file", err)
	}

	e := &Entity[T, PT]{
		handle: p.handle,
		uid:    deriveUUID([]byte(path), p.handle.uuidConfig),
		path:   path,
		logger: p.handle.logger,
		value:  NewInplaceCell[*T](nil, p.handle.threadSafe),
	}

	return p.handle.pushEntity(e), nil
}
