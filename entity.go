package swappool

import (
	"encoding"
	"os"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
)

/*
Payload is the constraint every value stored in a swap pool must satisfy:
it reports its own byte cost (Sized) and knows how to marshal itself to
bytes. Go cannot express the original's single TryFrom<Vec<u8>> +
TryInto<Vec<u8>> + Clone + SizeOf trait bound on one type parameter the
way Rust does, so this rewrite splits it the way the standard library's
own pointer-receiver codecs do: T carries SizeOf/MarshalBinary, *T (named
PT below) carries UnmarshalBinary.
*/
type Payload interface {
	Sized
	encoding.BinaryMarshaler
}

// PayloadPtr constrains the pointer type of a Payload so Entity can
// allocate a zero T and unmarshal a file's bytes into it in place.
type PayloadPtr[T any] interface {
	*T
	encoding.BinaryUnmarshaler
}

const pointerWord = int(unsafe.Sizeof(uintptr(0)))

/*
Entity is a single hot/cold value cell: its state is exactly one of
Hot(value) or Cold, never both, per spec.md §3's invariants. Hot means
the deserialized value lives in the cell; Cold means only the backing
file is authoritative.
*/
type Entity[T Payload, PT PayloadPtr[T]] struct {
	value  *InplaceCell[*T]
	handle *Handle[T, PT]
	uid    uint64
	path   string
	logger *zap.Logger

	closed atomic.Bool
}

// newEntity creates an entity for value at path, flushing it to disk
// immediately if it doesn't fit the handle's available budget.
func newEntity[T Payload, PT PayloadPtr[T]](value T, handle *Handle[T, PT], path string) (*Entity[T, PT], error) {
	e := &Entity[T, PT]{
		handle: handle,
		uid:    deriveUUID([]byte(path), handle.uuidConfig),
		path:   path,
		logger: handle.logger,
	}

	if value.SizeOf() > handle.Available() {
		if err := e.writeToDisk(value); err != nil {
			return nil, err
		}
		e.value = NewInplaceCell[*T](nil, handle.threadSafe)

		e.logger.Debug("entity created cold", zap.Uint64("uuid", e.uid), zap.String("path", path))
	} else {
		v := value
		e.value = NewInplaceCell[*T](&v, handle.threadSafe)

		e.logger.Debug("entity created hot", zap.Uint64("uuid", e.uid), zap.String("path", path))
	}

	return e, nil
}

// Handle returns the entity's owning pool handle.
func (e *Entity[T, PT]) Handle() *Handle[T, PT] { return e.handle }

// UUID returns the entity's stable 64-bit identity.
func (e *Entity[T, PT]) UUID() uint64 { return e.uid }

// Upgrade bumps the entity's rank in its handle's ranking policy and
// returns the new value.
func (e *Entity[T, PT]) Upgrade() uint64 { return e.handle.manager.Upgrade(e.uid) }

// Rank returns the entity's last known rank.
func (e *Entity[T, PT]) Rank() uint64 { return e.handle.manager.Rank(e.uid) }

// IsHot reports whether the value currently lives in memory.
func (e *Entity[T, PT]) IsHot() bool { return e.value.Get() != nil }

// IsCold reports whether the value currently lives only on disk.
func (e *Entity[T, PT]) IsCold() bool { return e.value.Get() == nil }

// ValueSize reports the value's byte cost: SizeOf() when hot, the
// backing file's length when cold.
func (e *Entity[T, PT]) ValueSize() (int, error) {
	if v := e.value.Get(); v != nil {
		return (*v).SizeOf(), nil
	}

	info, err := os.Stat(e.path)
	if err != nil {
		return 0, ioErr("value_size", err)
	}
	return int(info.Size()), nil
}

// SizeOf implements Sized for Entity itself, so a Handle can sum entity
// sizes directly. It deliberately avoids touching disk: a cold entity
// contributes only its bookkeeping overhead (pointer word + path length),
// matching the original's InplaceCell<Option<T>>::size_of, which counts
// only the in-memory Option's own footprint, never the file's length.
func (e *Entity[T, PT]) SizeOf() int {
	overhead := pointerWord + len(e.path)

	v := e.value.Get()
	if v == nil {
		return overhead
	}
	return (*v).SizeOf() + overhead
}

func (e *Entity[T, PT]) writeToDisk(v T) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return serializeErr("flush", err)
	}

	data, err = e.handle.transformer.Forward(data)
	if err != nil {
		return forwardErr("flush", err)
	}

	if err := os.WriteFile(e.path, data, 0o600); err != nil {
		return ioErr("flush", err)
	}
	return nil
}

func (e *Entity[T, PT]) readFromDisk() (T, error) {
	var zero T

	raw, err := os.ReadFile(e.path)
	if err != nil {
		return zero, ioErr("read", err)
	}

	raw, err = e.handle.transformer.Backward(raw)
	if err != nil {
		return zero, backwardErr("read", err)
	}

	var v T
	if err := PT(&v).UnmarshalBinary(raw); err != nil {
		return zero, deserializeErr("read", err)
	}
	return v, nil
}

// ensureFileExists writes v to disk if the backing file isn't already
// there. Entities that started Hot (spec.md §3 invariant 1: "the backing
// file may exist or not") never had a reason to write one, so a
// subsequent Cold transition — ValueUnallocate — must create it to
// uphold invariant 2 ("Cold ⇒ the backing file MUST exist"); see
// DESIGN.md's Open Question resolution and spec.md §8 scenario 3.
func (e *Entity[T, PT]) ensureFileExists(v T) error {
	if _, err := os.Stat(e.path); err == nil {
		return nil
	}
	return e.writeToDisk(v)
}

/*
Value returns the entity's value, hot-loading it from disk first if
necessary. If promoting would exceed the handle's budget, it asks the
handle to free the shortfall; on success the entity becomes (or remains)
Hot, on failure it stays Cold and the file is retained. Either way Value
upgrades the entity's rank and returns a copy of the value.

The budget check and any eviction it triggers (e.handle.Available/Free)
run before touching e.value at all, never from inside an InplaceCell
closure: Available/Free walk the handle's entire entity registry,
including e itself, and end up calling e.value.Get() — holding e.value's
lock across that call would self-deadlock the RWMutex it takes, since
Go's sync.RWMutex is not reentrant.
*/
func (e *Entity[T, PT]) Value() (T, error) {
	e.Upgrade()

	if v := e.value.Get(); v != nil {
		return *v, nil
	}

	raw, err := e.readFromDisk()
	if err != nil {
		return raw, err
	}

	admit := true
	if excess := raw.SizeOf() - e.handle.Available(); excess > 0 {
		ok, err := e.handle.Free(excess)
		if err != nil {
			return raw, err
		}
		admit = ok
	}

	promoted := false
	e.value.Update(func(slot **T) {
		if *slot == nil && admit {
			cp := raw
			*slot = &cp
			promoted = true
		}
	})

	if promoted {
		e.handle.stats.incPromotions()
		e.logger.Debug("entity promoted", zap.Uint64("uuid", e.uid))
	}

	return raw, nil
}

/*
ValueUnallocate returns the entity's value without upgrading its rank.
If Hot, it takes the in-memory value and leaves the entity Cold (writing
the backing file first if one doesn't already exist); if Cold, it reads
the file without changing state. Use this for one-shot reads that should
not warm the entity back up.
*/
func (e *Entity[T, PT]) ValueUnallocate() (T, error) {
	return UpdateResult(e.value, func(slot **T) (T, error) {
		if *slot != nil {
			v := **slot
			if err := e.ensureFileExists(v); err != nil {
				return v, err
			}
			*slot = nil
			e.handle.stats.incDemotions()
			return v, nil
		}
		return e.readFromDisk()
	})
}

// ValueAllocate forces promotion to Hot, bypassing the budget check, and
// upgrades the entity's rank. Use it for values accessed frequently
// enough that paying the budget-check cost every time isn't worth it.
func (e *Entity[T, PT]) ValueAllocate() (T, error) {
	e.Upgrade()

	_, err := UpdateResult(e.value, func(slot **T) (struct{}, error) {
		if *slot == nil {
			v, err := e.readFromDisk()
			if err != nil {
				return struct{}{}, err
			}
			*slot = &v
			e.handle.stats.incPromotions()
		}
		return struct{}{}, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return *e.value.Get(), nil
}

/*
Update flushes the current value, then tries to admit v: if v fits the
reclaimable budget (accounting for bytes the entity itself currently
occupies), the entity becomes Hot(v) and its file is removed, returning
true. If there isn't enough reclaimable memory, Update returns false and
leaves the entity exactly as the flush left it — Cold, with the old value
still on disk. This flush-first choice is irreversible: a failed Update
does not restore the old hot value (see DESIGN.md's Open Question
resolution). Use Replace instead when the new value is known to be no
larger than the old one.
*/
func (e *Entity[T, PT]) Update(v T) (bool, error) {
	if err := e.Flush(); err != nil {
		return false, err
	}

	need := v.SizeOf() - (e.handle.Available() + e.SizeOf())
	if need < 0 {
		need = 0
	}

	if need > 0 {
		ok, err := e.handle.Free(need)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	e.value.ReplaceBy(&v)
	if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
		return false, ioErr("update", err)
	}
	e.handle.stats.incPromotions()

	return true, nil
}

// Replace unconditionally stores v hot and deletes the backing file,
// without checking the budget. The caller asserts v is no larger than
// whatever the entity held before.
func (e *Entity[T, PT]) Replace(v T) error {
	e.value.Update(func(slot **T) {
		cp := v
		*slot = &cp
	})

	if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
		return ioErr("replace", err)
	}
	return nil
}

// Flush serializes and writes the entity's value to disk and clears the
// in-memory copy, if the entity is currently Hot. A Cold entity is a
// no-op, so Flush is idempotent.
func (e *Entity[T, PT]) Flush() error {
	demoted, err := UpdateResult(e.value, func(slot **T) (bool, error) {
		if *slot == nil {
			return false, nil
		}

		v := **slot
		if err := e.writeToDisk(v); err != nil {
			return false, err
		}
		*slot = nil
		return true, nil
	})
	if err != nil {
		return err
	}

	if demoted {
		e.handle.stats.incDemotions()
		e.logger.Debug("entity flushed", zap.Uint64("uuid", e.uid))
	}
	return nil
}

// Close removes the entity's backing file if present, best-effort. It is
// the Go analogue of the original's Drop impl — Go has no destructors, so
// callers must call Close explicitly when an entity's lifetime ends.
// Close is idempotent.
func (e *Entity[T, PT]) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}

	if _, err := os.Stat(e.path); err == nil {
		_ = os.Remove(e.path)
	}
}
