package swappool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUsedAvailable(t *testing.T) {
	h := NewHandle[blob, *blob](100)

	e, err := newEntity[blob, *blob](newBlob("12345"), h, filepath.Join(t.TempDir(), "a"))
	require.NoError(t, err)
	h.pushEntity(e)

	assert.Equal(t, pointerWord+len(e.path)+5, h.Used())
	assert.Equal(t, 100-h.Used(), h.Available())
}

func TestHandleAvailableNeverNegative(t *testing.T) {
	h := NewHandle[blob, *blob](3)

	// Forced hot despite exceeding budget, to exercise the floor-at-zero
	// clamp directly rather than relying on newEntity's own admission check.
	e := &Entity[blob, *blob]{handle: h, path: "forced", logger: h.logger}
	v := newBlob("way too big for the budget")
	e.value = NewInplaceCell[*blob](&v, h.threadSafe)
	h.pushEntity(e)

	assert.Equal(t, 0, h.Available())
}

func TestHandleCollectGarbageSafeAfterEntityDropped(t *testing.T) {
	h := NewHandle[blob, *blob](1024)

	func() {
		e, err := newEntity[blob, *blob](newBlob("temp"), h, filepath.Join(t.TempDir(), "a"))
		require.NoError(t, err)
		h.pushEntity(e)
	}()

	// e is now unreachable; CollectGarbage should eventually prune it. We
	// don't force a GC cycle here (that would need runtime.GC(), which is
	// legitimate but environment-sensitive) — instead verify the method is
	// safe to call on a registry whose entity may or may not be collected yet.
	h.CollectGarbage()
	assert.GreaterOrEqual(t, len(h.liveEntities()), 0)
}

func TestHandleFreeEvictsLowestRanked(t *testing.T) {
	h := NewHandle[blob, *blob](1024, WithManager(NewUpgradeCountPolicy()))

	dir := t.TempDir()
	low, err := newEntity[blob, *blob](newBlob("low value payload"), h, filepath.Join(dir, "low"))
	require.NoError(t, err)
	h.pushEntity(low)

	high, err := newEntity[blob, *blob](newBlob("high value payload"), h, filepath.Join(dir, "high"))
	require.NoError(t, err)
	h.pushEntity(high)

	// Access high repeatedly so its rank outranks low's.
	for i := 0; i < 5; i++ {
		_, err := high.Value()
		require.NoError(t, err)
	}

	ok, err := h.Free(len(low.value.Get().data))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, low.IsCold(), "lowest-ranked entity should be evicted first")
	assert.True(t, high.IsHot(), "higher-ranked entity should survive eviction")
}

func TestHandleFreeReturnsFalseWhenExhausted(t *testing.T) {
	h := NewHandle[blob, *blob](1024)

	e, err := newEntity[blob, *blob](newBlob("small"), h, filepath.Join(t.TempDir(), "a"))
	require.NoError(t, err)
	h.pushEntity(e)

	// Ask for more than every hot entity could ever reclaim.
	ok, err := h.Free(1 << 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleFlushFlushesEveryEntity(t *testing.T) {
	h := NewHandle[blob, *blob](1024)
	dir := t.TempDir()

	var entities []*Entity[blob, *blob]
	for i := 0; i < 3; i++ {
		e, err := newEntity[blob, *blob](newBlob("value"), h, filepath.Join(dir, string(rune('a'+i))))
		require.NoError(t, err)
		entities = append(entities, h.pushEntity(e))
	}

	require.NoError(t, h.Flush())

	for _, e := range entities {
		assert.True(t, e.IsCold())
	}
}
