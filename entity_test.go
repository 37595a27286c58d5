package swappool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandle(t *testing.T, allocated int) *Handle[blob, *blob] {
	t.Helper()
	return NewHandle[blob, *blob](allocated)
}

func TestNewEntityHotWhenBudgetAllows(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("hello"), h, path)
	require.NoError(t, err)

	assert.True(t, e.IsHot())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "hot entity must not write a file eagerly")
}

func TestNewEntityColdWhenOverBudget(t *testing.T) {
	h := newTestHandle(t, 2)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("too long to fit"), h, path)
	require.NoError(t, err)

	assert.True(t, e.IsCold())
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "cold entity must have its file written immediately")
}

func TestEntityValuePromotesColdToHot(t *testing.T) {
	h := newTestHandle(t, 2)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("too long"), h, path)
	require.NoError(t, err)
	require.True(t, e.IsCold())

	h2 := newTestHandle(t, 1024)
	e.handle = h2

	v, err := e.Value()
	require.NoError(t, err)
	assert.Equal(t, "too long", v.String())
	assert.True(t, e.IsHot())
	assert.Equal(t, uint64(1), e.handle.Stats().Promotions)
}

func TestEntityFlushDemotesAndWritesFile(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("flush me"), h, path)
	require.NoError(t, err)
	require.True(t, e.IsHot())

	require.NoError(t, e.Flush())

	assert.True(t, e.IsCold())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, uint64(1), e.handle.Stats().Demotions)
}

func TestEntityFlushIsIdempotent(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("flush me"), h, path)
	require.NoError(t, err)

	require.NoError(t, e.Flush())
	require.NoError(t, e.Flush())

	assert.Equal(t, uint64(1), e.handle.Stats().Demotions, "second flush on a cold entity must be a no-op")
}

func TestEntityValueUnallocateWritesFileForNeverFlushedHotEntity(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("hot from birth"), h, path)
	require.NoError(t, err)
	require.True(t, e.IsHot())
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	v, err := e.ValueUnallocate()
	require.NoError(t, err)
	assert.Equal(t, "hot from birth", v.String())
	assert.True(t, e.IsCold())

	_, statErr = os.Stat(path)
	assert.NoError(t, statErr, "going cold must leave a backing file behind")
}

func TestEntityReplaceDeletesBackingFile(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("original"), h, path)
	require.NoError(t, err)
	require.NoError(t, e.Flush())
	require.FileExists(t, path)

	require.NoError(t, e.Replace(newBlob("new value")))

	assert.True(t, e.IsHot())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEntityCloseRemovesFile(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("short"), h, path)
	require.NoError(t, err)
	require.NoError(t, e.Flush())
	require.FileExists(t, path)

	e.Close()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	assert.NotPanics(t, e.Close, "Close must be idempotent")
}

func TestEntitySizeOfExcludesDiskCostWhenCold(t *testing.T) {
	h := newTestHandle(t, 1024)
	path := filepath.Join(t.TempDir(), "entity-1")

	e, err := newEntity[blob, *blob](newBlob("payload"), h, path)
	require.NoError(t, err)
	require.NoError(t, e.Flush())

	assert.Equal(t, pointerWord+len(path), e.SizeOf())
}
