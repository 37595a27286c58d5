package swappool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInplaceCellGetSet(t *testing.T) {
	c := NewInplaceCell(5, true)
	assert.Equal(t, 5, c.Get())

	c.ReplaceBy(9)
	assert.Equal(t, 9, c.Get())
}

func TestInplaceCellUpdate(t *testing.T) {
	c := NewInplaceCell(1, true)

	c.Update(func(v *int) { *v *= 10 })

	assert.Equal(t, 10, c.Get())
}

func TestInplaceCellUpdateResult(t *testing.T) {
	c := NewInplaceCell([]int{1, 2, 3}, true)

	sum, err := UpdateResult(c, func(v *[]int) (int, error) {
		*v = append(*v, 4)
		total := 0
		for _, n := range *v {
			total += n
		}
		return total, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 10, sum)
	assert.Equal(t, []int{1, 2, 3, 4}, c.Get())
}

func TestInplaceCellUpdateResultLeavesMutationOnError(t *testing.T) {
	c := NewInplaceCell(1, true)

	_, err := UpdateResult(c, func(v *int) (struct{}, error) {
		*v = 42
		return struct{}{}, assertErr
	})

	require.Error(t, err)
	assert.Equal(t, 42, c.Get())
}

var assertErr = errNotNil("boom")

type errNotNil string

func (e errNotNil) Error() string { return string(e) }

// TestInplaceCellNotThreadSafeSkipsLocking exercises the unguarded path.
// It is single-goroutine by construction; its point is only to prove the
// lock is not taken, not to prove concurrency safety. The lock is held for
// the whole test, so a ReplaceBy or Get that took it would deadlock.
func TestInplaceCellNotThreadSafeSkipsLocking(t *testing.T) {
	c := NewInplaceCell(0, false)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ReplaceBy(7)
	assert.Equal(t, 7, c.Get())
}

func TestInplaceCellConcurrentUpdate(t *testing.T) {
	c := NewInplaceCell(0, true)

	var wg sync.WaitGroup
	const goroutines = 50
	const perGoroutine = 100

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				c.Update(func(v *int) { *v++ })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, c.Get())
}
