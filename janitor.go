package swappool

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

/*
janitor is a background goroutine that periodically sweeps a Handle's
entity registry, pruning dead weak references. It is tempuscache's own
startJanitor/Stop shape (janitor.go there: a time.Ticker, a dedicated
goroutine, a stopChan closed exactly once) repurposed for this domain:
this pool has no TTL concept, so the janitor's job is garbage collection
rather than expiration, but the lifecycle pattern — ticker, select on
ticker/stop, stop the ticker before returning — is identical.

A janitor is entirely optional. Handle.Used and Handle.Free already
invoke CollectGarbage inline (DESIGN.md's Open Question resolution), so
the janitor only matters for pools that spawn and drop many entities
without ever calling Used/Free in between.
*/
type janitor struct {
	interval time.Duration
	collect  func()
	logger   *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
}

func newJanitor(interval time.Duration, collect func(), logger *zap.Logger) *janitor {
	return &janitor{
		interval: interval,
		collect:  collect,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (j *janitor) start() {
	if j.interval <= 0 {
		return
	}

	ticker := time.NewTicker(j.interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.logger.Debug("janitor sweep")
				j.collect()
			case <-j.stopChan:
				return
			}
		}
	}()
}

// stop signals the janitor goroutine to exit. Safe to call more than
// once or never, unlike tempuscache's Stop, which panics if called twice
// (closing an already-closed channel) — sync.Once removes that footgun.
func (j *janitor) stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
}
