package eq

import (
	"context"
	"time"
)

// defaultRefreshInterval matches a 60 Hz UI refresh.
const defaultRefreshInterval = time.Second / 60

// Refresher implements the control-rate scheduling contract: a periodic
// tick that collapses any number of parameter edits since the previous
// tick into a single snapshot refresh. The guarantee is "at least one
// refresh after the last change before the next tick", not one refresh
// per change.
type Refresher struct {
	store    *Store
	interval time.Duration
	apply    func(Settings)
}

// NewRefresher wires a store to an apply callback. A non-positive
// interval falls back to 60 Hz; a nil callback still drains the dirty
// flag on each tick.
func NewRefresher(store *Store, interval time.Duration, apply func(Settings)) *Refresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if apply == nil {
		apply = func(Settings) {}
	}
	return &Refresher{store: store, interval: interval, apply: apply}
}

// Run blocks until ctx is done. On every tick where the store has
// pending changes it clears the flag and invokes apply once with a fresh
// snapshot.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.store.TakeDirty() {
				r.apply(r.store.Snapshot())
			}
		}
	}
}
