package eq

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRefresher_AppliesLatestSnapshot(t *testing.T) {
	store := NewStore()

	var mu sync.Mutex
	var applied []Settings
	r := NewRefresher(store, time.Millisecond, func(s Settings) {
		mu.Lock()
		applied = append(applied, s)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	// A burst of edits between ticks collapses into one refresh that
	// carries the final values.
	store.Set(ParamPeakGain, 3)
	store.Set(ParamPeakGain, 6)
	store.Set(ParamPeakFreq, 1000)

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(applied)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()

	if len(applied) == 0 {
		t.Fatal("no refresh within a second of the edits")
	}

	last := applied[len(applied)-1]
	if last.PeakGainDB != 6 || last.PeakFreq != 1000 {
		t.Errorf("last snapshot: %+v", last)
	}
}

func TestRefresher_IdleTicksDoNotApply(t *testing.T) {
	store := NewStore()

	var calls int
	var mu sync.Mutex
	r := NewRefresher(store, time.Millisecond, func(Settings) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("clean store triggered %d refreshes", calls)
	}
}

func TestRefresher_NilApplyCallback(t *testing.T) {
	store := NewStore()
	r := NewRefresher(store, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	// A dirty tick with no callback must not panic.
	store.Set(ParamPeakGain, 6)
	time.Sleep(10 * time.Millisecond)

	cancel()
	wg.Wait()
}

func TestNewRefresher_DefaultInterval(t *testing.T) {
	r := NewRefresher(NewStore(), 0, func(Settings) {})
	if r.interval != defaultRefreshInterval {
		t.Errorf("got %v, want %v", r.interval, defaultRefreshInterval)
	}

	r = NewRefresher(NewStore(), -time.Second, func(Settings) {})
	if r.interval != defaultRefreshInterval {
		t.Errorf("got %v, want %v", r.interval, defaultRefreshInterval)
	}
}
