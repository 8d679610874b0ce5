package workload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sessiontesting "github.com/ValentinKolb/cqlbench/lib/session/testing"
)

func newTestPool(t *testing.T, fake *sessiontesting.FakeSession, config PoolConfig, observer IRoundObserver) *Pool {
	t.Helper()
	query, err := fake.Prepare(testQuery)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	pool, err := NewPool(config, fake, query, observer)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// joinWithTimeout joins the pool and fails the test if it hangs
func joinWithTimeout(t *testing.T, pool *Pool) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- pool.Join() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("join did not return")
		return nil
	}
}

// clientTracker records which clients completed at least one round
type clientTracker struct {
	mu      sync.Mutex
	seen    map[int]int
	allSeen chan struct{}
	want    int
}

func newClientTracker(want int) *clientTracker {
	return &clientTracker{seen: make(map[int]int), allSeen: make(chan struct{}), want: want}
}

func (c *clientTracker) ObserveRound(r RoundResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[r.ClientID]++
	if len(c.seen) == c.want && c.seen[r.ClientID] == 1 {
		close(c.allSeen)
	}
}

func TestPoolRunsExactlyConcurrencyClients(t *testing.T) {
	for _, concurrency := range []int{1, 4, 32} {
		fake := sessiontesting.NewFakeSession()
		fake.Latency = time.Millisecond
		tracker := newClientTracker(concurrency)

		config := DefaultPoolConfig()
		config.Concurrency = concurrency
		pool := newTestPool(t, fake, config, tracker)

		if pool.Size() != concurrency {
			t.Fatalf("expected %d clients, got %d", concurrency, pool.Size())
		}

		shutdown := NewShutdownSignal(context.Background())
		if err := pool.Start(shutdown.Context()); err != nil {
			t.Fatalf("start failed: %v", err)
		}

		select {
		case <-tracker.allSeen:
		case <-time.After(5 * time.Second):
			t.Fatalf("concurrency %d: not every client completed a round", concurrency)
		}

		shutdown.Trigger()
		if err := joinWithTimeout(t, pool); err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}

		tracker.mu.Lock()
		for id := range tracker.seen {
			if id < 0 || id >= concurrency {
				t.Errorf("unexpected client id %d", id)
			}
		}
		tracker.mu.Unlock()

		// no client may dispatch after join returned
		dispatched := fake.Dispatched()
		time.Sleep(10 * time.Millisecond)
		if fake.Dispatched() != dispatched {
			t.Errorf("requests dispatched after join returned")
		}
		if dispatched%int64(len(config.PartitionKeys)) != 0 {
			t.Errorf("expected only complete rounds, got %d requests", dispatched)
		}
	}
}

func TestPoolShutdownRightAfterStart(t *testing.T) {
	fake := sessiontesting.NewFakeSession()
	fake.Latency = 10 * time.Millisecond

	config := PoolConfig{Concurrency: 4, PartitionKeys: []int{0, 1, 2}, Threshold: DefaultThreshold}
	pool := newTestPool(t, fake, config, nil)

	shutdown := NewShutdownSignal(context.Background())
	if err := pool.Start(shutdown.Context()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	shutdown.Trigger()

	start := time.Now()
	if err := joinWithTimeout(t, pool); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown took %v", elapsed)
	}

	// every client finishes at most the round it had already started
	if got := fake.Dispatched(); got > 4*3 || got%3 != 0 {
		t.Errorf("unexpected number of dispatched requests: %d", got)
	}
	if len(fake.EventsOf(sessiontesting.EventAwait)) != int(fake.Dispatched()) {
		t.Errorf("every dispatched request must be awaited")
	}
}

func TestPoolReportsFirstErrorAfterAllStopped(t *testing.T) {
	injected := errors.New("unavailable")
	fake := sessiontesting.NewFakeSession()
	fake.Latency = time.Millisecond
	fake.FailCompletion = func(seq int64, _ []interface{}) error {
		if seq == 40 {
			return injected
		}
		return nil
	}

	config := PoolConfig{Concurrency: 4, PartitionKeys: []int{0, 1, 2}, Threshold: DefaultThreshold}
	pool := newTestPool(t, fake, config, nil)

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := joinWithTimeout(t, pool)
	var roundErr *RoundError
	if !errors.As(err, &roundErr) || !errors.Is(err, injected) {
		t.Fatalf("expected the injected round error, got %v", err)
	}

	dispatched := fake.Dispatched()
	time.Sleep(10 * time.Millisecond)
	if fake.Dispatched() != dispatched {
		t.Errorf("clients kept running after join returned")
	}
	if len(fake.EventsOf(sessiontesting.EventAwait)) != int(dispatched) {
		t.Errorf("every dispatched request must be awaited")
	}
}

func TestPoolStaggeredStartEndsOnShutdown(t *testing.T) {
	fake := sessiontesting.NewFakeSession()
	fake.Latency = time.Millisecond

	config := PoolConfig{Concurrency: 3, PartitionKeys: []int{0}, Threshold: 1, StartDelay: time.Hour}
	pool := newTestPool(t, fake, config, nil)

	shutdown := NewShutdownSignal(context.Background())
	time.AfterFunc(20*time.Millisecond, shutdown.Trigger)

	started := make(chan error, 1)
	go func() { started <- pool.Start(shutdown.Context()) }()

	select {
	case err := <-started:
		if err != nil {
			t.Fatalf("start failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("start delay was not interrupted by the shutdown")
	}

	if err := joinWithTimeout(t, pool); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

func TestPoolLifecycleErrors(t *testing.T) {
	fake := sessiontesting.NewFakeSession()
	pool := newTestPool(t, fake, PoolConfig{Concurrency: 1, PartitionKeys: []int{0}}, nil)

	if err := pool.Join(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := pool.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	if err := joinWithTimeout(t, pool); err != nil {
		t.Errorf("expected clean stop, got %v", err)
	}
}

func TestPoolConfigValidation(t *testing.T) {
	fake := sessiontesting.NewFakeSession()
	query, _ := fake.Prepare(testQuery)

	tests := []struct {
		name   string
		config PoolConfig
	}{
		{"zero concurrency", PoolConfig{Concurrency: 0, PartitionKeys: []int{0}}},
		{"negative concurrency", PoolConfig{Concurrency: -3, PartitionKeys: []int{0}}},
		{"no partition keys", PoolConfig{Concurrency: 1}},
		{"negative start delay", PoolConfig{Concurrency: 1, PartitionKeys: []int{0}, StartDelay: -time.Second}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPool(tc.config, fake, query, nil); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPoolCopiesPartitionKeys(t *testing.T) {
	fake := sessiontesting.NewFakeSession()
	keys := []int{4, 5}
	pool := newTestPool(t, fake, PoolConfig{Concurrency: 1, PartitionKeys: keys}, nil)

	keys[0] = 99
	if got := pool.Config().PartitionKeys[0]; got != 4 {
		t.Errorf("pool must not observe changes to the caller's keys, got %d", got)
	}
}
