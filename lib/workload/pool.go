package workload

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/cqlbench/lib/session"
	"golang.org/x/sync/errgroup"
	"strings"
	"sync"
	"time"
)

// --------------------------------------------------------------------------
// Pool configuration
// --------------------------------------------------------------------------

// PoolConfig is fixed for the lifetime of a Pool.
type PoolConfig struct {
	// Concurrency is the number of VirtualClients
	Concurrency int
	// PartitionKeys are queried once per Round, in this order
	PartitionKeys []int
	// Threshold is bound as the clustering value lower bound
	Threshold int
	// StartDelay is slept between two client starts. Zero disables staggering.
	StartDelay time.Duration
}

// DefaultPoolConfig returns the configuration used by the command line tool
// when no flags are given
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Concurrency:   1024,
		PartitionKeys: []int{0, 1, 2},
		Threshold:     DefaultThreshold,
	}
}

// Validate checks that the configuration can be run
func (c PoolConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if len(c.PartitionKeys) == 0 {
		return fmt.Errorf("%w: at least one partition key is required", ErrInvalidConfig)
	}
	if c.StartDelay < 0 {
		return fmt.Errorf("%w: start delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c PoolConfig) String() string {
	var sb strings.Builder
	keys := make([]string, len(c.PartitionKeys))
	for i, k := range c.PartitionKeys {
		keys[i] = fmt.Sprint(k)
	}

	sb.WriteString("\nWORKLOAD\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %d\n", "Concurrency", c.Concurrency))
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Partition Keys", strings.Join(keys, " ")))
	sb.WriteString(fmt.Sprintf("  %-22s: v > %d\n", "Threshold", c.Threshold))
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Start Delay", c.StartDelay))
	return sb.String()
}

// --------------------------------------------------------------------------
// Pool
// --------------------------------------------------------------------------

// Pool owns a fixed set of VirtualClients.
type Pool struct {
	config  PoolConfig
	clients []*VirtualClient

	mu      sync.Mutex
	group   *errgroup.Group
	started bool
}

// NewPool creates exactly config.Concurrency clients. The clients share the
// session, the prepared query and a private copy of the partition keys.
func NewPool(config PoolConfig, sess session.ISession, query session.IPreparedQuery, observer IRoundObserver) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	keys := make([]int, len(config.PartitionKeys))
	copy(keys, config.PartitionKeys)
	config.PartitionKeys = keys

	clients := make([]*VirtualClient, config.Concurrency)
	for i := range clients {
		clients[i] = NewVirtualClient(i, sess, query, keys, config.Threshold, observer)
	}

	return &Pool{
		config:  config,
		clients: clients,
	}, nil
}

// Size returns the number of clients of the pool
func (p *Pool) Size() int {
	return len(p.clients)
}

// Config returns the configuration of the pool
func (p *Pool) Config() PoolConfig {
	return p.config
}

// Start launches every client. Between two launches the pool sleeps for
// StartDelay; the sleep ends early when ctx is cancelled, but every client is
// still launched and stops at its first shutdown check.
// Cancelling ctx stops the pool. A fatal error of one client stops the others
// after their current Round.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	group, groupCtx := errgroup.WithContext(ctx)
	p.group = group

	for i, client := range p.clients {
		client := client
		group.Go(func() error {
			return client.Run(groupCtx)
		})

		if p.config.StartDelay > 0 && i < len(p.clients)-1 {
			select {
			case <-groupCtx.Done():
			case <-time.After(p.config.StartDelay):
			}
		}
	}

	Logger.Infof("started %d virtual clients", len(p.clients))
	return nil
}

// Join blocks until every client has stopped and returns the first fatal
// error, if any.
func (p *Pool) Join() error {
	p.mu.Lock()
	group := p.group
	p.mu.Unlock()

	if group == nil {
		return ErrNotStarted
	}

	err := group.Wait()
	if err != nil {
		Logger.Errorf("all %d virtual clients stopped, first error: %v", len(p.clients), err)
	} else {
		Logger.Infof("all %d virtual clients stopped", len(p.clients))
	}
	return err
}

// Run starts the pool and joins it
func (p *Pool) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	return p.Join()
}
