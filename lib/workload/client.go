package workload

import (
	"context"
	"github.com/ValentinKolb/cqlbench/lib/session"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var Logger = logger.GetLogger("workload")

// DefaultThreshold is the clustering value lower bound of the benchmark query
const DefaultThreshold = 995

// VirtualClient is one concurrency slot of the benchmark. It is either
// running (inside Run) or stopped (Run has returned); a stopped client is
// never restarted.
type VirtualClient struct {
	id        int
	session   session.ISession
	query     session.IPreparedQuery
	keys      []int // shared, read only
	threshold int
	observer  IRoundObserver
}

// pendingRequest is a dispatched request of the current Round
type pendingRequest struct {
	key    int
	future session.IResultFuture
}

// NewVirtualClient creates a client that queries the given partition keys.
// observer may be nil.
func NewVirtualClient(id int, sess session.ISession, query session.IPreparedQuery, keys []int, threshold int, observer IRoundObserver) *VirtualClient {
	return &VirtualClient{
		id:        id,
		session:   sess,
		query:     query,
		keys:      keys,
		threshold: threshold,
		observer:  observer,
	}
}

// ID returns the identifier of the client inside its pool
func (c *VirtualClient) ID() int {
	return c.id
}

// Run executes Rounds until ctx is cancelled or a Round fails. The context is
// only checked before a Round starts: requests are dispatched with a context
// that ignores the cancellation, so a Round in flight always completes.
// Cancellation is a clean stop and returns nil, a failed Round returns a
// *RoundError.
func (c *VirtualClient) Run(ctx context.Context) error {
	reqCtx := context.WithoutCancel(ctx)

	for round := uint64(1); ; round++ {
		if ctx.Err() != nil {
			Logger.Debugf("client %d stopped after %d rounds", c.id, round-1)
			return nil
		}

		start := time.Now()
		dispatched, err := c.runRound(reqCtx, round)

		if c.observer != nil {
			c.observer.ObserveRound(RoundResult{
				ClientID: c.id,
				Round:    round,
				Requests: dispatched,
				Duration: time.Since(start),
				Err:      err,
			})
		}

		if err != nil {
			Logger.Errorf("%v", err)
			return err
		}
	}
}

// runRound binds and dispatches one request per partition key and then waits
// for all of them. All requests are in flight before the first one is awaited.
// Requests that were dispatched are always awaited, even if a later bind
// failed. The first error in partition key order is returned.
func (c *VirtualClient) runRound(ctx context.Context, round uint64) (int, error) {
	pending := make([]pendingRequest, 0, len(c.keys))
	var firstErr error

	// fan out
	for _, key := range c.keys {
		req, err := Bind(c.query, key, c.threshold)
		if err != nil {
			firstErr = c.roundError(round, key, StageBind, err)
			break
		}
		pending = append(pending, pendingRequest{
			key:    key,
			future: c.session.ExecuteAsync(ctx, req),
		})
	}

	// join
	for _, p := range pending {
		if err := p.future.Wait(); err != nil && firstErr == nil {
			firstErr = c.roundError(round, p.key, StageCompletion, err)
		}
	}

	return len(pending), firstErr
}

func (c *VirtualClient) roundError(round uint64, key int, stage Stage, err error) *RoundError {
	return &RoundError{
		ClientID:     c.id,
		Round:        round,
		PartitionKey: key,
		Stage:        stage,
		Err:          err,
	}
}
