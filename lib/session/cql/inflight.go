package cql

import (
	"fmt"
	"github.com/gocql/gocql"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// In-flight tracker
// --------------------------------------------------------------------------

// inFlightTracker counts the outstanding requests per host
type inFlightTracker struct {
	counts *xsync.MapOf[string, *xsync.Counter]
}

func newInFlightTracker() *inFlightTracker {
	return &inFlightTracker{counts: xsync.NewMapOf[string, *xsync.Counter]()}
}

func (t *inFlightTracker) counter(key string) *xsync.Counter {
	c, _ := t.counts.LoadOrCompute(key, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	return c
}

// load returns the number of outstanding requests of a host
func (t *inFlightTracker) load(key string) int64 {
	if c, ok := t.counts.Load(key); ok {
		return c.Value()
	}
	return 0
}

// hostKey identifies a host. Hosts without a host id (not yet discovered
// through the system tables) are keyed by identity.
func hostKey(host *gocql.HostInfo) string {
	if id := host.HostID(); id != "" {
		return id
	}
	return fmt.Sprintf("%p", host)
}

// --------------------------------------------------------------------------
// Policy
// --------------------------------------------------------------------------

// inFlightPolicy reorders the plan of its child policy so hosts with fewer
// outstanding requests are tried first. Everything except Pick is delegated
// to the child.
type inFlightPolicy struct {
	gocql.HostSelectionPolicy
	tracker *inFlightTracker
}

// InFlightHostPolicy wraps child and prefers the host with the least
// outstanding requests. Ties keep the order of the child plan.
func InFlightHostPolicy(child gocql.HostSelectionPolicy) gocql.HostSelectionPolicy {
	return &inFlightPolicy{
		HostSelectionPolicy: child,
		tracker:             newInFlightTracker(),
	}
}

func (p *inFlightPolicy) Pick(q gocql.ExecutableQuery) gocql.NextHost {
	next := p.HostSelectionPolicy.Pick(q)

	var plan []gocql.SelectedHost
	for host := next(); host != nil; host = next() {
		plan = append(plan, host)
	}

	// snapshot the counters, they change while we sort
	loads := make([]int64, len(plan))
	for i, host := range plan {
		loads[i] = p.tracker.load(hostKey(host.Info()))
	}
	order := make([]int, len(plan))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return loads[order[i]] < loads[order[j]]
	})

	var (
		pos     int
		current *trackedHost
	)
	return func() gocql.SelectedHost {
		// the driver moves on to the next host without marking the previous
		// one when it has no usable connection to it
		if current != nil {
			current.release()
		}
		if pos >= len(order) {
			return nil
		}
		selected := plan[order[pos]]
		pos++

		counter := p.tracker.counter(hostKey(selected.Info()))
		counter.Inc()
		current = &trackedHost{SelectedHost: selected, counter: counter}
		return current
	}
}

// trackedHost releases its in-flight slot when the driver marks the outcome
type trackedHost struct {
	gocql.SelectedHost
	counter  *xsync.Counter
	released atomic.Bool
}

func (h *trackedHost) Mark(err error) {
	h.release()
	h.SelectedHost.Mark(err)
}

func (h *trackedHost) release() {
	if h.released.CompareAndSwap(false, true) {
		h.counter.Dec()
	}
}
