package session

import (
	"context"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISession is the data-access client the benchmark runs against.
type ISession interface {
	// Prepare creates a reusable statement template. Preparing is done once,
	// binding is done for every request.
	Prepare(query string) (IPreparedQuery, error)
	// ExecuteAsync dispatches the request and returns immediately. The
	// outcome is reported through the returned future.
	ExecuteAsync(ctx context.Context, req IRequest) IResultFuture
	// Execute sends the request and blocks until it has completed.
	Execute(ctx context.Context, req IRequest) error
	// Close releases all connections held by the session.
	Close()
}

// IPreparedQuery is a parameterized statement that can be bound many times.
type IPreparedQuery interface {
	// Bind returns a new request with the given values. A request is never
	// shared between two Bind calls, because the driver may route on the
	// bound values.
	Bind(values ...interface{}) (IRequest, error)
	// Statement returns the statement text of the template
	Statement() string
}

// IRequest is a bound request that has not been dispatched yet.
type IRequest interface {
	// Values returns the values the request was bound with
	Values() []interface{}
}

// IResultFuture is the handle of a dispatched request.
type IResultFuture interface {
	// Wait blocks until the request has completed and returns its error
	Wait() error
	// Done is closed once the request has completed
	Done() <-chan struct{}
}
