// Package session defines the boundary between the benchmark core and the
// database driver it runs against.
//
// The workload engine and the seeder never talk to a driver directly. They
// depend on four small interfaces:
//
//   - ISession: prepares statements, dispatches bound requests without
//     blocking (ExecuteAsync) and executes them synchronously (Execute)
//   - IPreparedQuery: a statement template that can be bound repeatedly
//   - IRequest: a bound, executable request that has not been sent yet
//   - IResultFuture: the handle returned by ExecuteAsync, awaited separately
//
// Subpackages:
//
//   - cql: the gocql based implementation used by the command line tool
//   - testing: an instrumented in-memory implementation for tests
//
// Thread Safety:
//
//	ISession implementations must allow concurrent ExecuteAsync calls from
//	many goroutines. IRequest values are not shared between goroutines.
package session
