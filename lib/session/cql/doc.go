// Package cql implements session.ISession on top of the gocql driver.
//
// Connect turns a common.ClusterConfig into a gocql.ClusterConfig and opens a
// session. The routing policy under test is selected by name:
//
//   - token: TokenAwareHostPolicy(RoundRobinHostPolicy())
//   - inflight: InFlightHostPolicy(RoundRobinHostPolicy()), prefers the host
//     with the fewest outstanding requests of this process
//   - round: RoundRobinHostPolicy()
//
// gocql has no asynchronous execute, so ExecuteAsync runs every request on
// its own goroutine and hands back a session.Future right away. gocql prepares
// a statement on its first execution and caches it per host, Prepare
// therefore only records the statement text.
//
// Requests are single use: a request returned by Bind must be executed at
// most once.
package cql
