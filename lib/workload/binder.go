package workload

import (
	"github.com/ValentinKolb/cqlbench/lib/session"
)

// Bind creates the request for one partition key of a Round. Every call
// returns a new request: the driver may route on the bound values, so a
// request bound for one key must never be sent for another.
// Errors of the underlying bind are returned unchanged.
func Bind(query session.IPreparedQuery, partitionKey, threshold int) (session.IRequest, error) {
	return query.Bind(partitionKey, threshold)
}
