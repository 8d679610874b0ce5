// Package workload implements the concurrent read workload of cqlbench.
//
// A Pool owns a fixed number of VirtualClients. Every VirtualClient runs an
// unbounded sequence of Rounds. A Round binds one request per configured
// partition key, dispatches all of them without waiting in between and only
// then waits for every dispatched request. Rounds of a single client are
// strictly sequential; concurrency comes from the width of the pool and the
// width of the fan-out inside a Round.
//
// Key Components:
//
//   - Bind: the query binder, creates a fresh request per partition key
//   - VirtualClient: the fan-out-then-join loop of one concurrency slot
//   - Pool: starts the clients (optionally staggered) and joins them,
//     reporting the first fatal error after every client has stopped
//   - ShutdownSignal: idempotent trigger wired to OS signals, observed by the
//     clients through a context at the top of every Round
//
// Cancellation is cooperative only. A Round that has been dispatched always
// runs to completion before the client looks at the shutdown state again.
//
// Usage Example:
//
//	shutdown := workload.NewShutdownSignal(context.Background())
//	defer shutdown.NotifyOnSignals(os.Interrupt, syscall.SIGTERM)()
//
//	query, _ := sess.Prepare("SELECT * FROM ks.t WHERE pk = ? AND v > ?")
//	pool, _ := workload.NewPool(workload.DefaultPoolConfig(), sess, query, nil)
//
//	if err := pool.Start(shutdown.Context()); err != nil {
//		return err
//	}
//	return pool.Join()
package workload
