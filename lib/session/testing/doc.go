// Package testing provides an instrumented in-memory session.ISession for
// tests of code that runs on top of the session boundary.
//
// FakeSession records every dispatch, await and synchronous execution in the
// order it happened, can delay completion of dispatched requests and can
// inject failures at bind, dispatch, completion or execute time.
//
// Example usage:
//
//	fake := testing.NewFakeSession()
//	fake.Latency = time.Millisecond
//	fake.FailCompletion = func(seq int64, values []interface{}) error {
//		if seq == 10 {
//			return errors.New("boom")
//		}
//		return nil
//	}
package testing
