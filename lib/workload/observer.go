package workload

import (
	"time"
)

// RoundResult describes one finished Round
type RoundResult struct {
	ClientID int
	Round    uint64
	// Requests is the number of requests that were dispatched
	Requests int
	Duration time.Duration
	Err      error
}

// IRoundObserver is notified after every Round of every VirtualClient.
// Implementations are called concurrently and must not block.
type IRoundObserver interface {
	ObserveRound(result RoundResult)
}

// ObserverFunc adapts a function to IRoundObserver
type ObserverFunc func(result RoundResult)

func (f ObserverFunc) ObserveRound(result RoundResult) {
	f(result)
}
