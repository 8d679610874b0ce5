package workload

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// ShutdownSignal is the process wide stop request of a benchmark run. It only
// ever goes from not triggered to triggered.
type ShutdownSignal struct {
	ctx       context.Context
	cancel    context.CancelFunc
	triggered atomic.Bool
}

// NewShutdownSignal creates a signal whose context is derived from parent.
// Cancelling parent does not mark the signal as triggered.
func NewShutdownSignal(parent context.Context) *ShutdownSignal {
	ctx, cancel := context.WithCancel(parent)
	return &ShutdownSignal{ctx: ctx, cancel: cancel}
}

// Trigger requests the shutdown. Repeated calls are no-ops.
func (s *ShutdownSignal) Trigger() {
	if s.triggered.CompareAndSwap(false, true) {
		Logger.Infof("received termination signal, shutting down")
		s.cancel()
	}
}

// IsTriggered reports whether Trigger has been called
func (s *ShutdownSignal) IsTriggered() bool {
	return s.triggered.Load()
}

// Context is cancelled once the signal is triggered
func (s *ShutdownSignal) Context() context.Context {
	return s.ctx
}

// NotifyOnSignals triggers the shutdown when one of sigs is received. After
// the first signal the default handling is restored, so a second interrupt
// terminates the process. The returned function removes the handler.
func (s *ShutdownSignal) NotifyOnSignals(sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			signal.Stop(ch)
			s.Trigger()
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
