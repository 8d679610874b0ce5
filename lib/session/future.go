package session

import (
	"sync"
)

// Future is a channel backed IResultFuture. The zero value is not usable,
// create instances with NewFuture.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewFuture creates a pending future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that has already completed with err
func Resolved(err error) *Future {
	f := NewFuture()
	f.Resolve(err)
	return f
}

// Resolve completes the future. Only the first call has an effect.
func (f *Future) Resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

func (f *Future) Wait() error {
	<-f.done
	return f.err
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}
