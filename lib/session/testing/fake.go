package testing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/cqlbench/lib/session"
)

// ErrClosed is returned for requests issued after Close
var ErrClosed = errors.New("session closed")

// EventKind identifies a recorded event
type EventKind string

const (
	EventDispatch EventKind = "dispatch"
	EventAwait    EventKind = "await"
	EventExecute  EventKind = "execute"
)

// Event is one recorded interaction with the fake
type Event struct {
	Kind      EventKind
	Seq       int64 // dispatch sequence number, 0 for synchronous executions
	Statement string
	Values    []interface{}
}

// FakeSession implements session.ISession in memory. All hook fields must be
// set before the session is used.
type FakeSession struct {
	// Latency delays completion of every dispatched request
	Latency time.Duration
	// FailPrepare is consulted on Prepare
	FailPrepare func(query string) error
	// FailBind is consulted on every Bind
	FailBind func(values []interface{}) error
	// FailDispatch makes ExecuteAsync return an already failed future
	FailDispatch func(seq int64, values []interface{}) error
	// FailCompletion makes a dispatched request fail once it completes
	FailCompletion func(seq int64, values []interface{}) error
	// FailExecute is consulted on every synchronous Execute
	FailExecute func(statement string, values []interface{}) error
	// OnDispatch is called after a request was dispatched
	OnDispatch func(seq int64, values []interface{})

	mu       sync.Mutex
	events   []Event
	seq      int64
	inFlight int64
	maxIn    int64
	closed   atomic.Bool
}

// NewFakeSession creates a session without latency or failures
func NewFakeSession() *FakeSession {
	return &FakeSession{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see session.ISession)
// --------------------------------------------------------------------------

func (s *FakeSession) Prepare(query string) (session.IPreparedQuery, error) {
	if s.FailPrepare != nil {
		if err := s.FailPrepare(query); err != nil {
			return nil, err
		}
	}
	return &fakePrepared{session: s, statement: query}, nil
}

func (s *FakeSession) ExecuteAsync(_ context.Context, req session.IRequest) session.IResultFuture {
	r := req.(*fakeRequest)
	if s.closed.Load() {
		return session.Resolved(ErrClosed)
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.events = append(s.events, Event{Kind: EventDispatch, Seq: seq, Statement: r.statement, Values: r.values})
	s.mu.Unlock()

	if s.FailDispatch != nil {
		if err := s.FailDispatch(seq, r.values); err != nil {
			return session.Resolved(err)
		}
	}

	if n := atomic.AddInt64(&s.inFlight, 1); n > atomic.LoadInt64(&s.maxIn) {
		s.updateMax(n)
	}

	f := &fakeFuture{Future: session.NewFuture(), session: s, seq: seq, request: r}
	complete := func() {
		var err error
		if s.FailCompletion != nil {
			err = s.FailCompletion(seq, r.values)
		}
		atomic.AddInt64(&s.inFlight, -1)
		f.Resolve(err)
	}

	if s.Latency > 0 {
		time.AfterFunc(s.Latency, complete)
	} else {
		complete()
	}

	if s.OnDispatch != nil {
		s.OnDispatch(seq, r.values)
	}
	return f
}

func (s *FakeSession) Execute(_ context.Context, req session.IRequest) error {
	r := req.(*fakeRequest)
	if s.closed.Load() {
		return ErrClosed
	}
	if s.FailExecute != nil {
		if err := s.FailExecute(r.statement, r.values); err != nil {
			return err
		}
	}
	s.record(Event{Kind: EventExecute, Statement: r.statement, Values: r.values})
	return nil
}

func (s *FakeSession) Close() {
	s.closed.Store(true)
}

// --------------------------------------------------------------------------
// Inspection
// --------------------------------------------------------------------------

// Events returns a copy of all recorded events in order
func (s *FakeSession) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsOf returns the recorded events of one kind in order
func (s *FakeSession) EventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Dispatched returns the number of requests dispatched so far
func (s *FakeSession) Dispatched() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// MaxInFlight returns the highest number of concurrently pending requests
func (s *FakeSession) MaxInFlight() int64 {
	return atomic.LoadInt64(&s.maxIn)
}

// Closed reports whether Close was called
func (s *FakeSession) Closed() bool {
	return s.closed.Load()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (s *FakeSession) record(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *FakeSession) updateMax(n int64) {
	for {
		current := atomic.LoadInt64(&s.maxIn)
		if n <= current || atomic.CompareAndSwapInt64(&s.maxIn, current, n) {
			return
		}
	}
}

type fakePrepared struct {
	session   *FakeSession
	statement string
}

func (p *fakePrepared) Bind(values ...interface{}) (session.IRequest, error) {
	if p.session.FailBind != nil {
		if err := p.session.FailBind(values); err != nil {
			return nil, err
		}
	}
	return &fakeRequest{statement: p.statement, values: values}, nil
}

func (p *fakePrepared) Statement() string {
	return p.statement
}

type fakeRequest struct {
	statement string
	values    []interface{}
}

func (r *fakeRequest) Values() []interface{} {
	return r.values
}

// fakeFuture records an await event the first time Wait is called
type fakeFuture struct {
	*session.Future
	session *FakeSession
	seq     int64
	request *fakeRequest
	awaited atomic.Bool
}

func (f *fakeFuture) Wait() error {
	if f.awaited.CompareAndSwap(false, true) {
		f.session.record(Event{Kind: EventAwait, Seq: f.seq, Statement: f.request.statement, Values: f.request.values})
	}
	return f.Future.Wait()
}
