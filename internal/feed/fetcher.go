// Package feed implements the fetch state machine behind every listing in
// the client. A Fetcher is keyed by (endpoint, page token, generation): a new
// request is issued only when that key changes, and only the most recently
// issued request may write its result into the visible state.
package feed

import (
	"context"
	"errors"
)

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Key identifies one fetchable page at one refresh generation. Keys are
// compared by value.
type Key struct {
	Endpoint   string
	PageToken  string
	Generation uint64
}

type Request struct {
	Seq uint64
	Key Key
}

type Response[T any] struct {
	Seq  uint64
	Data T
	Err  error
}

type State[T any] struct {
	Status Status
	Key    Key
	Data   T
	Err    error
}

// Loader performs the request for a key.
type Loader[T any] func(ctx context.Context, key Key) (T, error)

var ErrNoLoader = errors.New("feed: no loader configured")

// Fetcher is owned by a single event loop and is not safe for concurrent use.
// Network calls run elsewhere; only Sync and Resolve touch the state.
type Fetcher[T any] struct {
	state    State[T]
	issued   bool
	latest   uint64
	inFlight map[uint64]Key
}

func New[T any]() *Fetcher[T] {
	return &Fetcher[T]{inFlight: make(map[uint64]Key)}
}

// Sync reports the request to run when key differs from the key of the last
// issued request. Calling Sync with an unchanged key is free.
func (f *Fetcher[T]) Sync(key Key) (Request, bool) {
	if f.issued && f.state.Key == key {
		return Request{}, false
	}
	f.latest++
	f.issued = true
	f.inFlight[f.latest] = key
	f.state.Key = key
	f.state.Status = Loading
	return Request{Seq: f.latest, Key: key}, true
}

// Resolve applies a finished request. Responses of anything but the most
// recently issued request are dropped and Resolve reports false. A failure
// clears previously loaded data.
func (f *Fetcher[T]) Resolve(resp Response[T]) bool {
	if _, ok := f.inFlight[resp.Seq]; !ok {
		return false
	}
	delete(f.inFlight, resp.Seq)
	if resp.Seq != f.latest {
		return false
	}

	if resp.Err != nil {
		var zero T
		f.state.Data = zero
		f.state.Err = resp.Err
		f.state.Status = Failed
		return true
	}
	f.state.Data = resp.Data
	f.state.Err = nil
	f.state.Status = Loaded
	return true
}

// Release is called when the listing leaves the screen. Pending requests are
// forgotten so late responses are ignored, loaded data is dropped, and the
// next Sync fetches again whatever its key.
func (f *Fetcher[T]) Release() {
	for seq := range f.inFlight {
		delete(f.inFlight, seq)
	}
	f.issued = false
	f.state = State[T]{}
}

func (f *Fetcher[T]) State() State[T] {
	return f.state
}

// Current reports whether seq is the request whose result would be applied.
func (f *Fetcher[T]) Current(seq uint64) bool {
	_, ok := f.inFlight[seq]
	return ok && seq == f.latest
}

func (f *Fetcher[T]) InFlight() int {
	return len(f.inFlight)
}

// Execute runs load for req and packages the outcome for Resolve.
func Execute[T any](ctx context.Context, req Request, load Loader[T]) Response[T] {
	if load == nil {
		return Response[T]{Seq: req.Seq, Err: ErrNoLoader}
	}
	data, err := load(ctx, req.Key)
	return Response[T]{Seq: req.Seq, Data: data, Err: err}
}
