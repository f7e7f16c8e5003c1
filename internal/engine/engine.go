package engine

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher is the handle a thunk receives: it may dispatch further
// commands and read the current state.
type Dispatcher interface {
	Dispatch(Command) Command
	State() State
}

// Thunk is a multi-step operation run through the store. It typically
// dispatches a *_REQUEST command, does its work (persistence, generation,
// export), then dispatches *_SUCCESS or *_FAILURE and returns its result.
type Thunk func(ctx context.Context, d Dispatcher) (any, error)

// Store holds the application state tree and serializes every change to it.
//
// Thread-safety model:
//   - Dispatch(): safe from any goroutine. Reductions are applied one at a
//     time and listeners are notified in the same order the reductions were
//     applied.
//   - Run(): safe from any goroutine. The thunk body runs outside the lock,
//     so commands from concurrent thunks may interleave; each command on its
//     own is applied atomically.
//   - State(): safe from any goroutine; returns a snapshot.
//
// Listeners must not call Dispatch synchronously: notification holds the
// ordering lock and a nested Dispatch would wait on it forever.
type Store struct {
	mu        sync.Mutex // guards state and listeners
	notifyMu  sync.Mutex // orders notifications to match reductions
	state     State
	reduce    Reducer
	listeners []func()

	clock   *Clock
	flowGen FlowTokenGenerator
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the logical clock stamping reductions.
func WithClock(c *Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithFlowGenerator sets the flow token generator used by Run.
//
// Default: UUIDv7Generator.
func WithFlowGenerator(g FlowTokenGenerator) Option {
	return func(s *Store) {
		s.flowGen = g
	}
}

// WithLogger sets the logger for thunk start/finish lines. A nil logger
// keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store with the given root reducer and initial state.
// A nil reducer defaults to Reduce.
func New(reducer Reducer, initial State, opts ...Option) *Store {
	if reducer == nil {
		reducer = Reduce
	}
	s := &Store{
		state:   initial,
		reduce:  reducer,
		clock:   NewClock(),
		flowGen: UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies a plain command: the state is replaced by
// reduce(state, c) under the lock, then every listener is called in
// subscription order. Returns c unchanged.
func (s *Store) Dispatch(c Command) Command {
	s.mu.Lock()
	s.state = s.reduce(s.state, c)
	s.clock.Next()
	listeners := s.listeners

	// Hand-over-hand: take the notify lock before releasing the state lock so
	// that the next reduction cannot notify ahead of this one.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range listeners {
		l()
	}
	return c
}

// Run executes a thunk, handing it the store as its Dispatcher, and returns
// whatever the thunk returns. Errors from the thunk are not suppressed.
//
// A fresh flow token is attached to ctx (see FlowToken) and to the log lines
// marking the start and end of the run.
func (s *Store) Run(ctx context.Context, thunk Thunk) (any, error) {
	flow := s.flowGen.Generate()
	ctx = WithFlowToken(ctx, flow)
	logger := s.logger.With("flow", flow)

	logger.Debug("thunk started")
	result, err := thunk(ctx, s)
	if err != nil {
		logger.Debug("thunk failed", "error", err)
		return result, err
	}
	logger.Debug("thunk finished")
	return result, nil
}

// State returns a snapshot of the current state tree.
// Payloads are shared with the store; callers must not mutate them.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seq returns the number of commands applied so far.
func (s *Store) Seq() int64 {
	return s.clock.Current()
}

// Subscribe registers a listener called after every applied command.
// There is no unsubscribe.
func (s *Store) Subscribe(listener func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}
