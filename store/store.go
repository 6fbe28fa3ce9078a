// Package store implements a single-writer reactive state container with
// selector subscriptions and a composable middleware protocol.
package store

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store owns one state value and notifies subscribers after each committed
// transition. All methods are safe for concurrent use; mutation semantics
// remain single-writer: SetState applies the transition and runs the full
// notification pass before it returns.
type Store[T any] struct {
	mu          sync.Mutex
	state       T
	initialized bool
	listeners   []*listener[T]
	notifying   bool
	pending     []T
	log         *zap.Logger
	api         *Api[T]
	ready       chan struct{}
}

// Option configures a Store at construction time.
type Option[T any] func(*Store[T])

// WithLogger sets the logger used to report listener failures and rejected
// mutations.
func WithLogger[T any](log *zap.Logger) Option[T] {
	return func(s *Store[T]) {
		if log != nil {
			s.log = log
		}
	}
}

// New invokes creator exactly once with set, get, and api functions bound to
// the new store; the creator's return value becomes the initial state. A
// panic in the creator propagates to the caller and the store is not created.
func New[T any](creator StateCreator[T], opts ...Option[T]) *Store[T] {
	if creator == nil {
		panic("zustand: nil state creator")
	}
	s := &Store[T]{log: defaultLogger(), ready: make(chan struct{})}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	api := &Api[T]{
		SetState:  s.set,
		GetState:  s.get,
		Subscribe: s.subscribe,
		Destroy:   s.destroy,
		Ready:     s.ready,
	}
	s.api = api
	state := creator(api.SetState, api.GetState, api)

	s.mu.Lock()
	s.state = state
	s.initialized = true
	s.mu.Unlock()
	close(s.ready)
	return s
}

// Api exposes the store surface handed to middlewares during construction.
// A middleware that wraps SetState must install the wrapper here as well as
// pass it to the inner creator, so the public Store methods route through
// every layer.
type Api[T any] struct {
	SetState  SetFunc[T]
	GetState  GetFunc[T]
	Subscribe func(cb func(next, prev T)) func()
	Destroy   func()

	// Ready is closed once the initial state is committed. Middlewares
	// that mutate from background goroutines must wait on it; calling
	// SetState before the creator has returned is a construction error.
	Ready <-chan struct{}

	// Dispatch is installed by the reducer adapter; nil otherwise.
	Dispatch func(Action) error
}

// GetState returns the current state. It never blocks on notification and
// always reflects the latest committed transition.
func (s *Store[T]) GetState() T {
	return s.api.GetState()
}

// SetState applies a mutation and synchronously notifies subscribers whose
// selection changed. See Merge for the accepted mutation forms. With
// replace=false the result is merged one level deep into the current state;
// with replace=true it replaces the state wholesale. A mutation of an
// unsupported type panics.
func (s *Store[T]) SetState(mutation any, replace bool) {
	s.api.SetState(mutation, replace)
}

// Subscribe registers cb to run on every committed transition with the new
// and previous state. The returned unsubscribe function is idempotent and
// safe to call during a notification pass.
func (s *Store[T]) Subscribe(cb func(next, prev T)) func() {
	return s.api.Subscribe(cb)
}

// Destroy removes every listener. Later SetState calls still mutate state
// but notify no one. Idempotent.
func (s *Store[T]) Destroy() {
	s.api.Destroy()
}

// Dispatch forwards an action to the reducer adapter, if one is installed.
func (s *Store[T]) Dispatch(action Action) error {
	dispatch := s.api.Dispatch
	if dispatch == nil {
		return fmt.Errorf("zustand: no reducer installed for action %q", action.Type)
	}
	return dispatch(action)
}

func (s *Store[T]) get() T {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	return state
}

// set commits a transition and runs its notification pass. A nested call
// issued from a listener callback commits immediately but queues its pass;
// queued passes run whole and in call order before the outermost set
// returns, so passes never interleave.
func (s *Store[T]) set(mutation any, replace bool) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		panic("zustand: set called before the state creator returned an initial state")
	}
	prev := s.state
	next, err := resolveMutation(prev, mutation, replace)
	if err != nil {
		s.mu.Unlock()
		panic(fmt.Sprintf("zustand: %v", err))
	}
	if Identical(next, prev) {
		s.mu.Unlock()
		return
	}
	s.state = next
	if s.notifying {
		s.pending = append(s.pending, next)
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()

	s.runPass(next)
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.notifying = false
			s.mu.Unlock()
			return
		}
		queued := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		s.runPass(queued)
	}
}

// runPass walks the listeners registered at pass start, in subscription
// order. Listeners removed mid-pass are skipped.
func (s *Store[T]) runPass(next T) {
	s.mu.Lock()
	snapshot := make([]*listener[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		if l.removed.Load() {
			continue
		}
		s.invoke(l, next)
	}
}

// invoke fires one listener, isolating a panic so the rest of the pass
// still runs.
func (s *Store[T]) invoke(l *listener[T], next T) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("listener panicked",
				zap.String("listener", l.id.String()),
				zap.Any("panic", r))
		}
	}()
	l.fire(next)
}

func (s *Store[T]) destroy() {
	s.mu.Lock()
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()
	for _, l := range listeners {
		l.removed.Store(true)
	}
}

func defaultLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.ErrorLevel,
	)
	return zap.New(core)
}
