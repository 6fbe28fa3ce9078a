package store

import (
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// listener is one registry entry. fire closes over the selector, equality
// function, callback, and last-seen selected value.
type listener[T any] struct {
	id      ulid.ULID
	fire    func(next T)
	removed atomic.Bool
}

type subscribeConfig[U any] struct {
	equal           func(a, b U) bool
	fireImmediately bool
}

// SubscribeOption configures a selector subscription.
type SubscribeOption[U any] func(*subscribeConfig[U])

// WithEquality overrides the equality function gating the callback. The
// default is reference equality on the selected value.
func WithEquality[U any](equal func(a, b U) bool) SubscribeOption[U] {
	return func(c *subscribeConfig[U]) {
		if equal != nil {
			c.equal = equal
		}
	}
}

// WithFireImmediately invokes the callback once at subscribe time with the
// current selection as both arguments.
func WithFireImmediately[U any]() SubscribeOption[U] {
	return func(c *subscribeConfig[U]) {
		c.fireImmediately = true
	}
}

// SubscribeSelector registers cb to run when selector's result changes
// between transitions, judged by the configured equality function.
// Listeners fire in subscription order. The returned unsubscribe function
// is idempotent and safe to call from inside the callback itself.
func SubscribeSelector[T, U any](s *Store[T], selector func(T) U, cb func(next, prev U), opts ...SubscribeOption[U]) func() {
	cfg := subscribeConfig[U]{equal: EqualRef[U]}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return addListener(s, selector, cfg.equal, cb, cfg.fireImmediately)
}

func (s *Store[T]) subscribe(cb func(next, prev T)) func() {
	return addListener(s, func(state T) T { return state }, EqualRef[T], cb, false)
}

func addListener[T, U any](s *Store[T], selector func(T) U, equal func(a, b U) bool, cb func(next, prev U), fireNow bool) func() {
	if s == nil || selector == nil || cb == nil {
		return func() {}
	}
	l := &listener[T]{id: ulid.Make()}
	last := selector(s.get())
	l.fire = func(next T) {
		selected := selector(next)
		if equal(selected, last) {
			return
		}
		prev := last
		cb(selected, prev)
		last = selected
	}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	if fireNow {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("listener panicked",
						zap.String("listener", l.id.String()),
						zap.Any("panic", r))
				}
			}()
			cb(last, last)
		}()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.removed.Store(true)
			s.mu.Lock()
			for i, entry := range s.listeners {
				if entry == l {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	}
}
