package middleware

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/anton-lunev/zustand/inspector"
	"github.com/anton-lunev/zustand/store"
)

// defaultActionLabel tags mutations that did not come from a dispatch.
const defaultActionLabel = "setState"

// DevtoolsOption configures the devtools middleware.
type DevtoolsOption func(*devtoolsConfig)

type devtoolsConfig struct {
	log *zap.Logger
}

// WithDevtoolsLogger sets the logger for send and decode failures.
func WithDevtoolsLogger(log *zap.Logger) DevtoolsOption {
	return func(c *devtoolsConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Devtools mirrors every committed mutation to an external inspector as an
// action-labeled state snapshot and applies inbound time-travel requests
// via a full state replacement. Applied requests are not re-reported, so a
// mirror never feeds itself. The label is the dispatched action type while
// a dispatch is in flight, defaultActionLabel otherwise. The mirror stops
// when the inspector's receive channel closes; close the inspector to shut
// it down.
func Devtools[T any](conn inspector.Inspector, opts ...DevtoolsOption) store.Middleware[T] {
	cfg := devtoolsConfig{log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return func(next store.StateCreator[T]) store.StateCreator[T] {
		return func(set store.SetFunc[T], get store.GetFunc[T], api *store.Api[T]) T {
			if conn == nil {
				panic("zustand: devtools requires a connection")
			}
			var applying atomic.Bool
			var labelMu sync.Mutex
			label := defaultActionLabel

			currentLabel := func() string {
				labelMu.Lock()
				defer labelMu.Unlock()
				return label
			}
			report := func() {
				if applying.Load() {
					return
				}
				data, err := json.Marshal(get())
				if err != nil {
					cfg.log.Error("devtools snapshot failed", zap.Error(err))
					return
				}
				msg := inspector.Message{
					Type:   inspector.TypeAction,
					Action: currentLabel(),
					State:  data,
				}
				if err := conn.Send(msg); err != nil {
					cfg.log.Error("devtools send failed", zap.Error(err))
				}
			}

			mirrored := store.SetFunc[T](func(mutation any, replace bool) {
				set(mutation, replace)
				report()
			})
			api.SetState = mirrored
			state := next(mirrored, get, api)

			if dispatch := api.Dispatch; dispatch != nil {
				api.Dispatch = func(action store.Action) error {
					labelMu.Lock()
					label = action.Type
					labelMu.Unlock()
					defer func() {
						labelMu.Lock()
						label = defaultActionLabel
						labelMu.Unlock()
					}()
					return dispatch(action)
				}
			}

			go func() {
				<-api.Ready
				for msg := range conn.Receive() {
					if msg.Type != inspector.TypeState {
						continue
					}
					var historical T
					if err := json.Unmarshal(msg.State, &historical); err != nil {
						cfg.log.Error("devtools state decode failed", zap.Error(err))
						continue
					}
					applying.Store(true)
					api.SetState(historical, true)
					applying.Store(false)
				}
			}()

			return state
		}
	}
}
