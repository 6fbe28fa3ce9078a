package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/anton-lunev/zustand/storage"
	"github.com/anton-lunev/zustand/store"
)

// PersistOptions configures the persistence middleware.
type PersistOptions[T any] struct {
	// Key names the backend entry holding the serialized state.
	Key string
	// Backend stores the serialized state.
	Backend storage.Backend
	// Marshal and Unmarshal override the JSON default.
	Marshal   func(any) ([]byte, error)
	Unmarshal func([]byte, any) error
	// Partial projects the slice of state worth persisting. The
	// projection must serialize to an object whose keys merge back into
	// the state on hydration. Nil persists the full state.
	Partial func(T) any
	// Async hydrates in a background goroutine instead of blocking store
	// construction; track progress through the returned Hydration.
	Async bool
	// Context bounds backend calls. Defaults to context.Background.
	Context context.Context
	// OnWriteError observes failed writes. Nil drops them.
	OnWriteError func(error)
}

// Hydration tracks the load of persisted state into a new store.
type Hydration struct {
	mu   sync.Mutex
	done bool
	err  error
	cb   func(error)
}

// Done reports whether hydration has finished, successfully or not.
func (h *Hydration) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Err returns the hydration failure, if any. A missing key is not a
// failure.
func (h *Hydration) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// OnComplete registers the single hydration-end callback. If hydration
// already finished the callback runs immediately. A later registration
// replaces an earlier unfired one.
func (h *Hydration) OnComplete(fn func(error)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	if h.done {
		err := h.err
		h.mu.Unlock()
		fn(err)
		return
	}
	h.cb = fn
	h.mu.Unlock()
}

func (h *Hydration) complete(err error) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}
	h.done = true
	h.err = err
	cb := h.cb
	h.cb = nil
	h.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// Persist writes the (optionally projected) state to the backend after
// every mutation and hydrates previously persisted state into the store at
// creation. Synchronous hydration merges into the initial state before the
// store becomes observable; asynchronous hydration applies a merge through
// the store once the read finishes. A corrupt payload fails only the
// hydration step: the store comes up with its initial state and the error
// is reported through Hydration.
func Persist[T any](opts PersistOptions[T]) (store.Middleware[T], *Hydration) {
	h := &Hydration{}
	mw := func(next store.StateCreator[T]) store.StateCreator[T] {
		return func(set store.SetFunc[T], get store.GetFunc[T], api *store.Api[T]) T {
			if opts.Backend == nil {
				panic("zustand: persist requires a backend")
			}
			if opts.Key == "" {
				panic("zustand: persist requires a key")
			}
			marshal := opts.Marshal
			if marshal == nil {
				marshal = json.Marshal
			}
			unmarshal := opts.Unmarshal
			if unmarshal == nil {
				unmarshal = json.Unmarshal
			}
			ctx := opts.Context
			if ctx == nil {
				ctx = context.Background()
			}

			persisting := store.SetFunc[T](func(mutation any, replace bool) {
				set(mutation, replace)
				payload := any(get())
				if opts.Partial != nil {
					payload = opts.Partial(get())
				}
				data, err := marshal(payload)
				if err == nil {
					err = opts.Backend.Write(ctx, opts.Key, data)
				}
				if err != nil && opts.OnWriteError != nil {
					opts.OnWriteError(fmt.Errorf("persist %q: %w", opts.Key, err))
				}
			})
			api.SetState = persisting
			state := next(persisting, get, api)

			load := func() (map[string]any, error) {
				data, err := opts.Backend.Read(ctx, opts.Key)
				if errors.Is(err, storage.ErrNotFound) {
					return nil, nil
				}
				if err != nil {
					return nil, fmt.Errorf("hydrate %q: %w", opts.Key, err)
				}
				var patch map[string]any
				if err := unmarshal(data, &patch); err != nil {
					return nil, fmt.Errorf("hydrate %q: decode: %w", opts.Key, err)
				}
				return patch, nil
			}

			if opts.Async {
				go func() {
					patch, err := load()
					<-api.Ready
					if err == nil && patch != nil {
						api.SetState(patch, false)
					}
					h.complete(err)
				}()
				return state
			}

			patch, err := load()
			if err == nil && patch != nil {
				merged, mergeErr := store.Merge(state, patch)
				if mergeErr != nil {
					err = fmt.Errorf("hydrate %q: %w", opts.Key, mergeErr)
				} else {
					state = merged
				}
			}
			h.complete(err)
			return state
		}
	}
	return mw, h
}
