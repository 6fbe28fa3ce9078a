package middleware

import (
	"errors"
	"fmt"

	"github.com/anton-lunev/zustand/store"
)

// Reducer computes the next state from the current state and an action.
// An error leaves the state unchanged.
type Reducer[T any] func(state T, action store.Action) (T, error)

// Redux builds a state creator whose mutation path is reducer dispatch:
// it installs api.Dispatch, which runs the reducer against the current
// state and commits the result as a full replacement. States that want
// dispatch on themselves embed a func(store.Action) error field and assign
// it from api.Dispatch in a wrapping creator.
func Redux[T any](reducer Reducer[T], initial T) store.StateCreator[T] {
	return func(set store.SetFunc[T], get store.GetFunc[T], api *store.Api[T]) T {
		api.Dispatch = func(action store.Action) error {
			if reducer == nil {
				return errors.New("zustand: redux: nil reducer")
			}
			next, err := reducer(get(), action)
			if err != nil {
				return fmt.Errorf("reduce %q: %w", action.Type, err)
			}
			set(next, true)
			return nil
		}
		return initial
	}
}
