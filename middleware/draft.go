package middleware

import (
	"encoding/json"
	"fmt"

	"github.com/anton-lunev/zustand/store"
)

// Draft lets callers mutate a disposable copy of the state in place: the
// wrapped set additionally accepts a func(*T) recipe. The adapter clones
// the current state, applies the recipe to the clone, and commits the
// result as a full replacement. clone must return a copy sharing no
// mutable data with its input, otherwise recipes would write into the
// committed state. Other mutation forms pass through unchanged.
func Draft[T any](clone func(T) T) store.Middleware[T] {
	if clone == nil {
		panic("zustand: Draft requires a clone function")
	}
	return func(next store.StateCreator[T]) store.StateCreator[T] {
		return func(set store.SetFunc[T], get store.GetFunc[T], api *store.Api[T]) T {
			drafted := store.SetFunc[T](func(mutation any, replace bool) {
				recipe, ok := mutation.(func(*T))
				if !ok {
					set(mutation, replace)
					return
				}
				draft := clone(get())
				recipe(&draft)
				set(draft, true)
			})
			api.SetState = drafted
			return next(drafted, get, api)
		}
	}
}

// CloneJSON builds a clone function from a JSON round-trip. It suits
// states whose fields all survive JSON encoding; function-valued fields do
// not and need a hand-written clone.
func CloneJSON[T any]() func(T) T {
	return func(state T) T {
		data, err := json.Marshal(state)
		if err != nil {
			panic(fmt.Sprintf("zustand: clone marshal: %v", err))
		}
		var out T
		if err := json.Unmarshal(data, &out); err != nil {
			panic(fmt.Sprintf("zustand: clone unmarshal: %v", err))
		}
		return out
	}
}
