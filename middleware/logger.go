// Package middleware provides the built-in middlewares: logging,
// immutable-draft mutation, reducer-style dispatch, persistence, and
// devtools mirroring. Each wraps a state creator without modifying the
// store core.
package middleware

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/anton-lunev/zustand/store"
)

// Logger logs every mutation before it is applied and the resulting state
// after. Pure observer; merge/replace semantics pass through untouched.
func Logger[T any](log *zap.Logger) store.Middleware[T] {
	return func(next store.StateCreator[T]) store.StateCreator[T] {
		return func(set store.SetFunc[T], get store.GetFunc[T], api *store.Api[T]) T {
			if log == nil {
				log = zap.NewNop()
			}
			logged := store.SetFunc[T](func(mutation any, replace bool) {
				log.Info("applying mutation",
					mutationField(mutation),
					zap.Bool("replace", replace))
				set(mutation, replace)
				log.Info("state changed", zap.Any("state", get()))
			})
			api.SetState = logged
			return next(logged, get, api)
		}
	}
}

// mutationField renders a mutation for logging. Updater functions have no
// useful value representation, so only their type is reported.
func mutationField(mutation any) zap.Field {
	if mutation == nil {
		return zap.String("mutation", "nil")
	}
	if t := reflect.TypeOf(mutation); t.Kind() == reflect.Func {
		return zap.String("mutation", t.String())
	}
	return zap.Any("mutation", mutation)
}
