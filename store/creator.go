package store

// SetFunc applies a mutation to the enclosing store. See Merge for the
// accepted mutation forms.
type SetFunc[T any] func(mutation any, replace bool)

// GetFunc returns the current committed state of the enclosing store.
type GetFunc[T any] func() T

// StateCreator produces the initial state for a store. It receives the
// set and get functions bound to the store plus the mutable Api surface,
// and typically closes over set in the action functions it embeds in the
// returned state.
type StateCreator[T any] func(set SetFunc[T], get GetFunc[T], api *Api[T]) T

// Middleware wraps a state creator to intercept or augment its set/get
// surface. A well-formed middleware must not alter what get reports and
// must preserve set's merge/replace semantics unless documented otherwise.
type Middleware[T any] func(next StateCreator[T]) StateCreator[T]

// Action is an opaque tagged record handed to a reducer. Type is the
// discriminant.
type Action struct {
	Type    string
	Payload any
}

// Compose wraps creator with the given middlewares: Compose(c, m1, m2) is
// m1(m2(c)). The first middleware runs first during construction and wraps
// the store's base set, so every mutation — whether issued through the
// public API, by a later middleware, or by an action inside the state —
// flows through each wrapper before reaching the store. Nil entries are
// skipped.
func Compose[T any](creator StateCreator[T], middlewares ...Middleware[T]) StateCreator[T] {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		creator = middlewares[i](creator)
	}
	return creator
}
