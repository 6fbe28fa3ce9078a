package store

import "testing"

func taggingMiddleware(tag string, order *[]string) Middleware[map[string]any] {
	return func(next StateCreator[map[string]any]) StateCreator[map[string]any] {
		return func(set SetFunc[map[string]any], get GetFunc[map[string]any], api *Api[map[string]any]) map[string]any {
			wrapped := SetFunc[map[string]any](func(mutation any, replace bool) {
				*order = append(*order, tag+":before")
				set(mutation, replace)
				*order = append(*order, tag+":after")
			})
			api.SetState = wrapped
			return next(wrapped, get, api)
		}
	}
}

func TestCompose_FirstMiddlewareWrapsClosestToBase(t *testing.T) {
	var order []string
	base := func(set SetFunc[map[string]any], get GetFunc[map[string]any], api *Api[map[string]any]) map[string]any {
		return map[string]any{"count": 0}
	}

	s := New(Compose(base, taggingMiddleware("outer", &order), taggingMiddleware("inner", &order)))
	s.SetState(map[string]any{"count": 1}, false)

	want := []string{"inner:before", "outer:before", "outer:after", "inner:after"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestCompose_ActionMutationsFlowThroughAllWrappers(t *testing.T) {
	var order []string
	base := func(set SetFunc[map[string]any], get GetFunc[map[string]any], api *Api[map[string]any]) map[string]any {
		return map[string]any{
			"count": 0,
			"bump": func() {
				set(map[string]any{"count": 1}, false)
			},
		}
	}

	s := New(Compose(base, taggingMiddleware("outer", &order)))
	s.GetState()["bump"].(func())()

	if len(order) != 2 || order[0] != "outer:before" || order[1] != "outer:after" {
		t.Fatalf("expected action mutation to pass through the wrapper, got %v", order)
	}
	if s.GetState()["count"] != 1 {
		t.Fatalf("expected count 1, got %v", s.GetState()["count"])
	}
}

func TestCompose_NoMiddlewaresReturnsCreator(t *testing.T) {
	base := func(set SetFunc[int], get GetFunc[int], api *Api[int]) int { return 7 }
	s := New(Compose(base, nil))
	if s.GetState() != 7 {
		t.Fatalf("expected initial state 7, got %d", s.GetState())
	}
}
