package store

import "testing"

func TestIdentical(t *testing.T) {
	shared := []int{1, 2}
	m := map[string]int{"a": 1}
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 1, false},
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"same slice", shared, shared, true},
		{"equal but distinct slices", []int{1, 2}, []int{1, 2}, false},
		{"same map", m, m, true},
		{"equal but distinct maps", map[string]int{"a": 1}, map[string]int{"a": 1}, false},
		{"equal strings", "x", "x", true},
	}
	for _, tc := range cases {
		if got := Identical(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s: Identical=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIdentical_SharedBackingDifferentLength(t *testing.T) {
	backing := []int{1, 2, 3}
	if Identical(backing[:2], backing[:3]) {
		t.Fatalf("expected slices of different length to differ")
	}
	if !Identical(backing[:2], backing[:2]) {
		t.Fatalf("expected same window over same backing to match")
	}
}

func TestShallowEqual_Maps(t *testing.T) {
	inner := map[string]int{"x": 1}
	a := map[string]any{"n": 1, "m": inner}
	b := map[string]any{"n": 1, "m": inner}
	if !ShallowEqual(a, b) {
		t.Fatalf("expected maps with identical values to be shallow-equal")
	}

	c := map[string]any{"n": 1, "m": map[string]int{"x": 1}}
	if ShallowEqual(a, c) {
		t.Fatalf("expected distinct nested maps to break shallow equality")
	}

	d := map[string]any{"n": 1}
	if ShallowEqual(a, d) {
		t.Fatalf("expected differing key sets to be unequal")
	}
}

func TestShallowEqual_Slices(t *testing.T) {
	if !ShallowEqual([]string{"a", "b"}, []string{"a", "b"}) {
		t.Fatalf("expected element-wise equal slices to be shallow-equal")
	}
	if ShallowEqual([]string{"a", "b"}, []string{"a"}) {
		t.Fatalf("expected differing lengths to be unequal")
	}
	if ShallowEqual([]string{"a"}, []int{1}) {
		t.Fatalf("expected differing element types to be unequal")
	}
}

func TestShallowEqual_Structs(t *testing.T) {
	items := []string{"a"}
	if !ShallowEqual(listState{Items: items, Tag: "t"}, listState{Items: items, Tag: "t"}) {
		t.Fatalf("expected field-wise identical structs to be shallow-equal")
	}
	if ShallowEqual(listState{Items: items}, listState{Items: []string{"a"}}) {
		t.Fatalf("expected distinct slice fields to break shallow equality")
	}
}

func TestShallowEqual_MixedShapesUnequal(t *testing.T) {
	if ShallowEqual(map[string]any{"0": "a"}, []string{"a"}) {
		t.Fatalf("expected a mapping and a sequence to be unequal")
	}
}

func TestEqualComparable(t *testing.T) {
	if !EqualComparable(3, 3) || EqualComparable(3, 4) {
		t.Fatalf("unexpected EqualComparable behavior")
	}
}
