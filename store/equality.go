package store

import "reflect"

// Identical reports reference-style equality between two values: pointer
// identity for pointers, maps, channels, and functions; pointer plus length
// for slices; == for comparable values. Values of different dynamic types,
// or of uncomparable non-reference types, are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if !va.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// ShallowEqual compares two values one level deep: key-wise over maps,
// index-wise over slices and arrays, exported-field-wise over structs, each
// entry judged by Identical. Different key sets or lengths are unequal.
// Pointers to structs are compared one level through the pointer.
func ShallowEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() {
				return false
			}
			if !Identical(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !Identical(va.Index(i).Interface(), vb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Struct:
		t := va.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if !Identical(va.Field(i).Interface(), vb.Field(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if va.Pointer() == vb.Pointer() {
			return true
		}
		if va.IsNil() || vb.IsNil() {
			return false
		}
		return ShallowEqual(va.Elem().Interface(), vb.Elem().Interface())
	}
	return Identical(a, b)
}

// EqualRef adapts Identical to a typed equality function. It is the default
// for selector subscriptions.
func EqualRef[U any](a, b U) bool {
	return Identical(a, b)
}

// EqualShallow adapts ShallowEqual to a typed equality function for
// object- or sequence-shaped selections.
func EqualShallow[U any](a, b U) bool {
	return ShallowEqual(a, b)
}

// EqualComparable compares comparable values with ==.
func EqualComparable[T comparable](a, b T) bool {
	return a == b
}
