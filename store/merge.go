package store

import (
	"errors"
	"fmt"
	"reflect"
)

// Merge resolves a mutation against prev using the store's merge rules and
// returns the next state. The accepted mutation forms are:
//
//   - a value of type T: merged one level deep into prev (map states
//     overlay the mutation's keys; value states, which carry no key
//     presence, are overwritten wholesale);
//   - a map[string]any patch: the named top-level keys or exported struct
//     fields of prev are overwritten, everything else is retained;
//   - func(T) T, func(T) map[string]any, or func(T) any: invoked with prev,
//     the result resolved by the same rules.
//
// Nested values are replaced wholesale, never deep-merged.
func Merge[T any](prev T, mutation any) (T, error) {
	return resolveMutation(prev, mutation, false)
}

func resolveMutation[T any](prev T, mutation any, replace bool) (T, error) {
	switch fn := mutation.(type) {
	case func(T) T:
		mutation = fn(prev)
	case func(T) map[string]any:
		mutation = fn(prev)
	case func(T) any:
		mutation = fn(prev)
	}

	switch v := mutation.(type) {
	case nil:
		return prev, nil
	case T:
		if replace {
			return v, nil
		}
		return shallowMerge(prev, v)
	case map[string]any:
		if replace {
			var zero T
			return applyPatch(zero, v)
		}
		return applyPatch(prev, v)
	default:
		var zero T
		return zero, fmt.Errorf("unsupported mutation type %T", mutation)
	}
}

// shallowMerge overlays next onto prev one level deep. Only map states can
// be merged key-wise; any other state kind is overwritten, since a full
// value carries no presence information for individual fields.
func shallowMerge[T any](prev, next T) (T, error) {
	nv := reflect.ValueOf(next)
	if !nv.IsValid() || nv.Kind() != reflect.Map {
		return next, nil
	}
	pv := reflect.ValueOf(prev)
	if !pv.IsValid() || pv.IsNil() {
		return next, nil
	}
	if nv.IsNil() {
		return prev, nil
	}
	merged := reflect.MakeMapWithSize(pv.Type(), pv.Len())
	iter := pv.MapRange()
	for iter.Next() {
		merged.SetMapIndex(iter.Key(), iter.Value())
	}
	iter = nv.MapRange()
	for iter.Next() {
		merged.SetMapIndex(iter.Key(), iter.Value())
	}
	return merged.Interface().(T), nil
}

// applyPatch overwrites the named top-level entries of prev. Struct states
// are patched by exported field name; patch values are converted when the
// field type allows it (JSON decoding yields float64 for every number).
// The committed state is never aliased: maps are copied and pointer states
// get a fresh pointee.
func applyPatch[T any](prev T, fields map[string]any) (T, error) {
	if len(fields) == 0 {
		return prev, nil
	}
	var zero T
	target := reflect.ValueOf(&prev).Elem()
	if target.Kind() == reflect.Interface && !target.IsNil() {
		// T instantiated as an interface; patch the dynamic value.
		inner, err := patchValue(target.Elem(), fields)
		if err != nil {
			return zero, err
		}
		out, ok := inner.Interface().(T)
		if !ok {
			return zero, fmt.Errorf("patched value %T does not satisfy state type", inner.Interface())
		}
		return out, nil
	}
	patched, err := patchValue(target, fields)
	if err != nil {
		return zero, err
	}
	return patched.Interface().(T), nil
}

func patchValue(target reflect.Value, fields map[string]any) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.Pointer:
		if target.IsNil() {
			return reflect.Value{}, errors.New("cannot patch nil pointer state")
		}
		fresh := reflect.New(target.Type().Elem())
		fresh.Elem().Set(target.Elem())
		patched, err := patchValue(fresh.Elem(), fields)
		if err != nil {
			return reflect.Value{}, err
		}
		fresh.Elem().Set(patched)
		return fresh, nil

	case reflect.Map:
		if target.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("cannot patch map state with %s keys", target.Type().Key())
		}
		merged := reflect.MakeMapWithSize(target.Type(), target.Len()+len(fields))
		if !target.IsNil() {
			iter := target.MapRange()
			for iter.Next() {
				merged.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		elemType := target.Type().Elem()
		for name, value := range fields {
			converted, err := convertPatchValue(value, elemType)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key %q: %w", name, err)
			}
			merged.SetMapIndex(reflect.ValueOf(name).Convert(target.Type().Key()), converted)
		}
		return merged, nil

	case reflect.Struct:
		fresh := reflect.New(target.Type()).Elem()
		fresh.Set(target)
		for name, value := range fields {
			field := fresh.FieldByName(name)
			if !field.IsValid() {
				return reflect.Value{}, fmt.Errorf("state type %s has no field %q", target.Type(), name)
			}
			if !field.CanSet() {
				return reflect.Value{}, fmt.Errorf("field %q of %s is not settable", name, target.Type())
			}
			converted, err := convertPatchValue(value, field.Type())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("field %q: %w", name, err)
			}
			field.Set(converted)
		}
		return fresh, nil

	default:
		return reflect.Value{}, fmt.Errorf("state kind %s does not support field patches", target.Kind())
	}
}

func convertPatchValue(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(want) {
		return rv.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", value, want)
}
