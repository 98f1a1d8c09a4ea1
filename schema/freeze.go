package schema

import "reflect"

var instanceType = reflect.TypeOf((*Instance)(nil))

type copyTask struct {
	src, dst reflect.Value
}

type seenKey struct {
	ptr  uintptr
	len  int
	kind reflect.Kind
	typ  reflect.Type
}

// freeze returns a private deep copy of every map, slice, pointer target and exported
// struct or array member reachable from value, so later writes through caller-held
// aliases never reach an instance. Instances and scalars are kept as they are, and
// unexported struct fields are copied shallowly.
// Shared subtrees stay shared in the copy and cycles are preserved.
func freeze(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	rv := reflect.ValueOf(value)
	if !mayHoldContainer(rv.Type()) || rv.Type() == instanceType {
		return value
	}

	var (
		seen  = map[seenKey]reflect.Value{}
		stack []copyTask
		clone func(src reflect.Value) reflect.Value
	)

	clone = func(src reflect.Value) reflect.Value {
		if src.Kind() == reflect.Interface {
			if src.IsNil() {
				return src
			}
			src = src.Elem()
		}

		switch src.Kind() {
		case reflect.Struct, reflect.Array:
			// values have no identity, nesting depth is bounded by the type
			if !mayHoldContainer(src.Type()) {
				return src
			}
			dst := reflect.New(src.Type()).Elem()
			dst.Set(src)
			if src.Kind() == reflect.Struct {
				for i := 0; i < src.NumField(); i++ {
					if member := dst.Field(i); member.CanSet() {
						if elem := clone(src.Field(i)); elem.IsValid() {
							member.Set(elem)
						}
					}
				}
			} else {
				for i := 0; i < src.Len(); i++ {
					if elem := clone(src.Index(i)); elem.IsValid() {
						dst.Index(i).Set(elem)
					}
				}
			}
			return dst
		case reflect.Map, reflect.Slice, reflect.Ptr:
			if src.IsNil() || src.Type() == instanceType {
				return src
			}
		default:
			return src
		}

		key := seenKey{ptr: src.Pointer(), kind: src.Kind(), typ: src.Type()}
		if src.Kind() == reflect.Slice {
			key.len = src.Len()
		}
		if dst, ok := seen[key]; ok {
			return dst
		}

		var dst reflect.Value
		switch src.Kind() {
		case reflect.Map:
			dst = reflect.MakeMapWithSize(src.Type(), src.Len())
		case reflect.Slice:
			dst = reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		default:
			dst = reflect.New(src.Type().Elem())
		}
		seen[key] = dst
		stack = append(stack, copyTask{src: src, dst: dst})
		return dst
	}

	root := clone(rv)
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch task.src.Kind() {
		case reflect.Map:
			iter := task.src.MapRange()
			for iter.Next() {
				if elem := clone(iter.Value()); elem.IsValid() {
					task.dst.SetMapIndex(iter.Key(), elem)
				} else {
					task.dst.SetMapIndex(iter.Key(), reflect.Zero(task.src.Type().Elem()))
				}
			}
		case reflect.Slice:
			if !mayHoldContainer(task.src.Type().Elem()) {
				reflect.Copy(task.dst, task.src)
				continue
			}
			for i := 0; i < task.src.Len(); i++ {
				if elem := clone(task.src.Index(i)); elem.IsValid() {
					task.dst.Index(i).Set(elem)
				}
			}
		case reflect.Ptr:
			if elem := clone(task.src.Elem()); elem.IsValid() {
				task.dst.Elem().Set(elem)
			}
		}
	}

	return root.Interface()
}

// mayHoldContainer reports whether values of typ can reach memory shared with the caller
func mayHoldContainer(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Ptr:
		return true
	case reflect.Array:
		return typ.Len() > 0 && mayHoldContainer(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if field := typ.Field(i); field.IsExported() && mayHoldContainer(field.Type) {
				return true
			}
		}
	}
	return false
}
