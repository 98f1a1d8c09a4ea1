package schema

import (
	"reflect"
	"strconv"
	"strings"
)

// KeyPath dotted path into nested instances, maps and lists, e.g. "author.name" or "tags.0"
type KeyPath []string

// ParseKeyPath split a dotted path
func ParseKeyPath(path string) KeyPath {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func (path KeyPath) String() string {
	return strings.Join(path, ".")
}

// Lookup resolves path against value, found is false when any step is missing
func Lookup(value interface{}, path KeyPath) (result interface{}, found bool) {
	result = value
	for _, key := range path {
		if result, found = step(result, key); !found {
			return nil, false
		}
	}
	return result, true
}

func step(value interface{}, key string) (interface{}, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *Instance:
		if v == nil || !v.Has(key) {
			return nil, false
		}
		return v.Get(key), true
	case map[string]interface{}:
		result, ok := v[key]
		return result, ok
	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	}

	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		result := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !result.IsValid() {
			return nil, false
		}
		return result.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	case reflect.Struct:
		result := rv.FieldByName(key)
		if !result.IsValid() {
			result = rv.FieldByNameFunc(func(name string) bool { return strings.EqualFold(name, key) })
		}
		if !result.IsValid() || !result.CanInterface() {
			return nil, false
		}
		return result.Interface(), true
	}
	return nil, false
}
