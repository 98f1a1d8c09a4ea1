package schema

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

// DateLayout canonical wire form of Date fields
const DateLayout = "2006-01-02"

func passSerialize(value interface{}, owner *Instance) (interface{}, error) {
	if valuer, ok := value.(driver.Valuer); ok {
		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, nil
		}
		return valuer.Value()
	}
	return value, nil
}

func passDeserialize(wire interface{}) (interface{}, error) {
	return wire, nil
}

// Raw identity field
func Raw(name string, opts ...FieldOption) *Field {
	return newField(name, KindRaw, opts)
}

// Number numeric field, json.Number wire values are normalized
func Number(name string, opts ...FieldOption) *Field {
	return newField(name, KindNumber, append([]FieldOption{WithDeserialize(deserializeNumber)}, opts...))
}

// Boolean boolean field, driver text and integer values are normalized
func Boolean(name string, opts ...FieldOption) *Field {
	return newField(name, KindBoolean, append([]FieldOption{WithDeserialize(deserializeBoolean)}, opts...))
}

// String string field
func String(name string, opts ...FieldOption) *Field {
	return newField(name, KindString, opts)
}

// ID primary key integer field
func ID(name string, opts ...FieldOption) *Field {
	field := Number(name, append([]FieldOption{AsPrimary()}, opts...)...)
	field.Kind = KindID
	return field
}

func deserializeNumber(wire interface{}) (interface{}, error) {
	switch v := wire.(type) {
	case json.Number:
		return parseNumber(string(v))
	case []byte:
		return parseNumber(string(v))
	case string:
		return parseNumber(v)
	}
	return wire, nil
}

func parseNumber(text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidData, text)
	}
	return f, nil
}

func deserializeBoolean(wire interface{}) (interface{}, error) {
	switch v := wire.(type) {
	case []byte:
		return parseBoolean(string(v))
	case string:
		return parseBoolean(v)
	case int64:
		return v != 0, nil
	case json.Number:
		return parseBoolean(string(v))
	}
	return wire, nil
}

func parseBoolean(text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidData, text)
	}
	return b, nil
}

// Date calendar date field, serialized as 2006-01-02
func Date(name string, opts ...FieldOption) *Field {
	base := []FieldOption{
		WithSerialize(timeSerializer(DateLayout)),
		WithDeserialize(timeDeserializer(DateLayout)),
	}
	return newField(name, KindDate, append(base, opts...))
}

// DateTime timestamp field, serialized as RFC3339 with nanoseconds
func DateTime(name string, opts ...FieldOption) *Field {
	base := []FieldOption{
		WithSerialize(timeSerializer(time.RFC3339Nano)),
		WithDeserialize(timeDeserializer(time.RFC3339Nano)),
	}
	return newField(name, KindDateTime, append(base, opts...))
}

func timeSerializer(layout string) SerializeFunc {
	return func(value interface{}, owner *Instance) (interface{}, error) {
		switch v := value.(type) {
		case nil:
			return nil, nil
		case time.Time:
			return v.Format(layout), nil
		case *time.Time:
			if v == nil {
				return nil, nil
			}
			return v.Format(layout), nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("%w: %#v is not a time", ErrInvalidData, value)
		}
	}
}

func timeDeserializer(layout string) DeserializeFunc {
	return func(wire interface{}) (interface{}, error) {
		switch v := wire.(type) {
		case nil:
			return nil, nil
		case time.Time:
			return v, nil
		case *time.Time:
			if v == nil {
				return nil, nil
			}
			return *v, nil
		case []byte:
			return parseTime(layout, string(v))
		case string:
			return parseTime(layout, v)
		default:
			return nil, fmt.Errorf("%w: %#v is not a time", ErrInvalidData, wire)
		}
	}
}

func parseTime(layout, value string) (interface{}, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(layout, value); err == nil {
		return t, nil
	}
	t, err := now.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return t, nil
}

// Blob binary field, serialized as standard base64
func Blob(name string, opts ...FieldOption) *Field {
	base := []FieldOption{
		WithSerialize(func(value interface{}, owner *Instance) (interface{}, error) {
			switch v := value.(type) {
			case nil:
				return nil, nil
			case []byte:
				if v == nil {
					return nil, nil
				}
				return base64.StdEncoding.EncodeToString(v), nil
			case string:
				return base64.StdEncoding.EncodeToString([]byte(v)), nil
			default:
				return nil, fmt.Errorf("%w: %#v is not a byte sequence", ErrInvalidData, value)
			}
		}),
		WithDeserialize(func(wire interface{}) (interface{}, error) {
			switch v := wire.(type) {
			case nil:
				return nil, nil
			case string:
				return base64.StdEncoding.DecodeString(v)
			case []byte:
				return base64.StdEncoding.DecodeString(string(v))
			default:
				return nil, fmt.Errorf("%w: %#v is not base64 text", ErrInvalidData, wire)
			}
		}),
	}
	return newField(name, KindBlob, append(base, opts...))
}

// Object opaque field, nested instances are serialized through the model runtime
func Object(name string, opts ...FieldOption) *Field {
	base := []FieldOption{
		AsObject(),
		WithSerialize(func(value interface{}, owner *Instance) (interface{}, error) {
			if inst, ok := value.(*Instance); ok {
				return serializeNested(inst)
			}
			return value, nil
		}),
	}
	return newField(name, KindObject, append(base, opts...))
}

// UUID identifier field, serialized as canonical text
func UUID(name string, opts ...FieldOption) *Field {
	base := []FieldOption{
		WithSerialize(func(value interface{}, owner *Instance) (interface{}, error) {
			switch v := value.(type) {
			case nil:
				return nil, nil
			case uuid.UUID:
				return v.String(), nil
			case string:
				return v, nil
			default:
				return nil, fmt.Errorf("%w: %#v is not an uuid", ErrInvalidData, value)
			}
		}),
		WithDeserialize(func(wire interface{}) (interface{}, error) {
			switch v := wire.(type) {
			case nil:
				return nil, nil
			case uuid.UUID:
				return v, nil
			case string:
				return uuid.Parse(v)
			case []byte:
				return uuid.ParseBytes(v)
			default:
				return nil, fmt.Errorf("%w: %#v is not an uuid", ErrInvalidData, wire)
			}
		}),
	}
	return newField(name, KindUUID, append(base, opts...))
}

// Model nested model field. The nested type may be nil when the field is transient
// or carries its own deserialize; any other combination panics.
func Model(name string, nested *ModelType, opts ...FieldOption) *Field {
	field := newField(name, KindModel, append([]FieldOption{AsObject()}, opts...))
	field.ModelType = nested
	if field.Transient {
		return field
	}

	if !field.customSerialize {
		field.Serialize = func(value interface{}, owner *Instance) (interface{}, error) {
			if value == nil {
				return nil, nil
			}
			inst, ok := value.(*Instance)
			if !ok {
				return nil, fmt.Errorf("%w: field %s holds %T", ErrNotModel, name, value)
			}
			return serializeNested(inst)
		}
	}

	if !field.customDeserialize {
		if nested == nil {
			panic(fmt.Errorf("%w: field %s", ErrMissingModelType, name))
		}
		field.Deserialize = func(wire interface{}) (interface{}, error) {
			switch v := wire.(type) {
			case nil:
				return nil, nil
			case *Instance:
				return v, nil
			case map[string]interface{}:
				inst, err := Deserialize(nested, v)
				if err != nil || inst == nil {
					return nil, err
				}
				return inst, nil
			default:
				return nil, fmt.Errorf("%w: %#v for model field %s", ErrInvalidData, wire, name)
			}
		}
	}
	return field
}

// ListOf ordered list of items described by item
func ListOf(name string, item *Field, opts ...FieldOption) *Field {
	base := []FieldOption{
		AsObject(),
		WithDefaultFunc(func() interface{} { return []interface{}{} }),
		WithSerialize(func(value interface{}, owner *Instance) (interface{}, error) {
			return mapItems(value, func(v interface{}) (interface{}, error) {
				return item.Serialize(v, owner)
			})
		}),
		WithDeserialize(func(wire interface{}) (interface{}, error) {
			return mapItems(wire, item.Deserialize)
		}),
	}
	field := newField(name, KindList, append(base, opts...))
	field.ItemType = item
	return field
}

func mapItems(value interface{}, fc func(interface{}) (interface{}, error)) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %#v is not a list", ErrInvalidData, value)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}

	results := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := fc(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		results[i] = v
	}
	return results, nil
}

// Ref computed readonly field resolved through keyPath on the owning instance
func Ref(name string, keyPath string, opts ...FieldOption) *Field {
	field := newField(name, KindRef, opts)
	field.Ref = true
	field.Readonly = true
	field.Transient = true
	field.RefPath = ParseKeyPath(keyPath)
	field.Default = nil
	field.DefaultFunc = nil
	field.Serialize = func(interface{}, *Instance) (interface{}, error) {
		return nil, fmt.Errorf("%w: ref field %s: %v", ErrReadonly, name, ErrNotImplemented)
	}
	field.Deserialize = func(interface{}) (interface{}, error) {
		return nil, fmt.Errorf("%w: ref field %s: %v", ErrReadonly, name, ErrNotImplemented)
	}
	return field
}

// Transient field kept on instances but never serialized
func Transient(name string, opts ...FieldOption) *Field {
	return newField(name, KindTransient, append(opts, AsTransient()))
}

func makeTransient(field *Field) {
	name := field.Name
	field.Transient = true
	field.Serialize = func(interface{}, *Instance) (interface{}, error) {
		return nil, fmt.Errorf("%w: field %s", ErrTransient, name)
	}
	field.Deserialize = func(interface{}) (interface{}, error) {
		return nil, fmt.Errorf("%w: field %s", ErrTransient, name)
	}
}
