package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Instance immutable value of a model type. Every "mutation" returns a new instance.
type Instance struct {
	typ    *ModelType
	values []interface{}
}

// New constructs an instance from field name keyed values; unsupplied fields take
// their declared default. Maps and slices are copied so callers keep no alias.
func (mt *ModelType) New(values map[string]interface{}) (*Instance, error) {
	for name := range values {
		if field, ok := mt.FieldsByName[name]; ok && field.Ref {
			return nil, fmt.Errorf("%w: can't assign ref field %s.%s", ErrReadonly, mt.Name, name)
		}
	}

	inst := mt.newInstance()
	for idx, field := range mt.Fields {
		if field.Ref {
			continue
		}
		value, ok := values[field.Name]
		if !ok {
			value = field.DefaultValue()
		}
		inst.values[idx] = freeze(value)
	}
	return inst, nil
}

// MustNew like New but panics on error
func (mt *ModelType) MustNew(values map[string]interface{}) *Instance {
	inst, err := mt.New(values)
	if err != nil {
		panic(err)
	}
	return inst
}

// Type model type of the instance
func (inst *Instance) Type() *ModelType {
	return inst.typ
}

// Has reports whether the type declares name
func (inst *Instance) Has(name string) bool {
	_, ok := inst.typ.FieldsByName[name]
	return ok
}

// Get field value, ref fields are resolved through their key path.
// Maps and slices are returned as copies.
func (inst *Instance) Get(name string) interface{} {
	if inst == nil {
		return nil
	}
	if accessor, ok := inst.typ.Accessors[name]; ok {
		return freeze(accessor(inst))
	}
	if idx, ok := inst.typ.index[name]; ok {
		return freeze(inst.values[idx])
	}
	return nil
}

// ToMap stored field values keyed by field name, ref fields excluded
func (inst *Instance) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, len(inst.values))
	for idx, field := range inst.typ.Fields {
		if !field.Ref {
			result[field.Name] = freeze(inst.values[idx])
		}
	}
	return result
}

// Set returns a copy with name set to value
func (inst *Instance) Set(name string, value interface{}) (*Instance, error) {
	return inst.With(map[string]interface{}{name: value})
}

// With returns a copy with every given field replaced
func (inst *Instance) With(values map[string]interface{}) (*Instance, error) {
	merged := make(map[string]interface{}, len(inst.values)+len(values))
	for idx, field := range inst.typ.Fields {
		if !field.Ref {
			merged[field.Name] = inst.values[idx]
		}
	}
	for name, value := range values {
		if _, ok := inst.typ.FieldsByName[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %s", ErrInvalidField, inst.typ.Name, name)
		}
		merged[name] = value
	}
	return inst.typ.New(merged)
}

// Clone returns an independent instance holding the same values
func (inst *Instance) Clone() *Instance {
	clone := inst.typ.newInstance()
	for idx, value := range inst.values {
		clone.values[idx] = freeze(value)
	}
	return clone
}

// Equal instances of the same type holding equal values
func (inst *Instance) Equal(other *Instance) bool {
	if inst == nil || other == nil {
		return inst == other
	}
	if inst.typ != other.typ {
		return false
	}
	for idx := range inst.values {
		if !valueEqual(inst.values[idx], other.values[idx]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) || (av == nil) != (bv == nil) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// MarshalJSON encodes the wire form of the instance
func (inst *Instance) MarshalJSON() ([]byte, error) {
	wire, err := Serialize(inst)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

func (inst *Instance) String() string {
	if inst == nil {
		return "<nil>"
	}
	var buf strings.Builder
	buf.WriteString(inst.typ.Name)
	buf.WriteByte('{')
	for idx, field := range inst.typ.Fields {
		if field.Ref {
			continue
		}
		if buf.Len() > len(inst.typ.Name)+1 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %v", field.Name, inst.values[idx])
	}
	buf.WriteByte('}')
	return buf.String()
}

// GetType model type of a model instance
func GetType(value interface{}) (*ModelType, error) {
	inst, ok := value.(*Instance)
	if !ok || inst == nil {
		return nil, fmt.Errorf("%w: %T", ErrNotModel, value)
	}
	return inst.typ, nil
}

// IsInstance reports whether value is an instance of t or of one of its polymorphic subtypes
func IsInstance(value interface{}, t *ModelType) (bool, error) {
	mt, err := GetType(value)
	if err != nil {
		return false, err
	}
	return mt.isA(t), nil
}
