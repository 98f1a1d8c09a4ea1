package schema

import (
	"context"
	"fmt"
)

// Serialize converts an instance into its wire object, keyed by serialized names
func Serialize(inst *Instance) (map[string]interface{}, error) {
	if inst == nil {
		return nil, nil
	}

	mt := inst.typ
	wire := make(map[string]interface{}, len(mt.Fields))
	for idx, field := range mt.Fields {
		if !field.IsSerializable() || mt.notSerialized[field.Name] {
			continue
		}
		value, err := field.Serialize(freeze(inst.values[idx]), inst)
		if err != nil {
			return nil, fmt.Errorf("serialize %s.%s: %w", mt.Name, field.Name, err)
		}
		wire[field.SerializedName] = value
	}
	return wire, nil
}

func serializeNested(inst *Instance) (interface{}, error) {
	wire, err := Serialize(inst)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire, nil
}

// Deserialize builds an instance of t from a wire object. Polymorphic types dispatch on
// the discriminator; an unmapped discriminator value falls back to t itself.
func Deserialize(t *ModelType, wire map[string]interface{}) (*Instance, error) {
	if wire == nil {
		return nil, nil
	}

	t, err := dispatch(t, func(discriminator *Field) (interface{}, bool) {
		raw, ok := wire[discriminator.SerializedName]
		return raw, ok
	})
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(wire))
	for key, raw := range wire {
		field, ok := t.FieldsByWireName[key]
		if !ok {
			continue
		}
		value, err := field.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("deserialize %s.%s: %w", t.Name, field.Name, err)
		}
		values[field.Name] = value
	}
	return t.New(values)
}

// dispatch follows the polymorphic maps from t to the concrete type selected by the
// discriminator value that read returns
func dispatch(t *ModelType, read func(discriminator *Field) (interface{}, bool)) (*ModelType, error) {
	visited := map[*ModelType]bool{}
	for t.PolymorphicOn != "" && !visited[t] {
		visited[t] = true

		discriminator := t.FieldsByName[t.PolymorphicOn]
		raw, ok := read(discriminator)
		if !ok {
			break
		}
		value, err := discriminator.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("deserialize %s.%s: %w", t.Name, discriminator.Name, err)
		}

		subtype, ok := t.Subtype(value)
		if !ok {
			loggerOf(t).Warn(context.Background(), "%s: unmapped %s value %v, falling back to base type", t.Name, t.PolymorphicOn, value)
			break
		}
		t = subtype
	}
	return t, nil
}

// SerializeField applies the serialize function of a single field
func (mt *ModelType) SerializeField(name string, value interface{}, owner *Instance) (interface{}, error) {
	field, ok := mt.FieldsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %s", ErrInvalidField, mt.Name, name)
	}
	return field.Serialize(value, owner)
}

// DeserializeField applies the deserialize function of a single field
func (mt *ModelType) DeserializeField(name string, wire interface{}) (interface{}, error) {
	field, ok := mt.FieldsByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %s", ErrInvalidField, mt.Name, name)
	}
	return field.Deserialize(wire)
}
