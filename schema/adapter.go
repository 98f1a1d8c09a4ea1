package schema

import "fmt"

// Adapter translates any value exposing the shared key paths into a target instance
type Adapter func(input interface{}) (*Instance, error)

// CreateAdapter derives a mapping from source shaped values to target instances over the
// fields both types declare, in target order. Target only fields keep their defaults.
func CreateAdapter(source, target *ModelType) Adapter {
	shared := SharedFieldNames(source, target)

	return func(input interface{}) (*Instance, error) {
		if input == nil {
			return nil, fmt.Errorf("%w: adapt %s to %s: nil input", ErrInvalidData, source.Name, target.Name)
		}

		values := make(map[string]interface{}, len(shared))
		for _, name := range shared {
			if value, ok := Lookup(input, ParseKeyPath(name)); ok {
				values[name] = value
			}
		}
		return target.New(values)
	}
}

// SharedFieldNames field names declared by both types, in target order
func SharedFieldNames(source, target *ModelType) []string {
	var names []string
	for _, name := range target.fieldNames {
		if _, ok := source.FieldsByName[name]; ok && !target.FieldsByName[name].Ref {
			names = append(names, name)
		}
	}
	return names
}
