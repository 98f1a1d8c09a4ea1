package schema

import (
	"fmt"
	"sort"
)

// Accessor derives the value of a ref field from its owning instance
type Accessor func(*Instance) interface{}

// ModelType immutable record type built from field descriptors
type ModelType struct {
	Name                 string
	Fields               []*Field
	FieldsByName         map[string]*Field
	FieldsByWireName     map[string]*Field
	RefFields            map[string]KeyPath
	Accessors            map[string]Accessor
	PersistentFieldNames []string
	NotSerializedNames   []string
	PolymorphicOn        string
	PolymorphicMap       map[string]*ModelType

	fieldNames    []string
	index         map[string]int
	notSerialized map[string]bool
	registry      *Registry
}

// Option type level metadata
type Option func(*options)

type options struct {
	polymorphicOn     string
	polymorphicMap    map[string]*ModelType
	polymorphicTables map[string]*TableType
	notSerialized     []string
	tableName         string
}

// PolymorphicOn names the discriminator field
func PolymorphicOn(field string) Option {
	return func(o *options) { o.polymorphicOn = field }
}

// PolymorphicMap discriminator value to concrete subtype
func PolymorphicMap(subtypes map[string]*ModelType) Option {
	return func(o *options) { o.polymorphicMap = subtypes }
}

// NotSerialized fields left out of wire serialization, they are still accepted on deserialize
func NotSerialized(names ...string) Option {
	return func(o *options) { o.notSerialized = append(o.notSerialized, names...) }
}

func (mt *ModelType) String() string {
	return mt.Name
}

// FieldNames declared field names in order
func (mt *ModelType) FieldNames() []string {
	return append([]string(nil), mt.fieldNames...)
}

// LookUpField find field by name or wire name
func (mt *ModelType) LookUpField(name string) *Field {
	if field, ok := mt.FieldsByName[name]; ok {
		return field
	}
	if field, ok := mt.FieldsByWireName[name]; ok {
		return field
	}
	return nil
}

// IsSerialized field is written to wire objects
func (mt *ModelType) IsSerialized(name string) bool {
	field, ok := mt.FieldsByName[name]
	return ok && field.IsSerializable() && !mt.notSerialized[name]
}

// Registry owning the type
func (mt *ModelType) Registry() *Registry {
	return mt.registry
}

func (mt *ModelType) newInstance() *Instance {
	return &Instance{typ: mt, values: make([]interface{}, len(mt.Fields))}
}

func (r *Registry) buildModelType(name string, fields []*Field, opts *options) (*ModelType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: type name required", ErrInvalidData)
	}

	mt := &ModelType{
		Name:             name,
		FieldsByName:     map[string]*Field{},
		FieldsByWireName: map[string]*Field{},
		RefFields:        map[string]KeyPath{},
		Accessors:        map[string]Accessor{},
		PolymorphicOn:    opts.polymorphicOn,
		PolymorphicMap:   map[string]*ModelType{},
		index:            map[string]int{},
		notSerialized:    map[string]bool{},
		registry:         r,
	}

	for idx, declared := range fields {
		if declared == nil || declared.Name == "" {
			return nil, fmt.Errorf("%w: %s field #%d has no name", ErrInvalidField, name, idx)
		}
		if _, ok := mt.FieldsByName[declared.Name]; ok {
			return nil, fmt.Errorf("%w: %s declares %s twice", ErrInvalidField, name, declared.Name)
		}

		// descriptors may be shared between types, naming is resolved on a private copy
		field := *declared
		if field.SerializedName == "" {
			field.SerializedName = r.namer.SerializedName(field.Name)
		}
		if other, ok := mt.FieldsByWireName[field.SerializedName]; ok && field.IsSerializable() {
			return nil, fmt.Errorf("%w: %s fields %s and %s share wire name %s", ErrInvalidField, name, other.Name, field.Name, field.SerializedName)
		}

		mt.Fields = append(mt.Fields, &field)
		mt.fieldNames = append(mt.fieldNames, field.Name)
		mt.FieldsByName[field.Name] = &field
		mt.index[field.Name] = idx
		if field.IsSerializable() {
			mt.FieldsByWireName[field.SerializedName] = &field
		}

		if field.Ref {
			mt.RefFields[field.Name] = field.RefPath
			mt.Accessors[field.Name] = refAccessor(field.RefPath)
		} else if !field.Transient {
			mt.PersistentFieldNames = append(mt.PersistentFieldNames, field.Name)
		}
	}

	if err := mt.checkRefs(); err != nil {
		return nil, err
	}

	for _, excluded := range opts.notSerialized {
		if _, ok := mt.FieldsByName[excluded]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %s to exclude", ErrInvalidField, name, excluded)
		}
		if !mt.notSerialized[excluded] {
			mt.notSerialized[excluded] = true
			mt.NotSerializedNames = append(mt.NotSerializedNames, excluded)
		}
	}

	if err := mt.checkPolymorphic(opts.polymorphicMap); err != nil {
		return nil, err
	}
	return mt, nil
}

func refAccessor(path KeyPath) Accessor {
	return func(inst *Instance) interface{} {
		value, _ := Lookup(inst, path)
		return value
	}
}

// checkRefs rejects ref fields whose key paths loop back through other refs
func (mt *ModelType) checkRefs() error {
	for name := range mt.RefFields {
		visited := map[string]bool{name: true}
		for current := name; ; {
			path := mt.RefFields[current]
			if len(path) == 0 {
				return fmt.Errorf("%w: %s ref field %s has an empty key path", ErrInvalidField, mt.Name, name)
			}
			next := path[0]
			if _, isRef := mt.RefFields[next]; !isRef {
				break
			}
			if visited[next] {
				return fmt.Errorf("%w: %s ref field %s is cyclic", ErrInvalidField, mt.Name, name)
			}
			visited[next] = true
			current = next
		}
	}
	return nil
}

func (mt *ModelType) checkPolymorphic(subtypes map[string]*ModelType) error {
	if mt.PolymorphicOn == "" {
		if len(subtypes) > 0 {
			return fmt.Errorf("%w: %s has a polymorphic map but no discriminator field", ErrInvalidField, mt.Name)
		}
		return nil
	}

	if len(subtypes) == 0 {
		return fmt.Errorf("%w: %s on %s", ErrMissingPolymorphicMap, mt.Name, mt.PolymorphicOn)
	}

	discriminator, ok := mt.FieldsByName[mt.PolymorphicOn]
	if !ok || !discriminator.IsSerializable() {
		return fmt.Errorf("%w: %s discriminator %s is not a serializable field", ErrInvalidField, mt.Name, mt.PolymorphicOn)
	}

	keys := make([]string, 0, len(subtypes))
	for key := range subtypes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		subtype := subtypes[key]
		if subtype == nil {
			return fmt.Errorf("%w: %s maps %q to nothing", ErrMissingPolymorphicMap, mt.Name, key)
		}
		for _, fieldName := range mt.fieldNames {
			if _, ok := subtype.FieldsByName[fieldName]; !ok {
				return fmt.Errorf("%w: %s lacks %s.%s", ErrIncompatibleSubtype, subtype.Name, mt.Name, fieldName)
			}
		}
		mt.PolymorphicMap[key] = subtype
	}
	return nil
}

// Subtype concrete type registered for a discriminator value
func (mt *ModelType) Subtype(discriminator interface{}) (*ModelType, bool) {
	if mt.PolymorphicOn == "" || discriminator == nil {
		return nil, false
	}
	if b, ok := discriminator.([]byte); ok {
		discriminator = string(b)
	}
	subtype, ok := mt.PolymorphicMap[fmt.Sprint(discriminator)]
	return subtype, ok
}

// isA reports whether mt is t or reachable through t's polymorphic map
func (mt *ModelType) isA(t *ModelType) bool {
	if t == nil {
		return false
	}
	visited := map[*ModelType]bool{}
	pending := []*ModelType{t}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if current == mt {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, subtype := range current.PolymorphicMap {
			pending = append(pending, subtype)
		}
	}
	return false
}
