package schema

import "fmt"

// Kind field kind in the built-in catalog
type Kind string

const (
	KindRaw       Kind = "raw"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindString    Kind = "string"
	KindDate      Kind = "date"
	KindDateTime  Kind = "datetime"
	KindBlob      Kind = "blob"
	KindObject    Kind = "object"
	KindUUID      Kind = "uuid"
	KindModel     Kind = "model"
	KindList      Kind = "list"
	KindRef       Kind = "ref"
	KindTransient Kind = "transient"
	KindID        Kind = "id"
)

// SerializeFunc converts a field value into its wire value, owner is the instance being serialized
type SerializeFunc func(value interface{}, owner *Instance) (interface{}, error)

// DeserializeFunc converts a wire value back into a field value
type DeserializeFunc func(wire interface{}) (interface{}, error)

// Field declarative descriptor of one model attribute
type Field struct {
	Name           string
	Kind           Kind
	Default        interface{}
	DefaultFunc    func() interface{}
	Serialize      SerializeFunc
	Deserialize    DeserializeFunc
	Transient      bool
	Ref            bool
	Object         bool
	Primary        bool
	Readonly       bool
	RefPath        KeyPath
	SerializedName string
	ColumnName     string
	ItemType       *Field
	ModelType      *ModelType

	customSerialize   bool
	customDeserialize bool
}

// FieldOption overrides part of a field descriptor
type FieldOption func(*Field)

// WithDefault literal default, shared by every instance
func WithDefault(value interface{}) FieldOption {
	return func(f *Field) {
		f.Default = value
		f.DefaultFunc = nil
	}
}

// WithDefaultFunc default factory, evaluated once per constructed instance
func WithDefaultFunc(fc func() interface{}) FieldOption {
	return func(f *Field) {
		f.DefaultFunc = fc
	}
}

// WithSerializedName wire key used instead of the field name
func WithSerializedName(name string) FieldOption {
	return func(f *Field) { f.SerializedName = name }
}

// WithColumnName row column used instead of the field name
func WithColumnName(name string) FieldOption {
	return func(f *Field) { f.ColumnName = name }
}

// WithSerialize replaces the serialize function
func WithSerialize(fc SerializeFunc) FieldOption {
	return func(f *Field) {
		f.Serialize = fc
		f.customSerialize = true
	}
}

// WithDeserialize replaces the deserialize function
func WithDeserialize(fc DeserializeFunc) FieldOption {
	return func(f *Field) {
		f.Deserialize = fc
		f.customDeserialize = true
	}
}

// AsPrimary marks the field as primary key
func AsPrimary() FieldOption {
	return func(f *Field) { f.Primary = true }
}

// AsReadonly marks the field as readonly
func AsReadonly() FieldOption {
	return func(f *Field) { f.Readonly = true }
}

// AsTransient excludes the field from every serialization
func AsTransient() FieldOption {
	return func(f *Field) { f.Transient = true }
}

// AsObject stores the field as JSON text in rows
func AsObject() FieldOption {
	return func(f *Field) { f.Object = true }
}

func newField(name string, kind Kind, opts []FieldOption) *Field {
	field := &Field{
		Name:        name,
		Kind:        kind,
		Serialize:   passSerialize,
		Deserialize: passDeserialize,
	}
	for _, opt := range opts {
		opt(field)
	}
	if field.Transient {
		makeTransient(field)
	}
	return field
}

// WireName key of the field in wire objects
func (field *Field) WireName() string {
	if field.SerializedName != "" {
		return field.SerializedName
	}
	return field.Name
}

// DefaultValue resolves the default of the field, the factory wins over the literal
func (field *Field) DefaultValue() interface{} {
	if field.DefaultFunc != nil {
		return field.DefaultFunc()
	}
	return field.Default
}

// IsSerializable field takes part in wire and row conversions
func (field *Field) IsSerializable() bool {
	return !field.Transient && !field.Ref
}

func (field *Field) String() string {
	return fmt.Sprintf("%s(%s)", field.Name, field.Kind)
}
