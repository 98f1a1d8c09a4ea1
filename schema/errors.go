package schema

import "errors"

var (
	// ErrNotImplemented field has no conversion in that direction
	ErrNotImplemented = errors.New("not implemented")
	// ErrReadonly computed field can't be assigned, serialized or deserialized
	ErrReadonly = errors.New("type is readonly")
	// ErrTransient transient field can't be serialized or deserialized
	ErrTransient = errors.New("type is transient")
	// ErrMissingModelType model field declared without nested type or custom deserialize
	ErrMissingModelType = errors.New("model field requires a model type or a deserialize function")
	// ErrMissingPolymorphicMap polymorphic type declared without discriminator map
	ErrMissingPolymorphicMap = errors.New("polymorphic type requires a polymorphic map")
	// ErrIncompatibleSubtype subtype doesn't carry every base field
	ErrIncompatibleSubtype = errors.New("subtype is not field compatible with base type")
	// ErrPrimaryKeyArity table must declare exactly one primary key
	ErrPrimaryKeyArity = errors.New("table requires exactly one primary key")
	// ErrNoColumns table must persist at least one column
	ErrNoColumns = errors.New("table requires at least one column")
	// ErrNotModel value is not a model instance
	ErrNotModel = errors.New("value is not a model instance")
	// ErrRegistered type name already registered
	ErrRegistered = errors.New("registered")
	// ErrInvalidField invalid field
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidData unsupported data
	ErrInvalidData = errors.New("unsupported data")
)
