// Package schemafile declares model and table types in YAML and builds them into a registry.
//
//	types:
//	  - name: User
//	    table: users
//	    fields:
//	      - {name: id, kind: id}
//	      - {name: email, kind: string}
//	      - {name: created_at, kind: datetime, serialized_name: createdAt, generate: now}
//	  - name: Post
//	    persist: true
//	    fields:
//	      - {name: id, kind: id}
//	      - {name: author, kind: model, model: User}
//	      - {name: author_email, kind: ref, path: author.email}
//	      - {name: tags, kind: list, item: {kind: string}}
//
// Types are built in file order, so nested models, subtypes and polymorphic maps
// may only reference types declared above them.
package schemafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"modelkit.io/modelkit/schema"
)

// File parsed schema file
type File struct {
	Types []TypeDecl `yaml:"types"`
}

// TypeDecl one model or table type
type TypeDecl struct {
	Name           string            `yaml:"name"`
	Table          string            `yaml:"table,omitempty"`
	Persist        bool              `yaml:"persist,omitempty"`
	PolymorphicOn  string            `yaml:"polymorphic_on,omitempty"`
	PolymorphicMap map[string]string `yaml:"polymorphic_map,omitempty"`
	NotSerialized  []string          `yaml:"not_serialized,omitempty"`
	Fields         []FieldDecl       `yaml:"fields"`
}

// IsTable type is persisted to a table
func (decl TypeDecl) IsTable() bool {
	return decl.Persist || decl.Table != ""
}

// FieldDecl one field
type FieldDecl struct {
	Name           string      `yaml:"name"`
	Kind           schema.Kind `yaml:"kind"`
	Default        interface{} `yaml:"default,omitempty"`
	Generate       string      `yaml:"generate,omitempty"`
	SerializedName string      `yaml:"serialized_name,omitempty"`
	Column         string      `yaml:"column,omitempty"`
	Primary        bool        `yaml:"primary,omitempty"`
	Readonly       bool        `yaml:"readonly,omitempty"`
	Transient      bool        `yaml:"transient,omitempty"`
	Model          string      `yaml:"model,omitempty"`
	Item           *FieldDecl  `yaml:"item,omitempty"`
	Path           string      `yaml:"path,omitempty"`
}

// ErrUnknownKind field kind not in the catalog
var ErrUnknownKind = errors.New("unknown field kind")

// Parse reads a schema file
func Parse(r io.Reader) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	return &file, nil
}

// Load reads and parses the schema file at path
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Build defines every declared type in reg, in file order
func (file *File) Build(reg *schema.Registry) error {
	for _, decl := range file.Types {
		if err := decl.build(reg); err != nil {
			return fmt.Errorf("type %s: %w", decl.Name, err)
		}
	}
	return nil
}

func (decl TypeDecl) build(reg *schema.Registry) error {
	fields := make([]*schema.Field, 0, len(decl.Fields))
	for _, fd := range decl.Fields {
		field, err := fd.build(reg)
		if err != nil {
			return err
		}
		fields = append(fields, field)
	}

	var opts []schema.Option
	if len(decl.NotSerialized) > 0 {
		opts = append(opts, schema.NotSerialized(decl.NotSerialized...))
	}

	if !decl.IsTable() {
		if decl.PolymorphicOn != "" {
			subtypes := map[string]*schema.ModelType{}
			for key, name := range decl.PolymorphicMap {
				subtype, ok := reg.Lookup(name)
				if !ok {
					return fmt.Errorf("%w: unknown subtype %s", schema.ErrInvalidData, name)
				}
				subtypes[key] = subtype
			}
			opts = append(opts, schema.PolymorphicOn(decl.PolymorphicOn), schema.PolymorphicMap(subtypes))
		}
		_, err := reg.Define(decl.Name, fields, opts...)
		return err
	}

	if decl.Table != "" {
		opts = append(opts, schema.TableName(decl.Table))
	}
	if decl.PolymorphicOn != "" {
		subtables := map[string]*schema.TableType{}
		for key, name := range decl.PolymorphicMap {
			subtable, ok := reg.Table(name)
			if !ok {
				return fmt.Errorf("%w: unknown subtype table %s", schema.ErrInvalidData, name)
			}
			subtables[key] = subtable
		}
		opts = append(opts, schema.PolymorphicTables(decl.PolymorphicOn, subtables))
	}
	_, err := reg.DefineTable(decl.Name, fields, opts...)
	return err
}

func (fd FieldDecl) build(reg *schema.Registry) (*schema.Field, error) {
	var opts []schema.FieldOption
	if fd.SerializedName != "" {
		opts = append(opts, schema.WithSerializedName(fd.SerializedName))
	}
	if fd.Column != "" {
		opts = append(opts, schema.WithColumnName(fd.Column))
	}
	if fd.Primary {
		opts = append(opts, schema.AsPrimary())
	}
	if fd.Readonly {
		opts = append(opts, schema.AsReadonly())
	}
	if fd.Transient {
		opts = append(opts, schema.AsTransient())
	}
	switch fd.Generate {
	case "":
	case "now":
		opts = append(opts, schema.WithDefaultFunc(func() interface{} { return time.Now().UTC() }))
	case "uuid":
		opts = append(opts, schema.WithDefaultFunc(func() interface{} { return uuid.New() }))
	default:
		return nil, fmt.Errorf("%w: field %s generator %q", schema.ErrInvalidData, fd.Name, fd.Generate)
	}

	field, err := fd.construct(reg, opts)
	if err != nil {
		return nil, err
	}

	switch {
	case fd.Default == nil:
	case field.Ref:
		return nil, fmt.Errorf("%w: ref field %s can't have a default", schema.ErrReadonly, fd.Name)
	case field.Transient:
		field.Default, field.DefaultFunc = fd.Default, nil
	default:
		value, err := field.Deserialize(fd.Default)
		if err != nil {
			return nil, fmt.Errorf("field %s default: %w", fd.Name, err)
		}
		field.Default, field.DefaultFunc = value, nil
	}
	return field, nil
}

func (fd FieldDecl) construct(reg *schema.Registry, opts []schema.FieldOption) (field *schema.Field, err error) {
	switch fd.Kind {
	case schema.KindRaw:
		return schema.Raw(fd.Name, opts...), nil
	case schema.KindNumber:
		return schema.Number(fd.Name, opts...), nil
	case schema.KindBoolean:
		return schema.Boolean(fd.Name, opts...), nil
	case schema.KindString:
		return schema.String(fd.Name, opts...), nil
	case schema.KindDate:
		return schema.Date(fd.Name, opts...), nil
	case schema.KindDateTime:
		return schema.DateTime(fd.Name, opts...), nil
	case schema.KindBlob:
		return schema.Blob(fd.Name, opts...), nil
	case schema.KindObject:
		return schema.Object(fd.Name, opts...), nil
	case schema.KindUUID:
		return schema.UUID(fd.Name, opts...), nil
	case schema.KindID:
		return schema.ID(fd.Name, opts...), nil
	case schema.KindTransient:
		return schema.Transient(fd.Name, opts...), nil
	case schema.KindRef:
		if fd.Path == "" {
			return nil, fmt.Errorf("%w: ref field %s needs a path", schema.ErrInvalidField, fd.Name)
		}
		return schema.Ref(fd.Name, fd.Path, opts...), nil
	case schema.KindList:
		if fd.Item == nil {
			return nil, fmt.Errorf("%w: list field %s needs an item", schema.ErrInvalidField, fd.Name)
		}
		item, err := fd.Item.build(reg)
		if err != nil {
			return nil, fmt.Errorf("list field %s: %w", fd.Name, err)
		}
		return schema.ListOf(fd.Name, item, opts...), nil
	case schema.KindModel:
		var nested *schema.ModelType
		if fd.Model != "" {
			var ok bool
			if nested, ok = reg.Lookup(fd.Model); !ok {
				return nil, fmt.Errorf("%w: field %s references unknown model %s", schema.ErrInvalidData, fd.Name, fd.Model)
			}
		}
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = e
					return
				}
				panic(r)
			}
		}()
		return schema.Model(fd.Name, nested, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q for field %s", ErrUnknownKind, fd.Kind, fd.Name)
}
