package schema

import (
	"context"
	"encoding/json"
	"fmt"
)

// Row persistence row keyed by column name
type Row map[string]interface{}

// TableType model type mapped onto a table, one column per persisted field
type TableType struct {
	*ModelType
	Table          string
	PrimaryKeys    []string
	PrimaryField   *Field
	FieldsByColumn map[string]*Field
	ColumnsByField map[string]string

	columns      []string
	tablesByType map[*ModelType]*TableType
}

// TableName explicit table name, the naming strategy derives one otherwise
func TableName(name string) Option {
	return func(o *options) { o.tableName = name }
}

// PolymorphicTables discriminator field and value to concrete subtype table
func PolymorphicTables(field string, tables map[string]*TableType) Option {
	return func(o *options) {
		o.polymorphicOn = field
		o.polymorphicTables = tables
		o.polymorphicMap = make(map[string]*ModelType, len(tables))
		for key, table := range tables {
			if table != nil {
				o.polymorphicMap[key] = table.ModelType
			} else {
				o.polymorphicMap[key] = nil
			}
		}
	}
}

// DefineTable builds and registers a table type. It fails unless exactly one field is
// primary and at least one field is persisted.
func (r *Registry) DefineTable(name string, fields []*Field, opts ...Option) (*TableType, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	mt, err := r.buildModelType(name, fields, o)
	var tt *TableType
	if err == nil {
		tt, err = r.buildTable(mt, o)
	}
	if err == nil {
		err = r.register(mt)
	}
	if err != nil {
		r.logger.Error(context.Background(), "%v", err)
		return nil, err
	}

	r.tables.Store(name, tt)
	return tt, nil
}

// MustDefineTable like DefineTable but panics on error
func (r *Registry) MustDefineTable(name string, fields []*Field, opts ...Option) *TableType {
	tt, err := r.DefineTable(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return tt
}

func (r *Registry) buildTable(mt *ModelType, opts *options) (*TableType, error) {
	tt := &TableType{
		ModelType:      mt,
		Table:          opts.tableName,
		FieldsByColumn: map[string]*Field{},
		ColumnsByField: map[string]string{},
		tablesByType:   map[*ModelType]*TableType{},
	}
	if tt.Table == "" {
		tt.Table = r.namer.TableName(mt.Name)
	}
	tt.tablesByType[mt] = tt

	var primaries []*Field
	for _, field := range mt.Fields {
		if field.Primary {
			primaries = append(primaries, field)
		}
		if field.Transient {
			continue
		}

		if field.ColumnName == "" {
			field.ColumnName = r.namer.ColumnName(field.Name)
		}
		if other, ok := tt.FieldsByColumn[field.ColumnName]; ok {
			return nil, fmt.Errorf("%w: %s fields %s and %s share column %s", ErrInvalidField, mt.Name, other.Name, field.Name, field.ColumnName)
		}
		tt.FieldsByColumn[field.ColumnName] = field
		tt.ColumnsByField[field.Name] = field.ColumnName
		tt.columns = append(tt.columns, field.ColumnName)
	}

	if len(tt.columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, mt.Name)
	}
	if len(primaries) != 1 {
		return nil, fmt.Errorf("%w: %s declares %d", ErrPrimaryKeyArity, mt.Name, len(primaries))
	}
	if primaries[0].Transient {
		return nil, fmt.Errorf("%w: %s primary key %s is not persisted", ErrPrimaryKeyArity, mt.Name, primaries[0].Name)
	}
	tt.PrimaryField = primaries[0]
	tt.PrimaryKeys = []string{primaries[0].ColumnName}

	for key, subtype := range mt.PolymorphicMap {
		subtable, ok := opts.polymorphicTables[key]
		if !ok {
			subtable, ok = r.Table(subtype.Name)
		}
		if !ok || subtable.ModelType != subtype {
			return nil, fmt.Errorf("%w: %s subtype %s is not a table", ErrInvalidField, mt.Name, subtype.Name)
		}
		for t, table := range subtable.tablesByType {
			tt.tablesByType[t] = table
		}
	}
	return tt, nil
}

// ColumnNames persisted column names in field order
func (tt *TableType) ColumnNames() []string {
	return append([]string(nil), tt.columns...)
}

// FieldForColumn field stored in column
func (tt *TableType) FieldForColumn(column string) (*Field, bool) {
	field, ok := tt.FieldsByColumn[column]
	return field, ok
}

// ColumnForField column storing field
func (tt *TableType) ColumnForField(name string) (string, bool) {
	column, ok := tt.ColumnsByField[name]
	return column, ok
}

// PrimaryKey primary key value of inst
func (tt *TableType) PrimaryKey(inst *Instance) interface{} {
	return inst.Get(tt.PrimaryField.Name)
}

// TableFor table of t, t being this table's type or one of its polymorphic subtypes
func (tt *TableType) TableFor(t *ModelType) (*TableType, bool) {
	table, ok := tt.tablesByType[t]
	return table, ok
}

// SerializeRow converts inst into a row, object fields are stored as JSON text
func (tt *TableType) SerializeRow(inst *Instance) (Row, error) {
	if inst == nil {
		return nil, nil
	}

	table, ok := tt.TableFor(inst.typ)
	if !ok {
		return nil, fmt.Errorf("%w: %s instance for table %s", ErrInvalidData, inst.typ.Name, tt.Table)
	}

	row := make(Row, len(table.columns))
	for idx, field := range table.Fields {
		if field.Transient {
			continue
		}
		value, err := field.Serialize(freeze(inst.values[idx]), inst)
		if err != nil {
			return nil, fmt.Errorf("serialize %s.%s: %w", table.Name, field.Name, err)
		}
		if field.Object && value != nil {
			text, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("encode %s.%s: %w", table.Name, field.Name, err)
			}
			value = string(text)
		}
		row[field.ColumnName] = value
	}
	return row, nil
}

// DeserializeRow builds an instance from a row, dispatching on the discriminator column
// for polymorphic tables; unmapped values fall back to this table.
func (tt *TableType) DeserializeRow(row Row) (*Instance, error) {
	if row == nil {
		return nil, nil
	}

	t, err := dispatch(tt.ModelType, func(discriminator *Field) (interface{}, bool) {
		raw, ok := row[columnOf(discriminator)]
		if ok && discriminator.Object {
			raw, _ = decodeText(raw)
		}
		return raw, ok
	})
	if err != nil {
		return nil, err
	}

	table, ok := tt.TableFor(t)
	if !ok {
		table = tt
	}

	values := make(map[string]interface{}, len(row))
	for column, raw := range row {
		field, ok := table.FieldsByColumn[column]
		if !ok {
			continue
		}
		if field.Object {
			if raw, err = decodeText(raw); err != nil {
				return nil, fmt.Errorf("decode %s.%s: %w", table.Name, field.Name, err)
			}
		} else if b, ok := raw.([]byte); ok && field.Kind == KindString {
			raw = string(b)
		}
		value, err := field.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("deserialize %s.%s: %w", table.Name, field.Name, err)
		}
		values[field.Name] = value
	}
	return table.New(values)
}

func columnOf(field *Field) string {
	if field.ColumnName != "" {
		return field.ColumnName
	}
	return field.Name
}

func decodeText(raw interface{}) (interface{}, error) {
	var text []byte
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		text = []byte(v)
	case []byte:
		text = v
	default:
		return raw, nil
	}
	if len(text) == 0 {
		return nil, nil
	}

	var value interface{}
	if err := json.Unmarshal(text, &value); err != nil {
		return nil, err
	}
	return value, nil
}
