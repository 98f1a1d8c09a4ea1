package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineTable(t *testing.T) {
	reg := NewRegistry(Config{NamingStrategy: NamingStrategy{SnakeColumns: true}})

	table, err := reg.DefineTable("BlogPost", []*Field{
		ID("ID"),
		String("Title"),
		String("AuthorName", WithColumnName("author")),
		Transient("Draft"),
		Ref("TitleAlias", "Title"),
	})
	require.NoError(t, err)

	assert.Equal(t, "blog_posts", table.Table)
	assert.Equal(t, []string{"id"}, table.PrimaryKeys)
	assert.Equal(t, "ID", table.PrimaryField.Name)
	assert.Equal(t, []string{"id", "title", "author"}, table.ColumnNames())
	assert.Equal(t, []string{"ID", "Title", "AuthorName"}, table.PersistentFieldNames)

	field, ok := table.FieldForColumn("author")
	require.True(t, ok)
	assert.Equal(t, "AuthorName", field.Name)

	column, ok := table.ColumnForField("Title")
	require.True(t, ok)
	assert.Equal(t, "title", column)

	_, ok = table.ColumnForField("Draft")
	assert.False(t, ok)

	registered, ok := reg.Table("BlogPost")
	require.True(t, ok)
	assert.Same(t, table, registered)

	mt, ok := reg.Lookup("BlogPost")
	require.True(t, ok)
	assert.Same(t, table.ModelType, mt)

	named := reg.MustDefineTable("Person", []*Field{ID("id")}, TableName("people_v2"))
	assert.Equal(t, "people_v2", named.Table)
}

func TestDefineTableErrors(t *testing.T) {
	reg, w := newTestRegistry(t)

	_, err := reg.DefineTable("NoKey", []*Field{String("name")})
	assert.ErrorIs(t, err, ErrPrimaryKeyArity)

	_, err = reg.DefineTable("TwoKeys", []*Field{ID("a"), ID("b")})
	assert.ErrorIs(t, err, ErrPrimaryKeyArity)

	_, err = reg.DefineTable("NoColumns", []*Field{Transient("a", AsPrimary())})
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = reg.DefineTable("Empty", nil)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = reg.DefineTable("SharedColumn", []*Field{ID("id"), String("a", WithColumnName("x")), String("b", WithColumnName("x"))})
	assert.ErrorIs(t, err, ErrInvalidField)

	_, ok := reg.Lookup("NoKey")
	assert.False(t, ok)
	assert.True(t, w.contains(ErrPrimaryKeyArity.Error()))

	assert.Panics(t, func() { reg.MustDefineTable("TwoKeys", []*Field{ID("a"), ID("b")}) })
}

func TestRowConversion(t *testing.T) {
	reg, _ := newTestRegistry(t)
	author := reg.MustDefine("Author", []*Field{String("name")})
	post := reg.MustDefineTable("Post", []*Field{
		ID("id"),
		String("title"),
		DateTime("created_at"),
		Model("author", author),
		ListOf("tags", String("tag")),
		Object("extra"),
		Transient("draft"),
		Ref("author_name", "author.name"),
	})

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inst := post.MustNew(map[string]interface{}{
		"id":         int64(1),
		"title":      "hello",
		"created_at": created,
		"author":     author.MustNew(map[string]interface{}{"name": "ann"}),
		"tags":       []interface{}{"a", "b"},
		"draft":      true,
	})

	row, err := post.SerializeRow(inst)
	require.NoError(t, err)
	assert.Equal(t, Row{
		"id":         int64(1),
		"title":      "hello",
		"created_at": "2024-03-01T10:00:00Z",
		"author":     `{"name":"ann"}`,
		"tags":       `["a","b"]`,
		"extra":      nil,
	}, row)
	assert.Equal(t, int64(1), post.PrimaryKey(inst))

	back, err := post.DeserializeRow(Row{
		"id":         int64(1),
		"title":      []byte("hello"),
		"created_at": "2024-03-01T10:00:00Z",
		"author":     []byte(`{"name":"ann"}`),
		"tags":       `["a","b"]`,
		"extra":      nil,
		"other":      "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", back.Get("title"))
	assert.Equal(t, "ann", back.Get("author_name"))
	assert.Nil(t, back.Get("draft"))
	assert.True(t, created.Equal(back.Get("created_at").(time.Time)))

	expected, err := inst.Set("draft", nil)
	require.NoError(t, err)
	assert.True(t, expected.Equal(back), "%v != %v", expected, back)

	row, err = post.SerializeRow(nil)
	require.NoError(t, err)
	assert.Nil(t, row)

	back, err = post.DeserializeRow(nil)
	require.NoError(t, err)
	assert.Nil(t, back)

	_, err = post.DeserializeRow(Row{"tags": "{not json"})
	assert.Error(t, err)

	_, err = post.SerializeRow(author.MustNew(nil))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestPolymorphicTables(t *testing.T) {
	reg, w := newTestRegistry(t)
	car := reg.MustDefineTable("Car", []*Field{ID("id"), String("kind"), Number("doors")})
	bike := reg.MustDefineTable("Bike", []*Field{ID("id"), String("kind"), Boolean("electric")})
	vehicle := reg.MustDefineTable("Vehicle", []*Field{ID("id"), String("kind")},
		PolymorphicTables("kind", map[string]*TableType{"car": car, "bike": bike}))

	assert.Equal(t, "cars", car.Table)
	assert.Same(t, car.ModelType, vehicle.PolymorphicMap["car"])

	inst, err := vehicle.DeserializeRow(Row{"id": int64(1), "kind": "car", "doors": int64(4)})
	require.NoError(t, err)
	assert.Same(t, car.ModelType, inst.Type())
	assert.Equal(t, int64(4), inst.Get("doors"))

	inst, err = vehicle.DeserializeRow(Row{"id": int64(2), "kind": []byte("bike"), "electric": true})
	require.NoError(t, err)
	assert.Same(t, bike.ModelType, inst.Type())

	inst, err = vehicle.DeserializeRow(Row{"id": int64(3), "kind": "plane", "wings": 2})
	require.NoError(t, err)
	assert.Same(t, vehicle.ModelType, inst.Type())
	assert.True(t, w.contains("Vehicle: unmapped kind value plane"))

	row, err := vehicle.SerializeRow(car.MustNew(map[string]interface{}{"id": int64(5), "kind": "car", "doors": int64(2)}))
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(5), "kind": "car", "doors": int64(2)}, row)

	table, ok := vehicle.TableFor(bike.ModelType)
	require.True(t, ok)
	assert.Same(t, bike, table)

	plain := reg.MustDefine("Plain", []*Field{ID("id"), String("kind")})
	_, err = reg.DefineTable("Broken", []*Field{ID("id"), String("kind")},
		PolymorphicOn("kind"), PolymorphicMap(map[string]*ModelType{"plain": plain}))
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestDeserializeRowDriverText(t *testing.T) {
	reg, _ := newTestRegistry(t)
	stats := reg.MustDefineTable("Stat", []*Field{ID("id"), Number("n"), Boolean("b"), String("label")})

	original := stats.MustNew(map[string]interface{}{"id": int64(7), "n": int64(42), "b": true, "label": "x"})
	inst, err := stats.DeserializeRow(Row{"id": []byte("7"), "n": []byte("42"), "b": []byte("1"), "label": []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.PrimaryKey(inst))
	assert.Equal(t, int64(42), inst.Get("n"))
	assert.Equal(t, true, inst.Get("b"))
	assert.True(t, original.Equal(inst))

	_, err = stats.DeserializeRow(Row{"id": []byte("seven")})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestPolymorphicTablesResolvedByName(t *testing.T) {
	reg, _ := newTestRegistry(t)
	car := reg.MustDefineTable("Car", []*Field{ID("id"), String("kind"), Number("doors")})
	vehicle := reg.MustDefineTable("Vehicle", []*Field{ID("id"), String("kind")},
		PolymorphicOn("kind"), PolymorphicMap(map[string]*ModelType{"car": car.ModelType}))

	table, ok := vehicle.TableFor(car.ModelType)
	require.True(t, ok)
	assert.Same(t, car, table)
}
