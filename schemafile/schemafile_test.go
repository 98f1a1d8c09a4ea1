package schemafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modelkit.io/modelkit/logger"
	"modelkit.io/modelkit/schema"
)

const blogSchema = `
types:
  - name: User
    table: users
    fields:
      - {name: id, kind: id}
      - {name: email, kind: string}
      - {name: created_at, kind: datetime, serialized_name: createdAt, generate: now}
      - {name: token, kind: uuid, generate: uuid}
      - {name: password, kind: transient, default: hidden}
  - name: Car
    persist: true
    fields:
      - {name: id, kind: id}
      - {name: kind, kind: string}
      - {name: doors, kind: number, default: 4}
  - name: Vehicle
    persist: true
    polymorphic_on: kind
    polymorphic_map: {car: Car}
    fields:
      - {name: id, kind: id}
      - {name: kind, kind: string}
  - name: Post
    not_serialized: [views]
    fields:
      - {name: title, kind: string, default: untitled}
      - {name: published_on, kind: date, default: "2024-01-02"}
      - {name: author, kind: model, model: User}
      - {name: author_email, kind: ref, path: author.email}
      - {name: tags, kind: list, item: {name: tag, kind: string}, default: [go]}
      - {name: views, kind: number, column: view_count}
      - {name: meta, kind: object}
      - {name: avatar, kind: blob}
      - {name: published, kind: boolean}
      - {name: raw, kind: raw}
`

func buildSchema(t *testing.T, text string) (*schema.Registry, error) {
	t.Helper()
	file, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	reg := schema.NewRegistry(schema.Config{Logger: logger.Discard})
	return reg, file.Build(reg)
}

func TestBuild(t *testing.T) {
	reg, err := buildSchema(t, blogSchema)
	require.NoError(t, err)

	users, ok := reg.Table("User")
	require.True(t, ok)
	assert.Equal(t, "users", users.Table)
	assert.Equal(t, []string{"id"}, users.PrimaryKeys)
	assert.Equal(t, "createdAt", users.FieldsByName["created_at"].SerializedName)

	user := users.MustNew(nil)
	assert.WithinDuration(t, time.Now(), user.Get("created_at").(time.Time), time.Minute)
	assert.IsType(t, uuid.UUID{}, user.Get("token"))
	assert.NotEqual(t, user.Get("token"), users.MustNew(nil).Get("token"))
	assert.Equal(t, "hidden", user.Get("password"))

	cars, ok := reg.Table("Car")
	require.True(t, ok)
	assert.Equal(t, "cars", cars.Table)
	assert.Equal(t, 4, cars.MustNew(nil).Get("doors"))

	vehicles, ok := reg.Table("Vehicle")
	require.True(t, ok)
	inst, err := vehicles.DeserializeRow(schema.Row{"id": int64(1), "kind": "car", "doors": int64(2)})
	require.NoError(t, err)
	assert.Same(t, cars.ModelType, inst.Type())

	post, ok := reg.Lookup("Post")
	require.True(t, ok)
	_, isTable := reg.Table("Post")
	assert.False(t, isTable)

	p := post.MustNew(nil)
	assert.Equal(t, "untitled", p.Get("title"))
	assert.Equal(t, []interface{}{"go"}, p.Get("tags"))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), p.Get("published_on"))
	assert.False(t, post.IsSerialized("views"))
	assert.Equal(t, "view_count", post.FieldsByName["views"].ColumnName)
	assert.Same(t, users.ModelType, post.FieldsByName["author"].ModelType)

	p, err = schema.Deserialize(post, map[string]interface{}{"author": map[string]interface{}{"email": "a@b.c"}})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", p.Get("author_email"))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name:    "unknown kind",
			text:    `types: [{name: T, fields: [{name: a, kind: decimal}]}]`,
			wantErr: ErrUnknownKind,
		},
		{
			name:    "unknown model",
			text:    `types: [{name: T, fields: [{name: a, kind: model, model: Missing}]}]`,
			wantErr: schema.ErrInvalidData,
		},
		{
			name:    "model without type",
			text:    `types: [{name: T, fields: [{name: a, kind: model}]}]`,
			wantErr: schema.ErrMissingModelType,
		},
		{
			name:    "ref without path",
			text:    `types: [{name: T, fields: [{name: a, kind: ref}]}]`,
			wantErr: schema.ErrInvalidField,
		},
		{
			name:    "ref default",
			text:    `types: [{name: T, fields: [{name: a, kind: ref, path: b, default: 1}, {name: b, kind: raw}]}]`,
			wantErr: schema.ErrReadonly,
		},
		{
			name:    "list without item",
			text:    `types: [{name: T, fields: [{name: a, kind: list}]}]`,
			wantErr: schema.ErrInvalidField,
		},
		{
			name:    "bad generator",
			text:    `types: [{name: T, fields: [{name: a, kind: string, generate: random}]}]`,
			wantErr: schema.ErrInvalidData,
		},
		{
			name:    "bad default",
			text:    `types: [{name: T, fields: [{name: a, kind: date, default: 12}]}]`,
			wantErr: schema.ErrInvalidData,
		},
		{
			name:    "table without key",
			text:    `types: [{name: T, persist: true, fields: [{name: a, kind: string}]}]`,
			wantErr: schema.ErrPrimaryKeyArity,
		},
		{
			name:    "unknown subtype",
			text:    `types: [{name: T, polymorphic_on: k, polymorphic_map: {x: Missing}, fields: [{name: k, kind: string}]}]`,
			wantErr: schema.ErrInvalidData,
		},
		{
			name:    "unknown subtype table",
			text:    `types: [{name: T, persist: true, polymorphic_on: k, polymorphic_map: {x: Missing}, fields: [{name: id, kind: id}, {name: k, kind: string}]}]`,
			wantErr: schema.ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildSchema(t, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorContains(t, err, "type T")
		})
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader(`types: [{name: T, colour: red}]`))
	assert.ErrorContains(t, err, "failed to parse schema file")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogSchema), 0o644))

	file, err := Load(path)
	require.NoError(t, err)
	require.Len(t, file.Types, 4)
	assert.True(t, file.Types[0].IsTable())
	assert.True(t, file.Types[1].IsTable())
	assert.False(t, file.Types[3].IsTable())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
