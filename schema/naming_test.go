package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDBName(t *testing.T) {
	var maps = map[string]string{
		"":                 "",
		"x":                "x",
		"X":                "x",
		"userRestrictions": "user_restrictions",
		"ThisIsATest":      "this_is_a_test",
		"PFAndESI":         "pf_and_esi",
		"AbcAndJkl":        "abc_and_jkl",
		"EmployeeID":       "employee_id",
		"SKU_ID":           "sku_id",
		"FieldX":           "field_x",
		"HTTPAndSMTP":      "http_and_smtp",
		"UUID":             "uuid",
		"HTTP_URL":         "http_url",
		"SHA256Hash":       "sha256_hash",
		"SHA256HASH":       "sha256_hash",
		"created_at":       "created_at",
	}

	for key, value := range maps {
		if toDBName(key) != value {
			t.Errorf("%v toName should equal %v, but got %v", key, value, toDBName(key))
		}
	}
}

func TestToCamelName(t *testing.T) {
	var maps = map[string]string{
		"id":              "id",
		"created_at":      "createdAt",
		"last_login_date": "lastLoginDate",
		"_private":        "private",
		"alreadyCamel":    "alreadyCamel",
	}

	for key, value := range maps {
		assert.Equal(t, value, toCamelName(key), key)
	}
}

func TestNamingStrategy(t *testing.T) {
	ns := NamingStrategy{
		TablePrefix:    "public_",
		SnakeColumns:   true,
		CamelWireNames: true,
	}

	assert.Equal(t, "public_users", ns.TableName("User"))
	assert.Equal(t, "public_blog_posts", ns.TableName("BlogPost"))
	assert.Equal(t, "public_categories", ns.TableName("Category"))
	assert.Equal(t, "author_id", ns.ColumnName("AuthorID"))
	assert.Equal(t, "createdAt", ns.SerializedName("created_at"))

	singular := NamingStrategy{SingularTable: true}
	assert.Equal(t, "blog_post", singular.TableName("BlogPost"))
	assert.Equal(t, "AuthorID", singular.ColumnName("AuthorID"))
	assert.Equal(t, "created_at", singular.SerializedName("created_at"))
}

func TestRegistryNamingStrategy(t *testing.T) {
	reg := NewRegistry(Config{NamingStrategy: NamingStrategy{CamelWireNames: true}})

	post := reg.MustDefine("Post", []*Field{
		ID("id"),
		DateTime("created_at"),
		String("author_name", WithSerializedName("by")),
	})

	assert.Equal(t, "createdAt", post.FieldsByName["created_at"].SerializedName)
	assert.Equal(t, "by", post.FieldsByName["author_name"].SerializedName)
	assert.Same(t, post.FieldsByName["created_at"], post.FieldsByWireName["createdAt"])
}
