package schema

import (
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer namer interface
type Namer interface {
	TableName(model string) string
	ColumnName(field string) string
	SerializedName(field string) string
}

// NamingStrategy tables, columns and wire names naming strategy
type NamingStrategy struct {
	TablePrefix    string
	SingularTable  bool
	SnakeColumns   bool
	CamelWireNames bool
}

// TableName convert model name to table name
func (ns NamingStrategy) TableName(model string) string {
	if ns.SingularTable {
		return ns.TablePrefix + toDBName(model)
	}
	return ns.TablePrefix + inflection.Plural(toDBName(model))
}

// ColumnName convert field name to column name
func (ns NamingStrategy) ColumnName(field string) string {
	if ns.SnakeColumns {
		return toDBName(field)
	}
	return field
}

// SerializedName convert field name to wire key
func (ns NamingStrategy) SerializedName(field string) string {
	if ns.CamelWireNames {
		return toCamelName(field)
	}
	return field
}

var smap sync.Map

func toCamelName(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) == 1 {
		return name
	}

	var (
		buf        strings.Builder
		titleCaser = cases.Title(language.Und, cases.NoLower)
	)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if buf.Len() == 0 {
			buf.WriteString(part)
		} else {
			buf.WriteString(titleCaser.String(part))
		}
	}
	return buf.String()
}

func toDBName(name string) string {
	if name == "" {
		return ""
	} else if v, ok := smap.Load(name); ok {
		return v.(string)
	}

	var (
		value                          = name
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool // upper case == true
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32)
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_')
				}
				buf.WriteRune(v + 32)
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	result := buf.String()
	smap.Store(name, result)
	return result
}
