// Package scan bridges database/sql results and table types. The caller owns the
// connection and the query text; this package only shapes rows.
package scan

import (
	"context"
	"database/sql"
	"fmt"

	"modelkit.io/modelkit/schema"
)

// ConnPool db conns pool interface
type ConnPool interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Rows reads every remaining row into a column keyed map and closes rows
func Rows(rows *sql.Rows) ([]schema.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []schema.Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for idx := range values {
			pointers[idx] = &values[idx]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(schema.Row, len(columns))
		for idx, column := range columns {
			row[column] = values[idx]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Instances reads rows and deserializes each one through table
func Instances(rows *sql.Rows, table *schema.TableType) ([]*schema.Instance, error) {
	raws, err := Rows(rows)
	if err != nil {
		return nil, err
	}

	results := make([]*schema.Instance, 0, len(raws))
	for idx, raw := range raws {
		inst, err := table.DeserializeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", idx, table.Table, err)
		}
		results = append(results, inst)
	}
	return results, nil
}

// Query runs query on pool and deserializes the result through table
func Query(ctx context.Context, pool ConnPool, table *schema.TableType, query string, args ...interface{}) ([]*schema.Instance, error) {
	rows, err := pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return Instances(rows, table)
}

// Values serializes inst and returns its columns in table order with the matching values,
// ready to be bound to a statement written by the caller
func Values(table *schema.TableType, inst *schema.Instance) ([]string, []interface{}, error) {
	if inst == nil {
		return nil, nil, fmt.Errorf("%w: nil instance for table %s", schema.ErrInvalidData, table.Table)
	}

	row, err := table.SerializeRow(inst)
	if err != nil {
		return nil, nil, err
	}

	concrete, ok := table.TableFor(inst.Type())
	if !ok {
		concrete = table
	}

	columns := concrete.ColumnNames()
	values := make([]interface{}, len(columns))
	for idx, column := range columns {
		values[idx] = row[column]
	}
	return columns, values, nil
}
