package database

import (
	"database/sql"
)

// Result is what the storage collaborator hands back for any statement. Rows
// are opaque column->value maps; RowCount is the number of rows returned for
// queries and the number of rows affected for other statements.
type Result struct {
	Rows     []map[string]any
	RowCount int64
}

// rowsToMaps converts sql.Rows into []map[string]any. []byte values are
// converted to strings.
func rowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]map[string]any, 0)

	for rows.Next() {
		columns := make([]any, len(cols))
		columnPointers := make([]any, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		m := make(map[string]any, len(cols))
		for i, colName := range cols {
			val := *(columnPointers[i].(*any))
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			m[colName] = val
		}

		res = append(res, m)
	}

	return res, rows.Err()
}
