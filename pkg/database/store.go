// -----------------------------------------------------------------------------
// Store
// -----------------------------------------------------------------------------
// Store is the generic query executor the core consumes from its storage
// collaborator: query(statement, params) -> {rows, rowCount}. It does not
// know any schema; rows are opaque maps.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Store runs statements against an injected executor.
type Store struct {
	exec   QueryExecutor
	logger *zap.Logger
}

// NewStore wraps an executor (*sql.DB or *sql.Tx).
func NewStore(exec QueryExecutor, logger *zap.Logger) *Store {
	if exec == nil {
		panic("database: nil QueryExecutor")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{exec: exec, logger: logger.Named("store")}
}

// Query executes a statement. Statements that produce rows (SELECT, SHOW,
// WITH, or anything with RETURNING) are run as queries; everything else is
// executed and reports rows affected.
//
// Example:
//
//	res, err := store.Query(ctx, "SELECT id, title FROM events WHERE id = ?", id)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.RowCount, res.Rows)
func (s *Store) Query(ctx context.Context, statement string, params ...any) (*Result, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, errors.New("empty statement")
	}

	s.logger.Debug("executing statement", zap.String("statement", statement), zap.Int("params", len(params)))

	if returnsRows(statement) {
		rows, err := s.exec.QueryContext(ctx, statement, params...)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		defer rows.Close()

		maps, err := rowsToMaps(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rows: %w", err)
		}
		return &Result{Rows: maps, RowCount: int64(len(maps))}, nil
	}

	res, err := s.exec.ExecContext(ctx, statement, params...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	return &Result{Rows: []map[string]any{}, RowCount: affected}, nil
}

func returnsRows(statement string) bool {
	s := strings.ToUpper(strings.TrimSpace(statement))
	for _, prefix := range []string{"SELECT", "SHOW", "WITH", "DESCRIBE", "EXPLAIN"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return strings.Contains(s, " RETURNING ")
}
