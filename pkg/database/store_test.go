package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, nil), mock
}

func TestStore_QuerySelect(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, title FROM events WHERE id = ?").
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow([]byte("ev-1"), "Go Workshop"))

	res, err := store.Query(context.Background(), "SELECT id, title FROM events WHERE id = ?", "ev-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.RowCount)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "ev-1", res.Rows[0]["id"])
	assert.Equal(t, "Go Workshop", res.Rows[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryExec(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE events SET title = ? WHERE id = ?").
		WithArgs("New", "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := store.Query(context.Background(), "UPDATE events SET title = ? WHERE id = ?", "New", "ev-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.RowCount)
	assert.Empty(t, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryErrors(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.Query(context.Background(), "   ")
	assert.Error(t, err)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT 1").WillReturnError(boom)

	_, err = store.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, boom)
}

func TestReturnsRows(t *testing.T) {
	assert.True(t, returnsRows("  select * from t"))
	assert.True(t, returnsRows("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.True(t, returnsRows("INSERT INTO t (a) VALUES (1) RETURNING id"))
	assert.False(t, returnsRows("INSERT INTO t (a) VALUES (1)"))
	assert.False(t, returnsRows("DELETE FROM t"))
}

func TestNewStore_NilExecutorPanics(t *testing.T) {
	assert.Panics(t, func() { NewStore(nil, nil) })
}
