package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", []byte("t1")))
	require.NoError(t, r.Set(ctx, "token", []byte("t2")))

	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("t2"), v)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "email", []byte("a@b.com")))
	require.NoError(t, r.Delete(ctx, "email"))
	require.NoError(t, r.Delete(ctx, "email"))

	v, err := r.Get(ctx, "email")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestListAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB}}, m)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestApply_WritesAndDeletesTogether(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "userId", []byte("old")))

	err := r.Apply(ctx, Batch{
		Set:    map[string][]byte{"token": []byte("t"), "userRole": []byte("admin"), "email": []byte("x@y.z")},
		Delete: []string{"userId"},
	})
	require.NoError(t, err)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"token":    []byte("t"),
		"userRole": []byte("admin"),
		"email":    []byte("x@y.z"),
	}, m)
}

func TestApply_DeleteWinsOverSet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Apply(ctx, Batch{Set: map[string][]byte{"k": []byte("v")}, Delete: []string{"k"}}))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestApply_EmptyBatchIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewSQLiteRepository(db).Apply(context.Background(), Batch{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("token", []byte("t")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("userRole", []byte("user")).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = NewSQLiteRepository(db).Apply(context.Background(), Batch{
		Set: map[string][]byte{"token": []byte("t"), "userRole": []byte("user")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply metadata batch")
	assert.Contains(t, err.Error(), "failed to set metadata[userRole]")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_RealRollbackLeavesNoPartialState(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY CHECK (key <> 'b'), value BLOB NOT NULL)`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	err = r.Apply(ctx, Batch{Set: map[string][]byte{"a": []byte("1"), "b": []byte("2")}})
	require.Error(t, err)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m, "first write must be rolled back")
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
