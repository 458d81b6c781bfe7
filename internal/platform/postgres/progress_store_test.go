package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/stargazer/internal/store"
	"github.com/phrazzld/stargazer/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresProgressStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresProgressStore(db, nil), mock
}

func TestPostgresProgressStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectQuery(selectProgressSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"data", "revision"}).AddRow([]byte(`{"schemaVersion":3}`), int64(4)))

		rec, err := s.Get(context.Background(), "learner")
		require.NoError(t, err)
		assert.Equal(t, int64(4), rec.Revision)
		assert.JSONEq(t, `{"schemaVersion":3}`, string(rec.Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectQuery(selectProgressSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"data", "revision"}))

		_, err := s.Get(context.Background(), "learner")
		assert.ErrorIs(t, err, store.ErrProgressNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectQuery(selectProgressSQL).
			WithArgs("learner").
			WillReturnError(errors.New("connection refused"))

		_, err := s.Get(context.Background(), "learner")
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "get", storeErr.Operation)
	})
}

func TestPostgresProgressStore_PutCreate(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)
	data := []byte(`{"schemaVersion":3}`)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRevisionSQL).
		WithArgs("learner").
		WillReturnRows(sqlmock.NewRows([]string{"revision"}))
	mock.ExpectExec(insertProgressSQL).
		WithArgs("learner", data).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rev, err := s.Put(context.Background(), "learner", data, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProgressStore_PutUpdate(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)
	data := []byte(`{"schemaVersion":3}`)

	mock.ExpectBegin()
	mock.ExpectQuery(lockRevisionSQL).
		WithArgs("learner").
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(int64(2)))
	mock.ExpectExec(updateProgressSQL).
		WithArgs("learner", data, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rev, err := s.Put(context.Background(), "learner", data, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProgressStore_PutConflicts(t *testing.T) {
	t.Parallel()
	data := []byte(`{}`)

	t.Run("stale revision", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockRevisionSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(int64(5)))
		mock.ExpectRollback()

		_, err := s.Put(context.Background(), "learner", data, 4)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of missing key", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockRevisionSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"revision"}))
		mock.ExpectRollback()

		_, err := s.Put(context.Background(), "learner", data, 1)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent create", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockRevisionSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"revision"}))
		mock.ExpectExec(insertProgressSQL).
			WithArgs("learner", data).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "progress_snapshots_pkey"})
		mock.ExpectRollback()

		_, err := s.Put(context.Background(), "learner", data, 0)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row changed before update", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockRevisionSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(int64(1)))
		mock.ExpectExec(updateProgressSQL).
			WithArgs("learner", data, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := s.Put(context.Background(), "learner", data, 1)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure on commit", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(lockRevisionSQL).
			WithArgs("learner").
			WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(int64(1)))
		mock.ExpectExec(updateProgressSQL).
			WithArgs("learner", data, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})

		_, err := s.Put(context.Background(), "learner", data, 1)
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.NotErrorIs(t, err, store.ErrTransactionFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresProgressStore_PutBeginFails(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	_, err := s.Put(context.Background(), "learner", []byte(`{}`), 0)
	require.Error(t, err)
	assert.False(t, store.IsConflictError(err))
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

// TestPostgresProgressStore_Conformance runs the shared suite against a real
// database when STARGAZER_TEST_DB_URL is set.
func TestPostgresProgressStore_Conformance(t *testing.T) {
	dbURL := os.Getenv("STARGAZER_TEST_DB_URL")
	if dbURL == "" {
		t.Skip("STARGAZER_TEST_DB_URL not set")
	}

	ctx := context.Background()
	db, err := Open(ctx, dbURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db, nil))

	storetest.RunProgressStoreTests(t, func(t *testing.T) store.ProgressStore {
		_, err := db.ExecContext(ctx, "TRUNCATE progress_snapshots")
		require.NoError(t, err)
		return NewPostgresProgressStore(db, nil)
	})
}
