package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "dbx.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT UNIQUE);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func noBackoff(t *testing.T) {
	t.Helper()
	orig := retryBackoff
	retryBackoff = func(int) time.Duration { return 0 }
	t.Cleanup(func() { retryBackoff = orig })
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('ok')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('fail')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('panic')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestWithTxRetry_RetriesSerializationFailures(t *testing.T) {
	db := setupDB(t)
	noBackoff(t)

	calls := 0
	err := WithTxRetry(context.Background(), db, nil, 5, func(ctx context.Context, tx DBTX) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: pgSerializationFailure}
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO t(v) VALUES ('third')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, 1, countRows(t, db))
}

func TestWithTxRetry_GivesUpAfterAttempts(t *testing.T) {
	db := setupDB(t)
	noBackoff(t)

	calls := 0
	err := WithTxRetry(context.Background(), db, nil, 2, func(ctx context.Context, tx DBTX) error {
		calls++
		return &pgconn.PgError{Code: pgDeadlockDetected}
	})
	require.True(t, IsRetryable(err))
	require.Equal(t, 2, calls)
}

func TestWithTxRetry_DoesNotRetryOtherErrors(t *testing.T) {
	db := setupDB(t)

	calls := 0
	boom := errors.New("boom")
	err := WithTxRetry(context.Background(), db, nil, 5, func(ctx context.Context, tx DBTX) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := setupDB(t)

	_, err := db.Exec(`INSERT INTO t(v) VALUES ('dup')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t(v) VALUES ('dup')`)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
	require.False(t, IsRetryable(err))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgUniqueViolation}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgSerializationFailure}))
	require.False(t, IsUniqueViolation(errors.New("plain")))
}
