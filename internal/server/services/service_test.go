package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/metrics"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockLedger(t *testing.T, opts ...Option) (*LedgerService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dbx.DialectSQLite)
	cfg := testConfig()
	cfg.TxRetries = 1
	cooldowns := NewCooldownService(db, rm, cfg, opts...)
	return NewLedgerService(db, rm, cfg, cooldowns, opts...), mock
}

func TestRun_StorageFailureBecomesInternal(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	s, mock := newMockLedger(t, WithLogger(logging.NewJSON(&buf, "debug")), WithMetrics(rec))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT amount FROM balances`).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = s.Balance(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.False(t, common.IsDomain(err))
	assert.Contains(t, buf.String(), `"module":"ledger"`)
	assert.Contains(t, buf.String(), "disk I/O error")
	expected := `
# HELP eros_operations_total Engine operations by operation name and outcome.
# TYPE eros_operations_total counter
eros_operations_total{op="balance",outcome="` + metrics.OutcomeError + `"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "eros_operations_total"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_BeginFailureBecomesInternal(t *testing.T) {
	s, mock := newMockLedger(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	err := s.Credit(context.Background(), "u1", 5)
	assert.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_DomainFailureRollsBackUnchanged(t *testing.T) {
	s, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE balances SET amount = amount -`).
		WithArgs(int64(9), "u1", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.Debit(context.Background(), "u1", 9)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.NotErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_CommitFailureBecomesInternal(t *testing.T) {
	s, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO balances`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit lost"))

	err := s.Credit(context.Background(), "u1", 3)
	assert.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}
