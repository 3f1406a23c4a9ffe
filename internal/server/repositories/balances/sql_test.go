package balances

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(dbx.DialectPostgres.Bind(db)), mock, db
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT\s+amount\s+FROM\s+balances\s+WHERE\s+user_id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(int64(70)))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("boom").WillReturnError(errors.New("db down"))

	if got, err := repo.Get(context.Background(), "u1"); err != nil || got != 70 {
		t.Fatalf("Get = %d, %v", got, err)
	}
	if got, err := repo.Get(context.Background(), "ghost"); err != nil || got != 0 {
		t.Fatalf("Get missing = %d, %v", got, err)
	}
	if _, err := repo.Get(context.Background(), "boom"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCredit_Upserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.UnixMilli(1_700_000_000_000)
	q := `(?s)INSERT\s+INTO\s+balances\s*\(user_id,\s*amount,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE\s+SET\s+amount\s*=\s*balances\.amount\s*\+\s*excluded\.amount$`
	mock.ExpectExec(q).WithArgs("u1", int64(25), at.UnixMilli()).WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Credit(context.Background(), "u1", 25, at); err != nil {
		t.Fatalf("Credit error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDebit_IsConditional(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^UPDATE\s+balances\s+SET\s+amount\s*=\s*amount\s*-\s*\$1\s+WHERE\s+user_id\s*=\s*\$2\s+AND\s+amount\s*>=\s*\$3$`
	mock.ExpectExec(q).WithArgs(int64(10), "u1", int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(int64(99), "u1", int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Debit(context.Background(), "u1", 10)
	if err != nil || !ok {
		t.Fatalf("Debit = %v, %v", ok, err)
	}
	ok, err = repo.Debit(context.Background(), "u1", 99)
	if err != nil || ok {
		t.Fatalf("Debit beyond balance = %v, %v", ok, err)
	}
}

func TestTop_AssignsPositions(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)ORDER\s+BY\s+amount\s+DESC,\s*id\s+ASC\s+LIMIT\s+\$1$`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "amount"}).
			AddRow("a", int64(90)).
			AddRow("b", int64(90)))

	got, err := repo.Top(context.Background(), 2)
	if err != nil {
		t.Fatalf("Top error: %v", err)
	}
	want := []models.RankEntry{{Position: 1, UserID: "a", Amount: 90}, {Position: 2, UserID: "b", Amount: 90}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Top = %+v, want %+v", got, want)
	}
}

func TestResetAll_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+balances\s+SET\s+amount\s*=\s*0`).WillReturnError(errors.New("db down"))
	if err := repo.ResetAll(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
