package tickets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
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

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.UnixMilli(1_700_000_000_000)
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+contest_tickets\s*\(id,\s*user_id,\s*collectible_name,\s*image,\s*state,\s*presented_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)$`).
		WithArgs("t-1", "u1", "Eros", "e.png", "presented", at.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.ContestTicket{
		ID: "t-1", UserID: "u1", CollectibleName: "Eros", Image: "e.png",
		State: models.TicketPresented, PresentedAt: at,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "user_id", "collectible_name", "image", "state", "presented_at", "resolved_at", "user_roll", "opponent_roll", "outcome"}
	q := `(?s)FROM\s+contest_tickets\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t-1", "u1", "Eros", "", "resolved", int64(1000), int64(2000), 15, 13, "won"))
	mock.ExpectQuery(q).WithArgs("t-2").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("t-2", "u1", "Eros", "", "presented", int64(1000), nil, 0, 0, ""))
	mock.ExpectQuery(q).WithArgs("t-3").WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.State != models.TicketResolved || got.Outcome != models.ContestWon || got.ResolvedAt == nil || got.UserRoll != 15 {
		t.Fatalf("unexpected ticket: %+v", got)
	}

	got, err = repo.Get(context.Background(), "t-2")
	if err != nil || got.ResolvedAt != nil || got.State != models.TicketPresented {
		t.Fatalf("unexpected open ticket: %+v, %v", got, err)
	}

	if _, err := repo.Get(context.Background(), "t-3"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestMarkResolved_OneShot(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.UnixMilli(1_700_000_000_000)
	q := `(?s)^UPDATE\s+contest_tickets\s+SET\s+state\s*=\s*\$1,.*WHERE\s+id\s*=\s*\$6\s+AND\s+state\s*=\s*\$7$`
	mock.ExpectExec(q).
		WithArgs("resolved", at.UnixMilli(), 15, 13, "won", "t-1", "presented").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("resolved", at.UnixMilli(), 15, 13, "won", "t-1", "presented").
		WillReturnResult(sqlmock.NewResult(0, 0))

	tk := &models.ContestTicket{ID: "t-1", ResolvedAt: &at, UserRoll: 15, OpponentRoll: 13, Outcome: models.ContestWon}
	if ok, err := repo.MarkResolved(context.Background(), tk); err != nil || !ok {
		t.Fatalf("MarkResolved = %v, %v", ok, err)
	}
	if ok, err := repo.MarkResolved(context.Background(), tk); err != nil || ok {
		t.Fatalf("second MarkResolved = %v, %v", ok, err)
	}

	if _, err := repo.MarkResolved(context.Background(), &models.ContestTicket{ID: "t-2"}); err == nil {
		t.Fatalf("expected error without resolved_at")
	}
}
