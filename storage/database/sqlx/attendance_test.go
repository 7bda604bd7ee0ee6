package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var insertFactQ = regexp.QuoteMeta(`INSERT INTO attendance_fact (id, date, user_id, attended) VALUES ($1, $2, $3, $4)`)

func TestAttendanceRepository_SaveFacts(t *testing.T) {
	date := core.NewDate(2021, time.April, 5)
	facts := []attendance.Fact{
		{Date: date, UserID: "u1", Attended: true},
		{Date: date, UserID: "u2", Attended: false},
	}

	t.Run("batch committed in one transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAttendanceRepository(db)

		mock.ExpectBegin()
		for _, f := range facts {
			mock.ExpectExec(insertFactQ).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), f.UserID, f.Attended).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
		mock.ExpectCommit()

		saved, err := repo.SaveFacts(context.Background(), facts)
		if err != nil {
			t.Fatalf("SaveFacts() failed: %v", err)
		}
		if len(saved) != len(facts) {
			t.Errorf("len(saved) = %d; want %d", len(saved), len(facts))
		}
		for _, f := range saved {
			if f.ID == "" {
				t.Errorf("saved fact for %s has no ID", f.UserID)
			}
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("duplicate rolls the whole batch back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAttendanceRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(insertFactQ).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "u1", true).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(insertFactQ).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "u2", false).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "attendance_fact_user_id_date_key"})
		mock.ExpectRollback()

		saved, err := repo.SaveFacts(context.Background(), facts)
		if err != attendance.ErrFactExists {
			t.Errorf("SaveFacts() error = %v; want %v", err, attendance.ErrFactExists)
		}
		if saved != nil {
			t.Errorf("saved = %v; want nil", saved)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}
