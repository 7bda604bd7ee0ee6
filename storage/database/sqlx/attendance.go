package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
)

type dbFact struct {
	ID       string    `db:"id"`
	Date     core.Date `db:"date"`
	UserID   string    `db:"user_id"`
	Attended bool      `db:"attended"`
}

func (f dbFact) toCore() attendance.Fact {
	return attendance.Fact{ID: f.ID, Date: f.Date, UserID: f.UserID, Attended: f.Attended}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) FindFact(ctx context.Context, userID string, date core.Date) (attendance.Fact, error) {
	var f dbFact
	err := repo.db.GetContext(ctx, &f,
		`SELECT * FROM attendance_fact WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		return attendance.Fact{}, trapNoRowsErr(err, attendance.ErrFactNotFound, "finding attendance fact")
	}
	return f.toCore(), nil
}

// SaveFacts commits the batch in one transaction; a (user, date) collision
// rolls the whole batch back with ErrFactExists.
func (repo attendanceRepository) SaveFacts(ctx context.Context, facts []attendance.Fact) ([]attendance.Fact, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	return saveFactsTx(ctx, tx, facts)
}

func saveFactsTx(ctx context.Context, tx core.DBTransactor, facts []attendance.Fact) ([]attendance.Fact, error) {
	const q = `INSERT INTO attendance_fact (id, date, user_id, attended) VALUES ($1, $2, $3, $4)`
	saved := make([]attendance.Fact, 0, len(facts))
	for _, f := range facts {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, q, f.ID, f.Date, f.UserID, f.Attended); err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err, "") {
				return nil, attendance.ErrFactExists
			}
			return nil, errors.Wrap(err, "inserting attendance fact")
		}
		saved = append(saved, f)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing attendance facts")
	}
	return saved, nil
}

func (repo attendanceRepository) DistinctDatesForClassInMonth(ctx context.Context, classGroupID string, year, month int) ([]core.Date, error) {
	const q = `
		SELECT DISTINCT f.date
		FROM attendance_fact f
		JOIN class_group_member m ON m.user_id = f.user_id
		WHERE m.class_group_id = $1
		  AND EXTRACT(YEAR FROM f.date) = $2
		  AND EXTRACT(MONTH FROM f.date) = $3
		ORDER BY f.date`
	var dates []core.Date
	if err := repo.db.SelectContext(ctx, &dates, q, classGroupID, year, month); err != nil {
		return nil, errors.Wrap(err, "querying distinct attendance dates")
	}
	return dates, nil
}

func (repo attendanceRepository) DistinctYearsForClass(ctx context.Context, classGroupID string) ([]int, error) {
	const q = `
		SELECT DISTINCT EXTRACT(YEAR FROM f.date)::int AS year
		FROM attendance_fact f
		JOIN class_group_member m ON m.user_id = f.user_id
		WHERE m.class_group_id = $1
		ORDER BY year`
	var years []int
	if err := repo.db.SelectContext(ctx, &years, q, classGroupID); err != nil {
		return nil, errors.Wrap(err, "querying distinct attendance years")
	}
	return years, nil
}

func (repo attendanceRepository) DeleteAllFacts(ctx context.Context) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM attendance_fact`); err != nil {
		return errors.Wrap(err, "wiping attendance facts")
	}
	return nil
}
