package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/season"
)

type dbSeason struct {
	ID         string      `db:"id"`
	StartDate  core.Date   `db:"start_date"`
	FinishDate null.Time   `db:"finish_date"`
	IsActive   bool        `db:"is_active"`
	StartedBy  string      `db:"started_by"`
	FinishedBy null.String `db:"finished_by"`
}

func (s dbSeason) toCore() season.Season {
	return season.Season{
		ID:           s.ID,
		StartDate:    s.StartDate,
		FinishDate:   s.FinishDate,
		IsActive:     s.IsActive,
		StartedByID:  s.StartedBy,
		FinishedByID: s.FinishedBy,
	}
}

type seasonRepository struct {
	db *sqlx.DB
}

var _ season.Repository = (*seasonRepository)(nil) // interface compliance check

func NewSeasonRepository(db *sqlx.DB) *seasonRepository {
	return &seasonRepository{db: db}
}

func (repo seasonRepository) CreateSeason(ctx context.Context, s season.Season) (season.Season, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	const q = `
		INSERT INTO season (id, start_date, finish_date, is_active, started_by, finished_by)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		s.ID, s.StartDate, s.FinishDate, s.IsActive, s.StartedByID, s.FinishedByID,
	)
	if err != nil {
		// the partial unique index rejects a second active season
		if isUniqueViolation(err, "season_single_active_idx") {
			return season.Season{}, season.ErrActiveSeasonExists
		}
		return season.Season{}, errors.Wrap(err, "inserting season")
	}
	return s, nil
}

func (repo seasonRepository) GetActiveSeason(ctx context.Context) (season.Season, error) {
	var s dbSeason
	err := repo.db.GetContext(ctx, &s, `SELECT * FROM season WHERE is_active`)
	if err != nil {
		return season.Season{}, trapNoRowsErr(err, season.ErrNoActiveSeason, "finding active season")
	}
	return s.toCore(), nil
}

func (repo seasonRepository) UpdateSeason(ctx context.Context, s season.Season) (season.Season, error) {
	const q = `
		UPDATE season
		SET start_date = $2, finish_date = $3, is_active = $4, started_by = $5, finished_by = $6
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		s.ID, s.StartDate, s.FinishDate, s.IsActive, s.StartedByID, s.FinishedByID,
	)
	if err != nil {
		return season.Season{}, errors.Wrap(err, "updating season")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return season.Season{}, season.ErrNoActiveSeason
	}
	return s, nil
}
