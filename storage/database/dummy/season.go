package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmalu/clubhub/core/season"
)

type seasonRepository struct {
	db *seasonTable
}

var _ season.Repository = (*seasonRepository)(nil) // interface compliance check

func NewSeasonRepository(db *DB) season.Repository {
	return &seasonRepository{db: db.season}
}

func (repo *seasonRepository) CreateSeason(_ context.Context, s season.Season) (season.Season, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// mirror the partial unique index: one active season, ever
	if s.IsActive {
		for _, stored := range repo.db.table {
			if stored.IsActive {
				return season.Season{}, season.ErrActiveSeasonExists
			}
		}
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *seasonRepository) GetActiveSeason(_ context.Context) (season.Season, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.table {
		if s.IsActive {
			return *s, nil
		}
	}
	return season.Season{}, season.ErrNoActiveSeason
}

func (repo *seasonRepository) UpdateSeason(_ context.Context, s season.Season) (season.Season, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[s.ID]; !ok {
		return season.Season{}, season.ErrNoActiveSeason
	}
	repo.db.table[s.ID] = &s
	return s, nil
}
