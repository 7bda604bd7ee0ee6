package season

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tmalu/clubhub/core"
)

var (
	// ErrActiveSeasonExists signals a second start while a season is running.
	ErrActiveSeasonExists = errors.New("a season is already active")
	// ErrNoActiveSeason signals a finish (or a gate check) with no running season.
	ErrNoActiveSeason = errors.New("no active season")
)

type (
	Repository interface {
		// CreateSeason persists a new season. It fails with ErrActiveSeasonExists
		// when an active season is already stored; two concurrent creates must
		// not both succeed.
		CreateSeason(ctx context.Context, s Season) (Season, error)
		GetActiveSeason(ctx context.Context) (Season, error)
		UpdateSeason(ctx context.Context, s Season) (Season, error)
	}

	// AttendanceWiper clears the attendance store when a season is closed.
	// Attendance facts are scoped to exactly one season's lifetime.
	AttendanceWiper interface {
		DeleteAllFacts(ctx context.Context) error
	}

	ServiceInterface interface {
		IsActive(ctx context.Context) (bool, error)
		Active(ctx context.Context) (Season, error)
		Start(ctx context.Context, adminID string) (Season, error)
		Finish(ctx context.Context, adminID string) (Season, error)
	}

	Service struct {
		repo  Repository
		wiper AttendanceWiper
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, wiper AttendanceWiper) *Service {
	return &Service{repo: repo, wiper: wiper}
}

// IsActive reports whether a season is currently running.
func (svc *Service) IsActive(ctx context.Context) (bool, error) {
	if _, err := svc.repo.GetActiveSeason(ctx); err != nil {
		if pkgerrors.Cause(err) == ErrNoActiveSeason {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Active returns the currently running season, ErrNoActiveSeason if there is none.
func (svc *Service) Active(ctx context.Context) (Season, error) {
	return svc.repo.GetActiveSeason(ctx)
}

// Start opens a new season. Fails with ErrActiveSeasonExists when one is
// already running; seasons never stack.
func (svc *Service) Start(ctx context.Context, adminID string) (Season, error) {
	s := Season{
		StartDate:   core.Today(),
		IsActive:    true,
		StartedByID: adminID,
	}
	return svc.repo.CreateSeason(ctx, s)
}

// Finish closes the running season and wipes every attendance fact recorded
// during it. Fails with ErrNoActiveSeason when none is running.
func (svc *Service) Finish(ctx context.Context, adminID string) (Season, error) {
	s, err := svc.repo.GetActiveSeason(ctx)
	if err != nil {
		return Season{}, err
	}

	s.FinishDate = null.TimeFrom(core.Today().Time)
	s.IsActive = false
	s.FinishedByID = null.StringFrom(adminID)

	s, err = svc.repo.UpdateSeason(ctx, s)
	if err != nil {
		return Season{}, pkgerrors.Wrap(err, "closing season")
	}

	if err = svc.wiper.DeleteAllFacts(ctx); err != nil {
		return Season{}, pkgerrors.Wrap(err, "wiping attendance")
	}
	return s, nil
}
