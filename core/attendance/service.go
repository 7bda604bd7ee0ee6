package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/user"
)

var (
	// ErrFactExists : a fact for the same (user, date) is already stored.
	ErrFactExists = errors.New("attendance already recorded for this user and date")
	// ErrFactNotFound : no fact stored for the (user, date) looked up.
	ErrFactNotFound = errors.New("attendance fact not found")
	// ErrIncompleteRoster : a batch left roster members unaccounted for.
	ErrIncompleteRoster = errors.New("attendance batch does not cover the full roster")
)

type (
	// Repository is the attendance store: pure persistence and targeted
	// queries, no business validation.
	Repository interface {
		FindFact(ctx context.Context, userID string, date core.Date) (Fact, error)
		// SaveFacts persists the whole batch atomically: either every fact
		// becomes visible or none does. A (user, date) collision fails the
		// batch with ErrFactExists.
		SaveFacts(ctx context.Context, facts []Fact) ([]Fact, error)
		DistinctDatesForClassInMonth(ctx context.Context, classGroupID string, year, month int) ([]core.Date, error)
		DistinctYearsForClass(ctx context.Context, classGroupID string) ([]int, error)
		DeleteAllFacts(ctx context.Context) error
	}

	ServiceInterface interface {
		Record(ctx context.Context, date core.Date, classGroupID string, attendedIDs, absentIDs []string) (Result, error)
		MonthlyMatrix(ctx context.Context, classGroupID string, year, month int) (Matrix, error)
		TrackedYears(ctx context.Context, classGroupID string) ([]int, error)
	}

	Service struct {
		repo   Repository
		usrSvc user.ServiceInterface
		grpSvc classgroup.ServiceInterface
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, usrSvc user.ServiceInterface, grpSvc classgroup.ServiceInterface) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, grpSvc: grpSvc}
}

// Record reconciles one submitted batch against the class roster and commits
// it. Every roster member must appear in exactly one of attendedIDs and
// absentIDs; otherwise nothing is persisted and the batch fails with
// ErrIncompleteRoster (as a ValidationError naming the unaccounted members).
// Submitted ids must resolve to known users (user.ErrNotFound otherwise).
// Ids outside the current roster are still recorded; rosters drift and old
// members may appear on historical sheets.
func (svc *Service) Record(ctx context.Context, date core.Date, classGroupID string, attendedIDs, absentIDs []string) (Result, error) {
	group, err := svc.grpSvc.GetByID(ctx, classGroupID)
	if err != nil {
		return Result{}, err
	}

	pending := make(map[string]user.User, len(group.Members))
	for _, m := range group.Members {
		pending[m.ID] = m
	}

	facts := make([]Fact, 0, len(attendedIDs)+len(absentIDs))
	emit := func(ids []string, attended bool) error {
		for _, id := range ids {
			usr, err := svc.usrSvc.GetByID(ctx, id)
			if err != nil {
				return pkgerrors.Wrapf(err, "resolving submitted user %q", id)
			}
			delete(pending, usr.ID)
			facts = append(facts, Fact{Date: date, UserID: usr.ID, Attended: attended})
		}
		return nil
	}

	if err = emit(attendedIDs, true); err != nil {
		return Result{}, err
	}
	if err = emit(absentIDs, false); err != nil {
		return Result{}, err
	}

	if len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for _, m := range pending {
			names = append(names, m.FullName())
		}
		sort.Strings(names)
		return Result{}, core.NewValidationError(ErrIncompleteRoster, core.FieldError{
			Field: "absent_ids",
			Error: fmt.Sprintf("roster members unaccounted for: %s", strings.Join(names, ", ")),
		})
	}

	saved, err := svc.repo.SaveFacts(ctx, facts)
	if err != nil {
		return Result{}, err
	}
	return Result{Date: date, ClassGroupID: group.ID, Facts: saved}, nil
}

// MonthlyMatrix builds the dense per-class attendance view for one month.
// Rows are ordered by (first name, last name) ascending, ties keeping
// roster order; dates ascend. Output is deterministic for fixed store
// contents.
func (svc *Service) MonthlyMatrix(ctx context.Context, classGroupID string, year, month int) (Matrix, error) {
	group, err := svc.grpSvc.GetByID(ctx, classGroupID)
	if err != nil {
		return Matrix{}, err
	}

	members := make([]user.User, len(group.Members))
	copy(members, group.Members)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].FirstName != members[j].FirstName {
			return members[i].FirstName < members[j].FirstName
		}
		return members[i].LastName < members[j].LastName
	})

	dates, err := svc.repo.DistinctDatesForClassInMonth(ctx, classGroupID, year, month)
	if err != nil {
		return Matrix{}, err
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	rows := make([]Row, 0, len(members))
	for _, m := range members {
		marks := make([]Mark, len(dates))
		for i, date := range dates {
			fact, err := svc.repo.FindFact(ctx, m.ID, date)
			if err != nil {
				if pkgerrors.Cause(err) == ErrFactNotFound {
					marks[i] = MarkUnrecorded
					continue
				}
				return Matrix{}, err
			}
			marks[i] = markOf(fact.Attended)
		}
		rows = append(rows, Row{UserID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Marks: marks})
	}

	return Matrix{
		ClassGroupID: group.ID,
		Year:         year,
		Month:        month,
		Dates:        dates,
		Rows:         rows,
	}, nil
}

// TrackedYears lists the years the class group has any attendance recorded in.
func (svc *Service) TrackedYears(ctx context.Context, classGroupID string) ([]int, error) {
	years, err := svc.repo.DistinctYearsForClass(ctx, classGroupID)
	if err != nil {
		return nil, err
	}
	sort.Ints(years)
	return years, nil
}
