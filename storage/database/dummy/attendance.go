package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/attendance"
)

type attendanceRepository struct {
	db     *attendanceTable
	groups *classGroupTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance, groups: db.classGroup}
}

func (repo *attendanceRepository) FindFact(_ context.Context, userID string, date core.Date) (attendance.Fact, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.table[factKey{userID: userID, date: date.String()}]; ok {
		return *f, nil
	}
	return attendance.Fact{}, attendance.ErrFactNotFound
}

func (repo *attendanceRepository) SaveFacts(_ context.Context, facts []attendance.Fact) ([]attendance.Fact, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// all-or-nothing: check every key before writing any
	seen := make(map[factKey]bool, len(facts))
	for _, f := range facts {
		key := factKey{userID: f.UserID, date: f.Date.String()}
		if _, ok := repo.db.table[key]; ok || seen[key] {
			return nil, attendance.ErrFactExists
		}
		seen[key] = true
	}

	saved := make([]attendance.Fact, 0, len(facts))
	for _, f := range facts {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		stored := f
		repo.db.table[factKey{userID: f.UserID, date: f.Date.String()}] = &stored
		saved = append(saved, f)
	}
	return saved, nil
}

func (repo *attendanceRepository) DistinctDatesForClassInMonth(_ context.Context, classGroupID string, year, month int) ([]core.Date, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.memberSet(classGroupID)

	seen := make(map[string]core.Date)
	for _, f := range repo.db.table {
		if !members[f.UserID] {
			continue
		}
		if f.Date.Year() != year || int(f.Date.Month()) != month {
			continue
		}
		seen[f.Date.String()] = f.Date
	}

	dates := make([]core.Date, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })
	return dates, nil
}

func (repo *attendanceRepository) DistinctYearsForClass(_ context.Context, classGroupID string) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := repo.memberSet(classGroupID)

	seen := make(map[int]bool)
	for _, f := range repo.db.table {
		if members[f.UserID] {
			seen[f.Date.Year()] = true
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func (repo *attendanceRepository) DeleteAllFacts(_ context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[factKey]*attendance.Fact)
	return nil
}

func (repo *attendanceRepository) memberSet(classGroupID string) map[string]bool {
	repo.groups.RLock()
	defer repo.groups.RUnlock()

	members := make(map[string]bool, len(repo.groups.members[classGroupID]))
	for _, id := range repo.groups.members[classGroupID] {
		members[id] = true
	}
	return members
}
