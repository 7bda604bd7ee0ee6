package dummydb

import (
	"sync"

	"github.com/tmalu/clubhub/core/attendance"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
)

type (
	DB struct {
		user       *userTable
		classGroup *classGroupTable
		season     *seasonTable
		attendance *attendanceTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	classGroupTable struct {
		sync.RWMutex
		table   map[string]*classgroup.ClassGroup
		members map[string][]string // group id -> member ids, insertion order
	}

	seasonTable struct {
		sync.RWMutex
		table map[string]*season.Season
	}

	attendanceTable struct {
		sync.RWMutex
		table map[factKey]*attendance.Fact
	}

	factKey struct {
		userID string
		date   string
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		classGroup: &classGroupTable{table: make(map[string]*classgroup.ClassGroup), members: make(map[string][]string)},
		season:     &seasonTable{table: make(map[string]*season.Season)},
		attendance: &attendanceTable{table: make(map[factKey]*attendance.Fact)},
	}
	return db, nil
}
