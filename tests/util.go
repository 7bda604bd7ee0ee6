package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/tmalu/clubhub/core"
	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/season"
	"github.com/tmalu/clubhub/core/user"
)

// NewConfig returns a Config suitable for tests.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	first, last, email string,
	roles []string,
	isActive bool,
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr, err := repo.CreateUser(context.Background(), user.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClassGroup(
	t *testing.T,
	repo classgroup.Repository,
	name string,
	members ...user.User,
) classgroup.ClassGroup {
	t.Helper()

	group, err := repo.CreateClassGroup(context.Background(), classgroup.ClassGroup{
		Name:      name,
		Members:   members,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClassGroup() failed: %v", err)
	}
	return group
}

func StartSeason(t *testing.T, repo season.Repository, adminID string) season.Season {
	t.Helper()

	s, err := repo.CreateSeason(context.Background(), season.Season{
		StartDate:   core.Today(),
		IsActive:    true,
		StartedByID: adminID,
	})
	if err != nil {
		t.Fatalf("StartSeason() failed: %v", err)
	}
	return s
}
