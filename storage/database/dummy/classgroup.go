package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/user"
)

type classGroupRepository struct {
	db    *classGroupTable
	users *userTable
}

var _ classgroup.Repository = (*classGroupRepository)(nil) // interface compliance check

func NewClassGroupRepository(db *DB) classgroup.Repository {
	return &classGroupRepository{db: db.classGroup, users: db.user}
}

func (repo *classGroupRepository) CreateClassGroup(_ context.Context, group classgroup.ClassGroup) (classgroup.ClassGroup, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	stored := group
	stored.Members = nil
	repo.db.table[group.ID] = &stored

	for _, m := range group.Members {
		repo.db.members[group.ID] = append(repo.db.members[group.ID], m.ID)
	}
	return group, nil
}

func (repo *classGroupRepository) GetClassGroupByID(_ context.Context, id string) (classgroup.ClassGroup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	group, ok := repo.db.table[id]
	if !ok {
		return classgroup.ClassGroup{}, classgroup.ErrNotFound
	}

	repo.users.RLock()
	defer repo.users.RUnlock()

	members := make([]user.User, 0, len(repo.db.members[id]))
	for _, uid := range repo.db.members[id] {
		if usr, ok := repo.users.table[uid]; ok {
			members = append(members, *usr)
		}
	}

	out := *group
	out.Members = members
	return out, nil
}

func (repo *classGroupRepository) AddMember(_ context.Context, groupID, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[groupID]; !ok {
		return classgroup.ErrNotFound
	}
	repo.db.members[groupID] = append(repo.db.members[groupID], userID)
	return nil
}
