package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmalu/clubhub/core/classgroup"
	"github.com/tmalu/clubhub/core/user"
)

type dbClassGroup struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type classGroupRepository struct {
	db *sqlx.DB
}

var _ classgroup.Repository = (*classGroupRepository)(nil) // interface compliance check

func NewClassGroupRepository(db *sqlx.DB) *classGroupRepository {
	return &classGroupRepository{db: db}
}

func (repo classGroupRepository) CreateClassGroup(ctx context.Context, group classgroup.ClassGroup) (classgroup.ClassGroup, error) {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	const q = `INSERT INTO class_group (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, q, group.ID, group.Name, group.CreatedAt.UTC()); err != nil {
		return classgroup.ClassGroup{}, errors.Wrap(err, "inserting class group")
	}
	return group, nil
}

func (repo classGroupRepository) GetClassGroupByID(ctx context.Context, id string) (classgroup.ClassGroup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return classgroup.ClassGroup{}, classgroup.ErrNotFound
	}

	var g dbClassGroup
	err := repo.db.GetContext(ctx, &g, `SELECT * FROM class_group WHERE id = $1`, id)
	if err != nil {
		return classgroup.ClassGroup{}, trapNoRowsErr(err, classgroup.ErrNotFound, "finding class group by ID")
	}

	// roster in insertion order
	const membersQ = `
		SELECT u.*
		FROM club_user u
		JOIN class_group_member m ON m.user_id = u.id
		WHERE m.class_group_id = $1
		ORDER BY m.position`
	var dbUsers []dbUser
	if err = repo.db.SelectContext(ctx, &dbUsers, membersQ, id); err != nil {
		return classgroup.ClassGroup{}, errors.Wrap(err, "querying class group members")
	}

	members := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		members = append(members, u.toCore())
	}

	return classgroup.ClassGroup{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt.UTC(),
	}, nil
}

func (repo classGroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	const q = `
		INSERT INTO class_group_member (class_group_id, user_id, position)
		VALUES ($1, $2, (
			SELECT COALESCE(MAX(position) + 1, 0) FROM class_group_member WHERE class_group_id = $1
		))`
	if _, err := repo.db.ExecContext(ctx, q, groupID, userID); err != nil {
		return errors.Wrap(err, "adding class group member")
	}
	return nil
}
