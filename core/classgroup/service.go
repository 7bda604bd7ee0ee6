package classgroup

import (
	"context"
	"errors"
	"time"

	"github.com/tmalu/clubhub/core"
)

var ErrNotFound = errors.New("class group not found")

type (
	Repository interface {
		CreateClassGroup(ctx context.Context, group ClassGroup) (ClassGroup, error)
		// GetClassGroupByID returns the group with its full member roster.
		GetClassGroupByID(ctx context.Context, id string) (ClassGroup, error)
		AddMember(ctx context.Context, groupID, userID string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ng NewClassGroup) (ClassGroup, error)
		GetByID(ctx context.Context, id string) (ClassGroup, error)
		AddMember(ctx context.Context, groupID, userID string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewClassGroup contains information needed to create a new ClassGroup.
type NewClassGroup struct {
	Name string `json:"name" validate:"required"`
}

func (svc *Service) Create(ctx context.Context, ng NewClassGroup) (ClassGroup, error) {
	group := ClassGroup{
		Name:      core.CleanString(ng.Name),
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateClassGroup(ctx, group)
}

func (svc *Service) GetByID(ctx context.Context, id string) (ClassGroup, error) {
	return svc.repo.GetClassGroupByID(ctx, id)
}

func (svc *Service) AddMember(ctx context.Context, groupID, userID string) error {
	return svc.repo.AddMember(ctx, groupID, userID)
}
