package job

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	SetInactive(ctx context.Context, id string) error
	ListActive(ctx context.Context, p PageRequest) (Page, error)
	Search(ctx context.Context, keyword string, p PageRequest) (Page, error)
	ListByCategory(ctx context.Context, c Category, p PageRequest) (Page, error)
	ListByType(ctx context.Context, t Type, p PageRequest) (Page, error)
	ListBySalaryRange(ctx context.Context, min, max decimal.Decimal, p PageRequest) (Page, error)
	ListByPoster(ctx context.Context, userID string) ([]Job, error)
}
