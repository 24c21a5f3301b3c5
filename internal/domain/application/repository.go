package application

import "context"

type Repository interface {
	// Create inserts a new application. Callers must translate a duplicate
	// (job_id, user_id) into a CONFLICT DomainError; the store-level unique
	// constraint is the authority under concurrent submissions.
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)
	GetByJobAndUser(ctx context.Context, jobID, userID string) (Application, error)
	ExistsByJobAndUser(ctx context.Context, jobID, userID string) (bool, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Application, error)
	CountByJob(ctx context.Context, jobID string) (int64, error)
}
