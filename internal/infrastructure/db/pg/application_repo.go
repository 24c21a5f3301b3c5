package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/domain"
	"jobboard/internal/domain/application"
)

const uniqueViolation = "23505"

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `
	application_id, job_id, user_id, username, user_email,
	cover_letter, resume_url, status, applied_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (application.Application, error) {
	var a application.Application
	var status string
	var resumeURL sql.NullString
	var appliedAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.JobID, &a.UserID, &a.Username, &a.UserEmail,
		&a.CoverLetter, &resumeURL, &status, &appliedAt, &updatedAt,
	)
	if err != nil {
		return application.Application{}, err
	}

	a.Status = application.Status(status)
	a.ResumeURL = resumeURL.String
	if appliedAt.Valid {
		t := appliedAt.Time
		a.AppliedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		a.UpdatedAt = &t
	}
	return a, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) (application.Application, error) {
	var appliedAt, updatedAt sql.NullTime

	err := queryRow(ctx, r.db,
		`INSERT INTO job_applications (
			application_id, job_id, user_id, username, user_email,
			cover_letter, resume_url, status
		 ) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		 RETURNING applied_at, updated_at`,
		a.ID, a.JobID, a.UserID, a.Username, a.UserEmail,
		a.CoverLetter, a.ResumeURL, string(a.Status),
	).Scan(&appliedAt, &updatedAt)

	// The (job_id, user_id) unique index is the authority under concurrent
	// submissions; a loser of the race surfaces as CONFLICT, same as the
	// pre-check.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return application.Application{}, domain.NewConflictError("you have already applied for this job")
	}
	if err != nil {
		return application.Application{}, err
	}

	if appliedAt.Valid {
		t := appliedAt.Time
		a.AppliedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		a.UpdatedAt = &t
	}
	return a, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (application.Application, error) {
	a, err := scanApplication(queryRow(ctx, r.db,
		`SELECT`+applicationColumns+`
		   FROM job_applications
		  WHERE application_id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return application.Application{}, domain.NewNotFoundError("application not found with ID: " + id)
	}
	if err != nil {
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) GetByJobAndUser(ctx context.Context, jobID, userID string) (application.Application, error) {
	a, err := scanApplication(queryRow(ctx, r.db,
		`SELECT`+applicationColumns+`
		   FROM job_applications
		  WHERE job_id = $1 AND user_id = $2`,
		jobID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return application.Application{}, domain.NewNotFoundError("application not found for this job")
	}
	if err != nil {
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) ExistsByJobAndUser(ctx context.Context, jobID, userID string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.db,
		`SELECT EXISTS(
			SELECT 1
			  FROM job_applications
			 WHERE job_id = $1 AND user_id = $2
		)`,
		jobID, userID,
	).Scan(&exists)

	return exists, err
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]application.Application, error) {
	return r.list(ctx,
		`SELECT`+applicationColumns+`
		   FROM job_applications
		  WHERE job_id = $1
		  ORDER BY applied_at, application_id`,
		jobID,
	)
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID string) ([]application.Application, error) {
	return r.list(ctx,
		`SELECT`+applicationColumns+`
		   FROM job_applications
		  WHERE user_id = $1
		  ORDER BY applied_at DESC, application_id`,
		userID,
	)
}

func (r *ApplicationRepository) list(ctx context.Context, q string, args ...any) ([]application.Application, error) {
	rows, err := query(ctx, r.db, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status application.Status) (application.Application, error) {
	a, err := scanApplication(queryRow(ctx, r.db,
		`UPDATE job_applications
		    SET status = $2,
		        updated_at = NOW()
		  WHERE application_id = $1
		  RETURNING`+applicationColumns,
		id, string(status),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return application.Application{}, domain.NewNotFoundError("application not found with ID: " + id)
	}
	if err != nil {
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) CountByJob(ctx context.Context, jobID string) (int64, error) {
	var n int64
	err := queryRow(ctx, r.db,
		`SELECT COUNT(*) FROM job_applications WHERE job_id = $1`,
		jobID,
	).Scan(&n)
	return n, err
}
