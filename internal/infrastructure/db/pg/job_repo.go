package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"jobboard/internal/domain"
	"jobboard/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Every job select joins the per-job application count so responses carry
// it without a second round trip.
const jobColumns = `
	j.job_id, j.title, j.description, j.company_name, j.location,
	j.job_type, j.category, j.experience_level,
	j.salary_min, j.salary_max, j.skills_required,
	j.posted_by_user_id, j.posted_by_username, j.posted_by_email,
	j.is_active, j.application_deadline, j.created_at, j.updated_at,
	COALESCE(a.cnt, 0)`

const jobFrom = `
	FROM jobs j
	LEFT JOIN (
		SELECT job_id, COUNT(*) AS cnt
		  FROM job_applications
		 GROUP BY job_id
	) a ON a.job_id = j.job_id`

var jobSortColumns = map[string]string{
	"created_at":   "j.created_at",
	"title":        "j.title",
	"company_name": "j.company_name",
	"salary_min":   "j.salary_min",
}

func jobOrderBy(p job.PageRequest) string {
	col, ok := jobSortColumns[p.SortBy]
	if !ok {
		col = "j.created_at"
	}
	dir := "DESC"
	if p.SortDir == job.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, j.job_id", col, dir)
}

func scanJob(row interface{ Scan(...any) error }) (job.Job, error) {
	var j job.Job
	var jobType, category, level string
	var deadline, createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.CompanyName, &j.Location,
		&jobType, &category, &level,
		&j.SalaryMin, &j.SalaryMax, &j.SkillsRequired,
		&j.PostedByUserID, &j.PostedByUsername, &j.PostedByEmail,
		&j.IsActive, &deadline, &createdAt, &updatedAt,
		&j.ApplicationCount,
	)
	if err != nil {
		return job.Job{}, err
	}

	j.JobType = job.Type(jobType)
	j.Category = job.Category(category)
	j.ExperienceLevel = job.ExperienceLevel(level)
	if deadline.Valid {
		t := deadline.Time
		j.ApplicationDeadline = &t
	}
	if createdAt.Valid {
		t := createdAt.Time
		j.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		j.UpdatedAt = &t
	}
	return j, nil
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	var createdAt, updatedAt sql.NullTime

	err := queryRow(ctx, r.db,
		`INSERT INTO jobs (
			job_id, title, description, company_name, location,
			job_type, category, experience_level,
			salary_min, salary_max, skills_required,
			posted_by_user_id, posted_by_username, posted_by_email,
			is_active, application_deadline
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at, updated_at`,
		j.ID, j.Title, j.Description, j.CompanyName, j.Location,
		string(j.JobType), string(j.Category), string(j.ExperienceLevel),
		j.SalaryMin, j.SalaryMax, j.SkillsRequired,
		j.PostedByUserID, j.PostedByUsername, j.PostedByEmail,
		j.IsActive, j.ApplicationDeadline,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return job.Job{}, err
	}

	if createdAt.Valid {
		t := createdAt.Time
		j.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		j.UpdatedAt = &t
	}
	return j, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (job.Job, error) {
	j, err := scanJob(queryRow(ctx, r.db,
		`SELECT`+jobColumns+jobFrom+` WHERE j.job_id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return job.Job{}, domain.NewNotFoundError("job not found with ID: " + id)
	}
	if err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (r *JobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	var createdAt, updatedAt sql.NullTime

	err := queryRow(ctx, r.db,
		`UPDATE jobs
		    SET title = $2,
		        description = $3,
		        company_name = $4,
		        location = $5,
		        job_type = $6,
		        category = $7,
		        experience_level = $8,
		        salary_min = $9,
		        salary_max = $10,
		        skills_required = $11,
		        application_deadline = $12,
		        updated_at = NOW()
		  WHERE job_id = $1
		  RETURNING created_at, updated_at`,
		j.ID, j.Title, j.Description, j.CompanyName, j.Location,
		string(j.JobType), string(j.Category), string(j.ExperienceLevel),
		j.SalaryMin, j.SalaryMax, j.SkillsRequired, j.ApplicationDeadline,
	).Scan(&createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return job.Job{}, domain.NewNotFoundError("job not found with ID: " + j.ID)
	}
	if err != nil {
		return job.Job{}, err
	}

	if createdAt.Valid {
		t := createdAt.Time
		j.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		j.UpdatedAt = &t
	}
	return j, nil
}

// SetInactive is idempotent: re-deactivating an inactive job is a no-op
// update, never an error.
func (r *JobRepository) SetInactive(ctx context.Context, id string) error {
	res, err := exec(ctx, r.db,
		`UPDATE jobs
		    SET is_active = FALSE,
		        updated_at = NOW()
		  WHERE job_id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError("job not found with ID: " + id)
	}
	return nil
}

func (r *JobRepository) ListActive(ctx context.Context, p job.PageRequest) (job.Page, error) {
	return r.page(ctx, p, `WHERE j.is_active = TRUE`)
}

func (r *JobRepository) Search(ctx context.Context, keyword string, p job.PageRequest) (job.Page, error) {
	pattern := "%" + keyword + "%"
	return r.page(ctx, p,
		`WHERE j.is_active = TRUE
		   AND (j.title ILIKE $1 OR j.company_name ILIKE $1 OR j.location ILIKE $1)`,
		pattern,
	)
}

func (r *JobRepository) ListByCategory(ctx context.Context, c job.Category, p job.PageRequest) (job.Page, error) {
	return r.page(ctx, p, `WHERE j.is_active = TRUE AND j.category = $1`, string(c))
}

func (r *JobRepository) ListByType(ctx context.Context, t job.Type, p job.PageRequest) (job.Page, error) {
	return r.page(ctx, p, `WHERE j.is_active = TRUE AND j.job_type = $1`, string(t))
}

func (r *JobRepository) ListBySalaryRange(ctx context.Context, min, max decimal.Decimal, p job.PageRequest) (job.Page, error) {
	return r.page(ctx, p,
		`WHERE j.is_active = TRUE AND j.salary_min >= $1 AND j.salary_max <= $2`,
		min, max,
	)
}

// page runs the shared count+select pair. The WHERE clause numbers its
// placeholders from $1; LIMIT/OFFSET take the two slots after the filter
// args.
func (r *JobRepository) page(ctx context.Context, p job.PageRequest, where string, filterArgs ...any) (job.Page, error) {
	var total int64
	if err := queryRow(ctx, r.db,
		`SELECT COUNT(*) FROM jobs j `+where,
		filterArgs...,
	).Scan(&total); err != nil {
		return job.Page{}, err
	}

	limitClause := fmt.Sprintf("LIMIT $%d OFFSET $%d", len(filterArgs)+1, len(filterArgs)+2)
	args := append(append([]any{}, filterArgs...), p.Size, p.Offset())
	rows, err := query(ctx, r.db,
		`SELECT`+jobColumns+jobFrom+` `+where+` `+jobOrderBy(p)+` `+limitClause,
		args...,
	)
	if err != nil {
		return job.Page{}, err
	}
	defer rows.Close()

	items := make([]job.Job, 0, p.Size)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return job.Page{}, err
		}
		items = append(items, j)
	}
	if err := rows.Err(); err != nil {
		return job.Page{}, err
	}

	return job.Page{
		Items:         items,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
	}, nil
}

func (r *JobRepository) ListByPoster(ctx context.Context, userID string) ([]job.Job, error) {
	rows, err := query(ctx, r.db,
		`SELECT`+jobColumns+jobFrom+`
		  WHERE j.posted_by_user_id = $1
		  ORDER BY j.created_at DESC, j.job_id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, j)
	}
	return res, rows.Err()
}
