package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type JobRequest struct {
	Title               string           `json:"title" binding:"required"`
	Description         string           `json:"description" binding:"required"`
	CompanyName         string           `json:"company_name" binding:"required"`
	Location            string           `json:"location" binding:"required"`
	JobType             string           `json:"job_type" binding:"required"`
	Category            string           `json:"category" binding:"required"`
	ExperienceLevel     string           `json:"experience_level" binding:"required"`
	SalaryMin           *decimal.Decimal `json:"salary_min"`
	SalaryMax           *decimal.Decimal `json:"salary_max"`
	SkillsRequired      string           `json:"skills_required"`
	ApplicationDeadline *time.Time       `json:"application_deadline"`
}

type Job struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	CompanyName         string           `json:"company_name"`
	Location            string           `json:"location"`
	JobType             string           `json:"job_type"`
	Category            string           `json:"category"`
	ExperienceLevel     string           `json:"experience_level"`
	SalaryMin           *decimal.Decimal `json:"salary_min,omitempty"`
	SalaryMax           *decimal.Decimal `json:"salary_max,omitempty"`
	SkillsRequired      string           `json:"skills_required,omitempty"`
	PostedByUserID      string           `json:"posted_by_user_id"`
	PostedByUsername    string           `json:"posted_by_username"`
	IsActive            bool             `json:"is_active"`
	ApplicationDeadline *time.Time       `json:"application_deadline,omitempty"`
	CreatedAt           *time.Time       `json:"created_at,omitempty"`
	UpdatedAt           *time.Time       `json:"updated_at,omitempty"`
	ApplicationCount    int64            `json:"application_count"`
}

type JobPage struct {
	Content       []Job `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}
