package dto

import "time"

type JobApplicationRequest struct {
	CoverLetter string `json:"cover_letter" binding:"required"`
	ResumeURL   string `json:"resume_url"`
}

type JobApplication struct {
	ID          string     `json:"id"`
	JobID       string     `json:"job_id"`
	JobTitle    string     `json:"job_title"`
	CompanyName string     `json:"company_name"`
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	UserEmail   string     `json:"user_email"`
	CoverLetter string     `json:"cover_letter"`
	ResumeURL   string     `json:"resume_url,omitempty"`
	Status      string     `json:"status"`
	AppliedAt   *time.Time `json:"applied_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
