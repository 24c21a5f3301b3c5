package application

import (
	"time"

	"jobboard/internal/domain"
)

type Status string

const (
	StatusPending     Status = "PENDING"
	StatusReviewed    Status = "REVIEWED"
	StatusShortlisted Status = "SHORTLISTED"
	StatusInterviewed Status = "INTERVIEWED"
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
	StatusWithdrawn   Status = "WITHDRAWN"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusReviewed, StatusShortlisted, StatusInterviewed,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return Status(s), nil
	}
	return "", domain.NewValidationError("unknown application status: " + s)
}

// Application is one user's submission against one job. At most one
// application exists per (JobID, UserID) pair; the store enforces this.
// User* fields are a snapshot of the applicant's identity at submission
// time.
type Application struct {
	ID          string
	JobID       string
	UserID      string
	Username    string
	UserEmail   string
	CoverLetter string
	ResumeURL   string
	Status      Status
	AppliedAt   *time.Time
	UpdatedAt   *time.Time

	// Denormalized for responses; populated from the job when it resolves.
	JobTitle    string
	CompanyName string
}

type Input struct {
	CoverLetter string
	ResumeURL   string
}

const (
	coverLetterMinLen = 50
	coverLetterMaxLen = 2000
)
