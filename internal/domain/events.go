package domain

import "context"

// Routing keys on the job board exchange. Each key is bound to one durable
// queue with one logical consumer group.
const (
	TopicJobPosted                = "job.posted"
	TopicApplicationSubmitted     = "application.submitted"
	TopicApplicationStatusChanged = "application.status.changed"
)

// Event is an immutable fact emitted after a successful state mutation.
// Payload is one of the typed event structs below and is JSON-serialized
// for transit.
type Event struct {
	Topic   string
	Payload any
}

type EventBus interface {
	Publish(ctx context.Context, e Event)
}

type JobPostedEvent struct {
	JobID            string   `json:"jobId"`
	Title            string   `json:"title"`
	CompanyName      string   `json:"companyName"`
	Location         string   `json:"location"`
	Category         string   `json:"category"`
	SalaryMin        *string  `json:"salaryMin,omitempty"`
	SalaryMax        *string  `json:"salaryMax,omitempty"`
	PostedByUsername string   `json:"postedByUsername"`
	PostedByEmail    string   `json:"postedByEmail"`
	RecipientEmails  []string `json:"recipientEmails"`
}

type ApplicationSubmittedEvent struct {
	ApplicationID     string `json:"applicationId"`
	JobID             string `json:"jobId"`
	JobTitle          string `json:"jobTitle"`
	CompanyName       string `json:"companyName"`
	ApplicantUsername string `json:"applicantUsername"`
	ApplicantEmail    string `json:"applicantEmail"`
	EmployerEmail     string `json:"employerEmail"`
}

type ApplicationStatusChangedEvent struct {
	ApplicationID     string `json:"applicationId"`
	JobID             string `json:"jobId"`
	JobTitle          string `json:"jobTitle"`
	CompanyName       string `json:"companyName"`
	ApplicantUsername string `json:"applicantUsername"`
	ApplicantEmail    string `json:"applicantEmail"`
	OldStatus         string `json:"oldStatus"`
	NewStatus         string `json:"newStatus"`
}
