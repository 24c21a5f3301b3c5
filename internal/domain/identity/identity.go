// Package identity describes the auth-service collaborator. The job board
// never stores credentials itself: a bearer token is resolved to a Caller
// once per request, and the resulting identity is passed explicitly into
// every service call.
package identity

import "context"

type Role string

const (
	RoleEmployer  Role = "EMPLOYER"
	RoleJobSeeker Role = "JOB_SEEKER"
)

// Caller is the resolved identity behind a bearer token. Fields copied into
// jobs and applications are snapshots taken at write time, not live
// references.
type Caller struct {
	ID       string
	Username string
	Email    string
	Role     Role
}

// Subscriber is a user subscribed to job postings in some category.
type Subscriber struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Verifier resolves a bearer credential to the caller behind it.
type Verifier interface {
	CurrentUser(ctx context.Context, token string) (Caller, error)
}

// Subscriptions lists users who opted into notifications for a job category.
type Subscriptions interface {
	SubscribedUsers(ctx context.Context, category string) ([]Subscriber, error)
}
