package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/domain/identity"
	"jobboard/internal/domain/job"
)

type Service interface {
	Apply(ctx context.Context, caller identity.Caller, jobID string, in Input) (Application, error)
	ListForJob(ctx context.Context, caller identity.Caller, jobID string) ([]Application, error)
	ListMine(ctx context.Context, caller identity.Caller) ([]Application, error)
	UpdateStatus(ctx context.Context, caller identity.Caller, applicationID string, newStatus Status) (Application, error)
	Withdraw(ctx context.Context, caller identity.Caller, jobID string) error
}

type service struct {
	uow    domain.UnitOfWork
	apps   Repository
	jobs   job.Repository
	events domain.EventBus
}

func NewService(
	uow domain.UnitOfWork,
	apps Repository,
	jobs job.Repository,
	events domain.EventBus,
) Service {
	return &service{
		uow:    uow,
		apps:   apps,
		jobs:   jobs,
		events: events,
	}
}

func (s *service) Apply(ctx context.Context, caller identity.Caller, jobID string, in Input) (Application, error) {
	// Validated before any mutation or lookup.
	if n := len([]rune(in.CoverLetter)); n < coverLetterMinLen || n > coverLetterMaxLen {
		return Application{}, domain.NewValidationError(fmt.Sprintf(
			"cover letter must be between %d and %d characters", coverLetterMinLen, coverLetterMaxLen))
	}
	if caller.Role == identity.RoleEmployer {
		return Application{}, domain.NewAuthorizationError("employers cannot apply for jobs")
	}

	var res Application
	var j job.Job

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		j, err = s.jobs.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		if !j.IsActive {
			return domain.NewJobClosedError("this job is no longer accepting applications")
		}

		exists, err := s.apps.ExistsByJobAndUser(ctx, jobID, caller.ID)
		if err != nil {
			return err
		}
		if exists {
			return domain.NewConflictError("you have already applied for this job")
		}

		a := Application{
			ID:          uuid.NewString(),
			JobID:       jobID,
			UserID:      caller.ID,
			Username:    caller.Username,
			UserEmail:   caller.Email,
			CoverLetter: in.CoverLetter,
			ResumeURL:   in.ResumeURL,
			Status:      StatusPending,
		}

		// Create still races with a concurrent apply for the same pair; the
		// unique constraint turns the loser into a CONFLICT.
		created, err := s.apps.Create(ctx, a)
		if err != nil {
			return err
		}
		res = created
		res.JobTitle = j.Title
		res.CompanyName = j.CompanyName
		return nil
	})
	if err != nil {
		return Application{}, err
	}

	if s.events != nil {
		s.events.Publish(ctx, domain.Event{
			Topic: domain.TopicApplicationSubmitted,
			Payload: domain.ApplicationSubmittedEvent{
				ApplicationID:     res.ID,
				JobID:             j.ID,
				JobTitle:          j.Title,
				CompanyName:       j.CompanyName,
				ApplicantUsername: caller.Username,
				ApplicantEmail:    caller.Email,
				EmployerEmail:     j.PostedByEmail,
			},
		})
	}

	return res, nil
}

func (s *service) ListForJob(ctx context.Context, caller identity.Caller, jobID string) ([]Application, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.PostedByUserID != caller.ID {
		return nil, domain.NewAuthorizationError("you can only view applications for your own jobs")
	}

	apps, err := s.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		apps[i].JobTitle = j.Title
		apps[i].CompanyName = j.CompanyName
	}
	return apps, nil
}

func (s *service) ListMine(ctx context.Context, caller identity.Caller) ([]Application, error) {
	apps, err := s.apps.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if j, err := s.jobs.GetByID(ctx, apps[i].JobID); err == nil {
			apps[i].JobTitle = j.Title
			apps[i].CompanyName = j.CompanyName
		}
	}
	return apps, nil
}

// UpdateStatus is the owner side of the state machine: any status is
// settable except WITHDRAWN, which belongs to the applicant alone, and a
// withdrawn application cannot be resurrected.
func (s *service) UpdateStatus(ctx context.Context, caller identity.Caller, applicationID string, newStatus Status) (Application, error) {
	if newStatus == StatusWithdrawn {
		return Application{}, domain.NewValidationError("only the applicant can withdraw an application")
	}

	var res Application
	var oldStatus Status

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.apps.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}

		j, err := s.jobs.GetByID(ctx, a.JobID)
		if err != nil {
			return err
		}
		if j.PostedByUserID != caller.ID {
			return domain.NewAuthorizationError("you can only update applications for your own jobs")
		}
		if a.Status == StatusWithdrawn {
			return domain.NewConflictError("application has been withdrawn")
		}

		oldStatus = a.Status
		updated, err := s.apps.UpdateStatus(ctx, applicationID, newStatus)
		if err != nil {
			return err
		}
		res = updated
		res.JobTitle = j.Title
		res.CompanyName = j.CompanyName
		return nil
	})
	if err != nil {
		return Application{}, err
	}

	if s.events != nil {
		s.events.Publish(ctx, domain.Event{
			Topic: domain.TopicApplicationStatusChanged,
			Payload: domain.ApplicationStatusChangedEvent{
				ApplicationID:     res.ID,
				JobID:             res.JobID,
				JobTitle:          res.JobTitle,
				CompanyName:       res.CompanyName,
				ApplicantUsername: res.Username,
				ApplicantEmail:    res.UserEmail,
				OldStatus:         string(oldStatus),
				NewStatus:         string(newStatus),
			},
		})
	}

	return res, nil
}

// Withdraw sets WITHDRAWN unconditionally, whatever the current status.
// Repeated withdrawals are harmless.
func (s *service) Withdraw(ctx context.Context, caller identity.Caller, jobID string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.apps.GetByJobAndUser(ctx, jobID, caller.ID)
		if err != nil {
			return err
		}
		_, err = s.apps.UpdateStatus(ctx, a.ID, StatusWithdrawn)
		return err
	})
}
