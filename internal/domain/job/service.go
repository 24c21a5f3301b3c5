package job

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"jobboard/internal/domain"
	"jobboard/internal/domain/identity"
)

type Service interface {
	Create(ctx context.Context, caller identity.Caller, in Input) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	ListActive(ctx context.Context, p PageRequest) (Page, error)
	Search(ctx context.Context, keyword string, p PageRequest) (Page, error)
	ListByCategory(ctx context.Context, c Category, p PageRequest) (Page, error)
	ListByType(ctx context.Context, t Type, p PageRequest) (Page, error)
	ListBySalaryRange(ctx context.Context, min, max decimal.Decimal, p PageRequest) (Page, error)
	ListMine(ctx context.Context, caller identity.Caller) ([]Job, error)
	Update(ctx context.Context, caller identity.Caller, id string, in Input) (Job, error)
	Delete(ctx context.Context, caller identity.Caller, id string) error
}

type service struct {
	uow           domain.UnitOfWork
	jobs          Repository
	subscriptions identity.Subscriptions
	events        domain.EventBus
	log           *zap.Logger
}

func NewService(
	uow domain.UnitOfWork,
	jobs Repository,
	subscriptions identity.Subscriptions,
	events domain.EventBus,
	log *zap.Logger,
) Service {
	return &service{
		uow:           uow,
		jobs:          jobs,
		subscriptions: subscriptions,
		events:        events,
		log:           log,
	}
}

func validateSalaryRange(in Input) error {
	if in.SalaryMin.Valid && in.SalaryMax.Valid &&
		in.SalaryMin.Decimal.GreaterThan(in.SalaryMax.Decimal) {
		return domain.NewValidationError("minimum salary cannot be greater than maximum salary")
	}
	return nil
}

func (s *service) Create(ctx context.Context, caller identity.Caller, in Input) (Job, error) {
	if caller.Role != identity.RoleEmployer {
		return Job{}, domain.NewAuthorizationError("only employers can create jobs")
	}
	if err := validateSalaryRange(in); err != nil {
		return Job{}, err
	}

	var res Job
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		j := Job{
			ID:                  uuid.NewString(),
			Title:               in.Title,
			Description:         in.Description,
			CompanyName:         in.CompanyName,
			Location:            in.Location,
			JobType:             in.JobType,
			Category:            in.Category,
			ExperienceLevel:     in.ExperienceLevel,
			SalaryMin:           in.SalaryMin,
			SalaryMax:           in.SalaryMax,
			SkillsRequired:      in.SkillsRequired,
			PostedByUserID:      caller.ID,
			PostedByUsername:    caller.Username,
			PostedByEmail:       caller.Email,
			IsActive:            true,
			ApplicationDeadline: in.ApplicationDeadline,
		}

		created, err := s.jobs.Create(ctx, j)
		if err != nil {
			return err
		}
		res = created
		return nil
	})
	if err != nil {
		return Job{}, err
	}

	// The write above is the source of truth. Recipient resolution and the
	// publish are best-effort side effects that must never fail the request.
	recipients := s.resolveRecipients(ctx, res.Category)

	if s.events != nil {
		s.events.Publish(ctx, domain.Event{
			Topic: domain.TopicJobPosted,
			Payload: domain.JobPostedEvent{
				JobID:            res.ID,
				Title:            res.Title,
				CompanyName:      res.CompanyName,
				Location:         res.Location,
				Category:         string(res.Category),
				SalaryMin:        decimalPtr(res.SalaryMin),
				SalaryMax:        decimalPtr(res.SalaryMax),
				PostedByUsername: res.PostedByUsername,
				PostedByEmail:    res.PostedByEmail,
				RecipientEmails:  recipients,
			},
		})
	}

	return res, nil
}

// resolveRecipients degrades gracefully: if the preferences endpoint is
// unreachable the event goes out with no recipients and the consumer no-ops.
func (s *service) resolveRecipients(ctx context.Context, c Category) []string {
	if s.subscriptions == nil {
		return nil
	}

	subs, err := s.subscriptions.SubscribedUsers(ctx, string(c))
	if err != nil {
		s.log.Warn("subscription lookup failed, publishing without recipients",
			zap.String("category", string(c)),
			zap.Error(err),
		)
		return nil
	}

	emails := make([]string, 0, len(subs))
	for _, sub := range subs {
		if sub.Email != "" {
			emails = append(emails, sub.Email)
		}
	}
	return emails
}

func (s *service) Get(ctx context.Context, id string) (Job, error) {
	return s.jobs.GetByID(ctx, id)
}

func (s *service) ListActive(ctx context.Context, p PageRequest) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return s.jobs.ListActive(ctx, p)
}

func (s *service) Search(ctx context.Context, keyword string, p PageRequest) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return s.jobs.Search(ctx, keyword, p)
}

func (s *service) ListByCategory(ctx context.Context, c Category, p PageRequest) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return s.jobs.ListByCategory(ctx, c, p)
}

func (s *service) ListByType(ctx context.Context, t Type, p PageRequest) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return s.jobs.ListByType(ctx, t, p)
}

func (s *service) ListBySalaryRange(ctx context.Context, min, max decimal.Decimal, p PageRequest) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	if min.GreaterThan(max) {
		return Page{}, domain.NewValidationError("minSalary cannot be greater than maxSalary")
	}
	return s.jobs.ListBySalaryRange(ctx, min, max, p)
}

func (s *service) ListMine(ctx context.Context, caller identity.Caller) ([]Job, error) {
	if caller.Role != identity.RoleEmployer {
		return nil, domain.NewAuthorizationError("only employers can view their jobs")
	}
	return s.jobs.ListByPoster(ctx, caller.ID)
}

func (s *service) Update(ctx context.Context, caller identity.Caller, id string, in Input) (Job, error) {
	if err := validateSalaryRange(in); err != nil {
		return Job{}, err
	}

	var res Job
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.jobs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.PostedByUserID != caller.ID {
			return domain.NewAuthorizationError("you can only update your own jobs")
		}

		current.Title = in.Title
		current.Description = in.Description
		current.CompanyName = in.CompanyName
		current.Location = in.Location
		current.JobType = in.JobType
		current.Category = in.Category
		current.ExperienceLevel = in.ExperienceLevel
		current.SalaryMin = in.SalaryMin
		current.SalaryMax = in.SalaryMax
		current.SkillsRequired = in.SkillsRequired
		current.ApplicationDeadline = in.ApplicationDeadline

		updated, err := s.jobs.Update(ctx, current)
		if err != nil {
			return err
		}
		res = updated
		return nil
	})

	return res, err
}

// Delete is the soft-delete transition and is idempotent: deleting an
// already-inactive job succeeds and changes nothing.
func (s *service) Delete(ctx context.Context, caller identity.Caller, id string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.jobs.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.PostedByUserID != caller.ID {
			return domain.NewAuthorizationError("you can only delete your own jobs")
		}
		return s.jobs.SetInactive(ctx, id)
	})
}

func decimalPtr(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
