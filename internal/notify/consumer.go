// Package notify consumes domain events and turns them into email
// deliveries. It never writes back to the job store: a delivery failure can
// delay or duplicate a notification, never a business transaction.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"jobboard/internal/domain"
	"jobboard/internal/infrastructure/broker"
)

// One durable queue per routing key, each with one logical consumer group.
const (
	QueueJobPosted                = "job.posted.queue"
	QueueApplicationSubmitted     = "application.submitted.queue"
	QueueApplicationStatusChanged = "application.status.changed.queue"
)

type Consumer struct {
	mailer          Mailer
	deliveryTimeout time.Duration
	log             *zap.Logger
}

func NewConsumer(mailer Mailer, deliveryTimeout time.Duration, log *zap.Logger) *Consumer {
	if deliveryTimeout <= 0 {
		deliveryTimeout = 5 * time.Second
	}
	return &Consumer{
		mailer:          mailer,
		deliveryTimeout: deliveryTimeout,
		log:             log,
	}
}

// Bind declares the three queues and starts competing consumers on each.
func (c *Consumer) Bind(ex *broker.Exchange, workers int) error {
	ex.Declare(QueueJobPosted, domain.TopicJobPosted)
	ex.Declare(QueueApplicationSubmitted, domain.TopicApplicationSubmitted)
	ex.Declare(QueueApplicationStatusChanged, domain.TopicApplicationStatusChanged)

	if err := ex.Consume(QueueJobPosted, workers, c.HandleJobPosted); err != nil {
		return err
	}
	if err := ex.Consume(QueueApplicationSubmitted, workers, c.HandleApplicationSubmitted); err != nil {
		return err
	}
	return ex.Consume(QueueApplicationStatusChanged, workers, c.HandleApplicationStatusChanged)
}

// HandleJobPosted fans one event out to its recipient list. Per-recipient
// failures are counted, never abort the loop, and never requeue the event:
// the summary is the record of partial success.
func (c *Consumer) HandleJobPosted(ctx context.Context, m broker.Message) error {
	var ev domain.JobPostedEvent
	if err := json.Unmarshal(m.Body, &ev); err != nil {
		c.log.Error("malformed job.posted payload, dropping",
			zap.String("message_id", m.ID), zap.Error(err))
		return nil
	}

	if len(ev.RecipientEmails) == 0 {
		c.log.Info("job.posted event with no recipients",
			zap.String("job_id", ev.JobID))
		return nil
	}

	subject := jobPostedSubject(ev.Title)
	body := jobPostedBody(ev.Title, ev.CompanyName, ev.Location)

	var success, failure int
	for _, to := range ev.RecipientEmails {
		if err := c.deliver(ctx, to, subject, body); err != nil {
			failure++
			c.log.Warn("job.posted delivery failed",
				zap.String("job_id", ev.JobID),
				zap.String("recipient", to),
				zap.Error(err),
			)
			continue
		}
		success++
	}

	c.log.Info("job.posted fan-out complete",
		zap.String("job_id", ev.JobID),
		zap.Int("total", len(ev.RecipientEmails)),
		zap.Int("success", success),
		zap.Int("failure", failure),
	)
	return nil
}

// HandleApplicationSubmitted sends the applicant confirmation and the
// employer alert. Either failure requeues the whole event, so both mails
// may be re-attempted; duplicate notifications on redelivery are accepted.
func (c *Consumer) HandleApplicationSubmitted(ctx context.Context, m broker.Message) error {
	var ev domain.ApplicationSubmittedEvent
	if err := json.Unmarshal(m.Body, &ev); err != nil {
		c.log.Error("malformed application.submitted payload, dropping",
			zap.String("message_id", m.ID), zap.Error(err))
		return nil
	}

	if err := c.deliver(ctx, ev.ApplicantEmail,
		"Application Submitted Successfully",
		applicationSubmittedBody(ev.JobTitle, ev.CompanyName),
	); err != nil {
		return err
	}

	if err := c.deliver(ctx, ev.EmployerEmail,
		"New Application Received for "+ev.JobTitle,
		applicationReceivedBody(ev.JobTitle, ev.ApplicantUsername),
	); err != nil {
		return err
	}

	c.log.Info("application.submitted notifications sent",
		zap.String("application_id", ev.ApplicationID))
	return nil
}

func (c *Consumer) HandleApplicationStatusChanged(ctx context.Context, m broker.Message) error {
	var ev domain.ApplicationStatusChangedEvent
	if err := json.Unmarshal(m.Body, &ev); err != nil {
		c.log.Error("malformed application.status.changed payload, dropping",
			zap.String("message_id", m.ID), zap.Error(err))
		return nil
	}

	if err := c.deliver(ctx, ev.ApplicantEmail,
		"Application Status Update: "+ev.JobTitle,
		statusChangedBody(ev.JobTitle, ev.CompanyName, ev.OldStatus, ev.NewStatus),
	); err != nil {
		return err
	}

	c.log.Info("application.status.changed notification sent",
		zap.String("application_id", ev.ApplicationID),
		zap.String("old_status", ev.OldStatus),
		zap.String("new_status", ev.NewStatus),
	)
	return nil
}

// deliver bounds one delivery attempt so a slow recipient cannot stall the
// rest of a fan-out.
func (c *Consumer) deliver(ctx context.Context, to, subject, body string) error {
	deliveryCtx, cancel := context.WithTimeout(ctx, c.deliveryTimeout)
	defer cancel()
	return c.mailer.Send(deliveryCtx, to, subject, body)
}
