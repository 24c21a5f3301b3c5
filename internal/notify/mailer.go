package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const fromEmail = "noreply@jobboard.com"

// Mailer is the delivery sink: fire-and-forget delivery of one message to
// one address. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer logs deliveries instead of sending them, keeping the service
// runnable without SMTP infrastructure.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("email delivered",
		zap.String("from", fromEmail),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

func jobPostedSubject(title string) string {
	return "New Job Posted: " + title
}

func jobPostedBody(title, company, location string) string {
	return fmt.Sprintf(
		"A new job matching your interests has been posted.\n\nPosition: %s\nCompany: %s\nLocation: %s\n\nLog in to view the full posting and apply.",
		title, company, location)
}

func applicationSubmittedBody(title, company string) string {
	return fmt.Sprintf(
		"Your application for %s at %s has been submitted successfully.\n\nThe employer will review it and you will be notified of any status change.",
		title, company)
}

func applicationReceivedBody(title, applicant string) string {
	return fmt.Sprintf(
		"You have received a new application for %s.\n\nApplicant: %s\n\nLog in to review the application.",
		title, applicant)
}

func statusChangedBody(title, company, oldStatus, newStatus string) string {
	return fmt.Sprintf(
		"The status of your application for %s at %s has changed.\n\nPrevious status: %s\nNew status: %s",
		title, company, oldStatus, newStatus)
}
