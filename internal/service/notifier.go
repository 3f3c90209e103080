package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/pkg/mailer"
)

// Notifier sends transactional email to students. Every method is best
// effort: failures are logged by the implementation and never propagated,
// so a review or signup transaction cannot be rolled back by mail issues.
type Notifier interface {
	ProjectReviewed(studentEmail, studentName, projectTitle, status, feedback string, grade *int)
	Welcome(email, name, role, temporaryPassword string)
}

type mailNotifier struct {
	client  mailer.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewMailNotifier builds a Notifier on top of the mail client. Sends run
// on their own goroutine with a bounded timeout, detached from the
// request that triggered them.
func NewMailNotifier(client mailer.Client, timeout time.Duration, logger zerolog.Logger) Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &mailNotifier{
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *mailNotifier) ProjectReviewed(studentEmail, studentName, projectTitle, status, feedback string, grade *int) {
	body := fmt.Sprintf("Hi %s,\n\nYour submission for %q was %s.\n\nFeedback: %s\n", studentName, projectTitle, status, feedback)
	if grade != nil {
		body += fmt.Sprintf("Grade: %d/100\n", *grade)
	}

	n.send(mailer.Message{
		ToEmail: studentEmail,
		ToName:  studentName,
		Subject: fmt.Sprintf("Your project %q has been reviewed", projectTitle),
		Body:    body,
	})
}

func (n *mailNotifier) Welcome(email, name, role, temporaryPassword string) {
	body := fmt.Sprintf("Hi %s,\n\nAn account with the %s role has been created for you.\n", name, role)
	if temporaryPassword != "" {
		body += fmt.Sprintf("Temporary password: %s\nPlease change it after your first login.\n", temporaryPassword)
	}

	n.send(mailer.Message{
		ToEmail: email,
		ToName:  name,
		Subject: "Welcome to the bootcamp",
		Body:    body,
	})
}

func (n *mailNotifier) send(msg mailer.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.client.Send(ctx, msg); err != nil {
			n.logger.Warn().Err(err).Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("failed to send notification email")
		}
	}()
}

type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier returns a Notifier that only logs. Used when no mail
// provider is configured.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n *logNotifier) ProjectReviewed(studentEmail, studentName, projectTitle, status, feedback string, grade *int) {
	n.logger.Info().Str("to", studentEmail).Str("project", projectTitle).Str("status", status).Msg("review notification suppressed: mail not configured")
}

func (n *logNotifier) Welcome(email, name, role, temporaryPassword string) {
	n.logger.Info().Str("to", email).Str("role", role).Msg("welcome notification suppressed: mail not configured")
}
