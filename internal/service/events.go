package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event subjects published for external consumers.
const (
	SubjectProgressUpdated = "bootcamp.progress.updated"
	SubjectReviewDecided   = "bootcamp.review.decided"
)

// ProgressEvent is emitted whenever a student's progress record changes.
type ProgressEvent struct {
	StudentID       uint      `json:"student_id"`
	CourseID        uint      `json:"course_id"`
	LessonID        uint      `json:"lesson_id,omitempty"`
	ProjectID       uint      `json:"project_id,omitempty"`
	OverallProgress int       `json:"overall_progress"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ReviewEvent is emitted when a submission reaches a terminal status.
type ReviewEvent struct {
	SubmissionID uint      `json:"submission_id"`
	StudentID    uint      `json:"student_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher fans domain events out to interested consumers. All
// publishing is best effort: failures are logged and never surfaced to
// the triggering request.
type EventPublisher interface {
	ProgressUpdated(ctx context.Context, event ProgressEvent)
	ReviewDecided(ctx context.Context, event ReviewEvent)
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNATSPublisher builds an EventPublisher backed by a NATS connection.
func NewNATSPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) ProgressUpdated(ctx context.Context, event ProgressEvent) {
	p.publish(SubjectProgressUpdated, event)
}

func (p *natsPublisher) ReviewDecided(ctx context.Context, event ReviewEvent) {
	p.publish(SubjectReviewDecided, event)
}

func (p *natsPublisher) publish(subject string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops all events. Used when
// no broker is configured.
func NewNopPublisher() EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) ProgressUpdated(ctx context.Context, event ProgressEvent) {}

func (nopPublisher) ReviewDecided(ctx context.Context, event ReviewEvent) {}
