package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/observability"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// ErrSubmissionNotFound indicates the submission could not be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateSubmission indicates a pending or in-review submission
// already exists for this student and project.
var ErrDuplicateSubmission = errors.New("an active submission already exists for this project")

// ErrSubmissionNotClaimable indicates the submission is not in the
// pending state and therefore cannot be claimed for review.
var ErrSubmissionNotClaimable = errors.New("submission is not pending")

// ErrInvalidReviewStatus indicates the decision is not a terminal status.
var ErrInvalidReviewStatus = errors.New("review status must be approved or rejected")

// ErrEmptyFeedback indicates the review decision carries no feedback.
var ErrEmptyFeedback = errors.New("review feedback is required")

// ProjectCompleter is the slice of the progress tracker the review
// workflow feeds approved projects into.
type ProjectCompleter interface {
	RecordProjectCompletion(ctx context.Context, studentID, projectID uint) error
}

// ReviewService manages the project submission and review workflow.
type ReviewService interface {
	// SubmitProject creates a pending submission unless an active one
	// already exists for the same student and project.
	SubmitProject(ctx context.Context, studentID, projectID uint, payload dto.ProjectSubmitRequest) (dto.SubmissionResponse, error)
	// Queue lists submissions oldest first so instructors review the
	// longest-waiting work before anything newer.
	Queue(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	// Claim moves a pending submission to in_review under the instructor.
	Claim(ctx context.Context, submissionID, reviewerID uint) (dto.SubmissionResponse, error)
	// Review records a terminal decision. Approval adds the project to
	// the student's completed set; both outcomes trigger a best-effort
	// notification email whose failure never fails the review.
	Review(ctx context.Context, submissionID, reviewerID uint, payload dto.ReviewRequest) (dto.SubmissionResponse, error)
}

type reviewService struct {
	submissions repository.SubmissionRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	progress    ProjectCompleter
	notifier    Notifier
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewReviewService constructs the review workflow service.
func NewReviewService(submissions repository.SubmissionRepository, projects repository.ProjectRepository, users repository.UserRepository, progress ProjectCompleter, notifier Notifier, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	if events == nil {
		events = NewNopPublisher()
	}

	return &reviewService{
		submissions: submissions,
		projects:    projects,
		users:       users,
		progress:    progress,
		notifier:    notifier,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "review_service").Logger(),
		tracer:      otel.Tracer("github.com/nivora-labs/bootcamp-api/internal/service/review"),
		now:         time.Now,
	}
}

func (s *reviewService) SubmitProject(ctx context.Context, studentID, projectID uint, payload dto.ProjectSubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProjectNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	active, err := s.submissions.HasActiveForProject(ctx, studentID, projectID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if active {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	submission := models.Submission{
		StudentID: studentID,
		ProjectID: &projectID,
		GithubURL: payload.GithubURL,
		Notes:     payload.Notes,
		Status:    models.SubmissionStatusPending,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Uint("student_id", studentID).Uint("project_id", projectID).Msg("project submitted")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *reviewService) Queue(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListQueue(ctx, repository.SubmissionFilter{
		StudentID: filter.StudentID,
		ProjectID: filter.ProjectID,
		Statuses:  filter.Statuses,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *reviewService) Claim(ctx context.Context, submissionID, reviewerID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusPending {
		return dto.SubmissionResponse{}, ErrSubmissionNotClaimable
	}

	submission.Status = models.SubmissionStatusInReview
	submission.ReviewerID = &reviewerID

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *reviewService) Review(ctx context.Context, submissionID, reviewerID uint, payload dto.ReviewRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.decide", trace.WithAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.reviewer_id", int64(reviewerID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if payload.Status != models.SubmissionStatusApproved && payload.Status != models.SubmissionStatusRejected {
		return dto.SubmissionResponse{}, ErrInvalidReviewStatus
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		return dto.SubmissionResponse{}, ErrEmptyFeedback
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	submission.Status = payload.Status
	submission.Feedback = feedback
	submission.Grade = payload.Grade
	submission.ReviewerID = &reviewerID
	reviewedAt := s.now()
	submission.ReviewedAt = &reviewedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if payload.Status == models.SubmissionStatusApproved && submission.ProjectID != nil {
		if err := s.progress.RecordProjectCompletion(ctx, submission.StudentID, *submission.ProjectID); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to record project completion after approval")
			span.RecordError(err)
		}
	}

	observability.ReviewDecisions().WithLabelValues(payload.Status).Inc()
	s.events.ReviewDecided(ctx, ReviewEvent{
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		Status:       submission.Status,
		OccurredAt:   s.now().UTC(),
	})

	s.notifyStudent(ctx, submission)

	s.logger.Info().Uint("submission_id", submission.ID).Str("status", submission.Status).Msg("submission reviewed")

	return dto.NewSubmissionResponse(submission), nil
}

// notifyStudent resolves recipient details and fires the review email.
// Lookup failures are logged only: notification is a side effect, never
// part of the review transaction.
func (s *reviewService) notifyStudent(ctx context.Context, submission models.Submission) {
	student := submission.Student
	if student.ID == 0 {
		loaded, err := s.users.GetByID(ctx, submission.StudentID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", submission.StudentID).Msg("could not resolve student for review notification")
			return
		}
		student = loaded
	}

	projectTitle := "your activity"
	if submission.ProjectID != nil {
		if project, err := s.projects.GetByID(ctx, *submission.ProjectID); err == nil {
			projectTitle = project.Title
		}
	}

	s.notifier.ProjectReviewed(student.Email, student.Name, projectTitle, submission.Status, submission.Feedback, submission.Grade)
}
