package service

import (
	"context"
	"errors"
	"math"
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
	"github.com/nivora-labs/bootcamp-api/pkg/ai"
)

// ErrActivityNotFound indicates no activity exists for the lesson.
var ErrActivityNotFound = errors.New("activity not found")

// ErrEmptyContent indicates the submission is empty or whitespace only.
var ErrEmptyContent = errors.New("submission content is empty")

// ErrWordCountOutOfRange indicates the submission violates the activity's word bounds.
var ErrWordCountOutOfRange = errors.New("submission word count out of range")

// ErrActivityAlreadyApproved indicates an approved submission already
// exists for this student and lesson; at most one approved outcome is
// permitted per activity per student.
var ErrActivityAlreadyApproved = errors.New("activity already approved")

// Grade above which an oracle-scored submission is approved (0-10 scale).
const activityApproveThreshold = 7.0

// fallbackFeedback is used when the oracle fails or returns an
// unparsable response: grading degrades instead of failing the request.
const (
	fallbackGrade    = 5.0
	fallbackFeedback = "Your submission was received but automatic grading was unavailable. A neutral grade was assigned; an instructor may revisit it."
)

// ActivityService evaluates free-text activity submissions via the grading oracle.
type ActivityService interface {
	Submit(ctx context.Context, studentID, lessonID uint, payload dto.ActivitySubmitRequest) (dto.SubmissionResponse, error)
}

type activityService struct {
	activities  repository.ActivityRepository
	submissions repository.SubmissionRepository
	grader      ai.Grader
	progress    LessonCompleter
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	timeout     time.Duration
	now         func() time.Time
}

// NewActivityService constructs the activity grading service. The oracle
// call is bounded by timeout.
func NewActivityService(activities repository.ActivityRepository, submissions repository.SubmissionRepository, grader ai.Grader, progress LessonCompleter, validate *validator.Validate, timeout time.Duration, logger zerolog.Logger) ActivityService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &activityService{
		activities:  activities,
		submissions: submissions,
		grader:      grader,
		progress:    progress,
		validator:   validate,
		logger:      logger.With().Str("component", "activity_service").Logger(),
		tracer:      otel.Tracer("github.com/nivora-labs/bootcamp-api/internal/service/activity"),
		timeout:     timeout,
		now:         time.Now,
	}
}

func (s *activityService) Submit(ctx context.Context, studentID, lessonID uint, payload dto.ActivitySubmitRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "activity.submit", trace.WithAttributes(
		attribute.Int64("activity.student_id", int64(studentID)),
		attribute.Int64("activity.lesson_id", int64(lessonID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return dto.SubmissionResponse{}, ErrEmptyContent
	}

	activity, err := s.activities.GetByLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrActivityNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	// Word bounds are checked before the oracle is ever invoked.
	words := len(strings.Fields(content))
	if activity.MinWords != nil && words < *activity.MinWords {
		return dto.SubmissionResponse{}, ErrWordCountOutOfRange
	}
	if activity.MaxWords != nil && words > *activity.MaxWords {
		return dto.SubmissionResponse{}, ErrWordCountOutOfRange
	}

	approved, err := s.submissions.HasApprovedForLesson(ctx, studentID, lessonID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if approved {
		return dto.SubmissionResponse{}, ErrActivityAlreadyApproved
	}

	// Supersede earlier pending/rejected rows so only one live
	// non-approved submission exists per (student, lesson).
	if err := s.submissions.DeleteInactiveForLesson(ctx, studentID, lessonID); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	result := s.grade(ctx, activity, content)

	status := models.SubmissionStatusRejected
	if result.Grade > activityApproveThreshold {
		status = models.SubmissionStatusApproved
	}
	grade := int(math.Round(result.Grade * 10))

	submission := models.Submission{
		StudentID: studentID,
		LessonID:  &lessonID,
		Content:   content,
		Status:    status,
		Grade:     &grade,
		Feedback:  result.Feedback,
	}
	reviewedAt := s.now()
	submission.ReviewedAt = &reviewedAt

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if status == models.SubmissionStatusApproved {
		observability.LessonCompletions().WithLabelValues("activity").Inc()
		if _, err := s.progress.RecordLessonCompletion(ctx, studentID, lessonID); err != nil {
			s.logger.Error().Err(err).Uint("student_id", studentID).Uint("lesson_id", lessonID).Msg("failed to record lesson completion after approved activity")
		}
	}

	s.logger.Info().Uint("student_id", studentID).Uint("lesson_id", lessonID).Int("grade", grade).Str("status", status).Msg("activity submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// grade invokes the oracle with a bounded timeout and degrades to a
// neutral grade on any failure.
func (s *activityService) grade(ctx context.Context, activity models.Activity, content string) ai.GradeResult {
	if s.grader == nil {
		return ai.GradeResult{Grade: fallbackGrade, Feedback: fallbackFeedback}
	}

	oracleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.grader.Grade(oracleCtx, ai.ActivityContext{
		Title:          activity.Title,
		Description:    activity.Description,
		Instructions:   activity.Instructions,
		ExpectedFormat: activity.ExpectedFormat,
	}, content)
	if err != nil {
		s.logger.Warn().Err(err).Uint("activity_id", activity.ID).Msg("grading oracle unavailable, using fallback grade")
		return ai.GradeResult{Grade: fallbackGrade, Feedback: fallbackFeedback}
	}

	if result.Grade < 0 || result.Grade > 10 {
		s.logger.Warn().Float64("grade", result.Grade).Uint("activity_id", activity.ID).Msg("grading oracle returned out-of-range grade, using fallback")
		return ai.GradeResult{Grade: fallbackGrade, Feedback: fallbackFeedback}
	}

	if strings.TrimSpace(result.Feedback) == "" {
		result.Feedback = fallbackFeedback
	}

	return result
}
