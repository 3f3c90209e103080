package service

import (
	"context"
	"errors"
	"math"
	"time"

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

// ErrLessonNotFound indicates the lesson or its owning course could not be resolved.
var ErrLessonNotFound = errors.New("lesson not found")

// ErrProjectNotFound indicates the project could not be resolved.
var ErrProjectNotFound = errors.New("project not found")

// progressWriteAttempts bounds optimistic-concurrency retries when two
// requests mutate the same progress record.
const progressWriteAttempts = 3

// ProgressService tracks per-student-per-course completion state.
type ProgressService interface {
	// RecordLessonCompletion marks the lesson complete for the student and
	// recomputes the aggregate percentage. Completing an already-completed
	// lesson is a no-op returning the unchanged record.
	RecordLessonCompletion(ctx context.Context, studentID, lessonID uint) (dto.ProgressResponse, error)
	// RecordProjectCompletion adds the project to the student's completed
	// set. Idempotent: a project reference is never duplicated.
	RecordProjectCompletion(ctx context.Context, studentID, projectID uint) error
	// GetProgress returns the progress record, creating a zero-valued one
	// on first access instead of failing.
	GetProgress(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error)
}

// DashboardInvalidator drops a student's cached dashboard aggregate. The
// progress tracker calls it after every successful write so the next
// dashboard read reflects the new state instead of waiting out the TTL.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint) error
}

type progressService struct {
	progress  repository.ProgressRepository
	lessons   repository.LessonRepository
	projects  repository.ProjectRepository
	events    EventPublisher
	dashboard DashboardInvalidator
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewProgressService constructs the progress tracker. dashboard may be
// nil when no dashboard cache is configured.
func NewProgressService(progress repository.ProgressRepository, lessons repository.LessonRepository, projects repository.ProjectRepository, events EventPublisher, dashboard DashboardInvalidator, logger zerolog.Logger) ProgressService {
	if events == nil {
		events = NewNopPublisher()
	}

	return &progressService{
		progress:  progress,
		lessons:   lessons,
		projects:  projects,
		events:    events,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		tracer:    otel.Tracer("github.com/nivora-labs/bootcamp-api/internal/service/progress"),
		now:       time.Now,
	}
}

// invalidateDashboard is a log-only side effect: a stale cache entry
// expires on its own, so failures never fail the write.
func (s *progressService) invalidateDashboard(ctx context.Context, studentID uint) {
	if s.dashboard == nil {
		return
	}

	if err := s.dashboard.Invalidate(ctx, studentID); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *progressService) RecordLessonCompletion(ctx context.Context, studentID, lessonID uint) (dto.ProgressResponse, error) {
	ctx, span := s.tracer.Start(ctx, "progress.record_lesson", trace.WithAttributes(
		attribute.Int64("progress.student_id", int64(studentID)),
		attribute.Int64("progress.lesson_id", int64(lessonID)),
	))
	defer span.End()

	lesson, err := s.lessons.GetWithModule(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrLessonNotFound
		}
		span.RecordError(err)
		return dto.ProgressResponse{}, err
	}

	if lesson.Module.ID == 0 {
		return dto.ProgressResponse{}, ErrLessonNotFound
	}
	courseID := lesson.Module.CourseID

	var lastErr error
	for attempt := 0; attempt < progressWriteAttempts; attempt++ {
		progress, err := s.getOrCreate(ctx, studentID, courseID)
		if err != nil {
			span.RecordError(err)
			return dto.ProgressResponse{}, err
		}

		if progress.HasLesson(lessonID) {
			return dto.NewProgressResponse(progress), nil
		}

		progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
		progress.LastAccessedLessonID = &lesson.ID
		moduleID := lesson.ModuleID
		progress.CurrentModuleID = &moduleID
		progress.LastActivityAt = s.now()

		// The course's lesson set is re-read on every write: lessons added
		// later lower existing students' percentages, and ids of deleted
		// lessons are pruned so the percentage stays within 0-100.
		courseLessons, err := s.lessons.ListIDsByCourse(ctx, courseID)
		if err != nil {
			span.RecordError(err)
			return dto.ProgressResponse{}, err
		}
		progress.CompletedLessons = intersectIDs(progress.CompletedLessons, courseLessons)
		progress.OverallProgress = completionPercent(len(progress.CompletedLessons), len(courseLessons))

		err = s.progress.UpdateChecked(ctx, &progress)
		if err == nil {
			observability.LessonCompletions().WithLabelValues("lesson").Inc()
			s.events.ProgressUpdated(ctx, ProgressEvent{
				StudentID:       studentID,
				CourseID:        courseID,
				LessonID:        lessonID,
				OverallProgress: progress.OverallProgress,
				OccurredAt:      s.now().UTC(),
			})
			s.invalidateDashboard(ctx, studentID)
			return dto.NewProgressResponse(progress), nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			span.RecordError(err)
			return dto.ProgressResponse{}, err
		}

		lastErr = err
		s.logger.Debug().Uint("student_id", studentID).Uint("course_id", courseID).Int("attempt", attempt+1).Msg("progress version conflict, retrying")
	}

	span.RecordError(lastErr)
	return dto.ProgressResponse{}, lastErr
}

func (s *progressService) RecordProjectCompletion(ctx context.Context, studentID, projectID uint) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	var lastErr error
	for attempt := 0; attempt < progressWriteAttempts; attempt++ {
		progress, err := s.getOrCreate(ctx, studentID, project.CourseID)
		if err != nil {
			return err
		}

		if progress.HasProject(projectID) {
			return nil
		}

		progress.CompletedProjects = append(progress.CompletedProjects, projectID)
		progress.LastActivityAt = s.now()

		err = s.progress.UpdateChecked(ctx, &progress)
		if err == nil {
			s.events.ProgressUpdated(ctx, ProgressEvent{
				StudentID:       studentID,
				CourseID:        project.CourseID,
				ProjectID:       projectID,
				OverallProgress: progress.OverallProgress,
				OccurredAt:      s.now().UTC(),
			})
			s.invalidateDashboard(ctx, studentID)
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}

		lastErr = err
	}

	return lastErr
}

func (s *progressService) GetProgress(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error) {
	progress, err := s.getOrCreate(ctx, studentID, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	return dto.NewProgressResponse(progress), nil
}

func (s *progressService) getOrCreate(ctx context.Context, studentID, courseID uint) (models.Progress, error) {
	progress, err := s.progress.GetByStudentAndCourse(ctx, studentID, courseID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Progress{}, err
	}

	progress = models.Progress{
		StudentID:      studentID,
		CourseID:       courseID,
		LastActivityAt: s.now(),
	}
	if err := s.progress.Create(ctx, &progress); err != nil {
		// A concurrent request may have created the row first.
		if existing, getErr := s.progress.GetByStudentAndCourse(ctx, studentID, courseID); getErr == nil {
			return existing, nil
		}
		return models.Progress{}, err
	}

	return progress, nil
}

// intersectIDs keeps the elements of completed that are present in
// current, preserving order and dropping duplicates.
func intersectIDs(completed, current []uint) []uint {
	currentSet := make(map[uint]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	kept := make([]uint, 0, len(completed))
	seen := make(map[uint]struct{}, len(completed))
	for _, id := range completed {
		if _, ok := currentSet[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}

	return kept
}

func completionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}

	return int(math.Round(100 * float64(completed) / float64(total)))
}
