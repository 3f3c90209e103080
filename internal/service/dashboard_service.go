package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// DashboardService aggregates per-course progress into a student
// dashboard. Results are cached in Redis for a short TTL because the
// aggregate touches every enrolled course.
type DashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.DashboardResponse, error)
	// Invalidate drops the cached dashboard after a progress write.
	Invalidate(ctx context.Context, studentID uint) error
}

type dashboardService struct {
	progress repository.ProgressRepository
	courses  repository.CourseRepository
	lessons  repository.LessonRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. The cache client
// may be nil, in which case every request recomputes the aggregate.
func NewDashboardService(progress repository.ProgressRepository, courses repository.CourseRepository, lessons repository.LessonRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		progress: progress,
		courses:  courses,
		lessons:  lessons,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *dashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.DashboardResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey(studentID)).Bytes()
		if err == nil {
			var response dto.DashboardResponse
			if jsonErr := json.Unmarshal(cached, &response); jsonErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache read failed")
		}
	}

	response, err := s.build(ctx, studentID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey(studentID), encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("dashboard cache write failed")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, studentID uint) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Del(ctx, dashboardCacheKey(studentID)).Err()
}

func (s *dashboardService) build(ctx context.Context, studentID uint) (dto.DashboardResponse, error) {
	records, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	response := dto.DashboardResponse{
		StudentID:   studentID,
		Courses:     make([]dto.DashboardCourse, 0, len(records)),
		GeneratedAt: s.now().UTC(),
	}

	progressSum := 0
	for _, record := range records {
		entry := dto.DashboardCourse{
			CourseID:        record.CourseID,
			OverallProgress: record.OverallProgress,
			CompletedCount:  len(record.CompletedLessons),
			LastActivityAt:  record.LastActivityAt,
		}

		if course, err := s.courses.GetByID(ctx, record.CourseID); err == nil {
			entry.CourseTitle = course.Title
		}
		if total, err := s.lessons.CountByCourse(ctx, record.CourseID); err == nil {
			entry.TotalLessons = int(total)
		}

		if record.OverallProgress >= 100 {
			response.CompletedCourses++
		}
		progressSum += record.OverallProgress

		response.Courses = append(response.Courses, entry)
	}

	if len(records) > 0 {
		response.AverageProgress = int(math.Round(float64(progressSum) / float64(len(records))))
	}

	return response, nil
}
