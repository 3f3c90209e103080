package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

func newDashboardFixture(t *testing.T, cache *redis.Client) (*fakeProgressRepo, DashboardService) {
	t.Helper()

	progress := newFakeProgressRepo()
	courses := &fakeCourseRepo{courses: map[uint]models.Course{
		100: {ID: 100, Title: "Backend Track"},
		200: {ID: 200, Title: "Frontend Track"},
	}}
	lessons := &fakeLessonRepo{total: 4}

	svc := NewDashboardService(progress, courses, lessons, cache, time.Minute, testLogger())
	return progress, svc
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestDashboardAggregatesPerCourseProgress(t *testing.T) {
	progress, svc := newDashboardFixture(t, nil)
	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 100, CompletedLessons: []uint{1, 2, 3, 4}}
	progress.records[progressKey(7, 200)] = models.Progress{ID: 2, StudentID: 7, CourseID: 200, OverallProgress: 50, CompletedLessons: []uint{10, 11}}

	dashboard, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, uint(7), dashboard.StudentID)
	require.Len(t, dashboard.Courses, 2)
	require.Equal(t, 1, dashboard.CompletedCourses)
	require.Equal(t, 75, dashboard.AverageProgress)

	for _, course := range dashboard.Courses {
		require.NotEmpty(t, course.CourseTitle)
		require.Equal(t, 4, course.TotalLessons)
	}
}

func TestDashboardEmptyForStudentWithoutProgress(t *testing.T) {
	_, svc := newDashboardFixture(t, nil)

	dashboard, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, dashboard.Courses)
	require.Zero(t, dashboard.AverageProgress)
}

func TestDashboardServesCachedAggregate(t *testing.T) {
	progress, svc := newDashboardFixture(t, testRedis(t))
	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 25, CompletedLessons: []uint{1}}

	first, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 25, first.AverageProgress)

	// the repository changes underneath but the cached copy still wins
	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 50, CompletedLessons: []uint{1, 2}}

	second, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 25, second.AverageProgress)
}

func TestDashboardInvalidateForcesRecompute(t *testing.T) {
	progress, svc := newDashboardFixture(t, testRedis(t))
	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 25, CompletedLessons: []uint{1}}

	_, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)

	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 50, CompletedLessons: []uint{1, 2}}
	require.NoError(t, svc.Invalidate(context.Background(), 7))

	refreshed, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 50, refreshed.AverageProgress)
}

func TestDashboardWithoutCacheRecomputesEveryTime(t *testing.T) {
	progress, svc := newDashboardFixture(t, nil)
	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 25, CompletedLessons: []uint{1}}

	first, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 25, first.AverageProgress)

	progress.records[progressKey(7, 100)] = models.Progress{ID: 1, StudentID: 7, CourseID: 100, OverallProgress: 50, CompletedLessons: []uint{1, 2}}

	second, err := svc.GetDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 50, second.AverageProgress)
}
