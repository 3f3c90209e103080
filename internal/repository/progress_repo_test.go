package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

func TestUpdateCheckedBumpsVersion(t *testing.T) {
	db := testDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	record := models.Progress{StudentID: 7, CourseID: 100, LastActivityAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &record))

	record.CompletedLessons = []uint{1}
	record.OverallProgress = 25
	require.NoError(t, repo.UpdateChecked(ctx, &record))

	stored, err := repo.GetByStudentAndCourse(ctx, 7, 100)
	require.NoError(t, err)
	require.Equal(t, 25, stored.OverallProgress)
	require.Equal(t, record.Version, stored.Version)
	require.Equal(t, []uint{1}, []uint(stored.CompletedLessons))
}

func TestUpdateCheckedDetectsConcurrentWrite(t *testing.T) {
	db := testDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	record := models.Progress{StudentID: 7, CourseID: 100, LastActivityAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &record))

	// two readers load the same version
	first, err := repo.GetByStudentAndCourse(ctx, 7, 100)
	require.NoError(t, err)
	second, err := repo.GetByStudentAndCourse(ctx, 7, 100)
	require.NoError(t, err)

	first.CompletedLessons = []uint{1}
	require.NoError(t, repo.UpdateChecked(ctx, &first))

	second.CompletedLessons = []uint{2}
	err = repo.UpdateChecked(ctx, &second)
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestListByStudentOrderedByCourse(t *testing.T) {
	db := testDB(t)
	repo := NewProgressRepository(db)
	ctx := context.Background()

	for _, courseID := range []uint{200, 100} {
		record := models.Progress{StudentID: 7, CourseID: courseID, LastActivityAt: time.Now()}
		require.NoError(t, repo.Create(ctx, &record))
	}
	other := models.Progress{StudentID: 8, CourseID: 100, LastActivityAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &other))

	records, err := repo.ListByStudent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, uint(100), records[0].CourseID)
	require.Equal(t, uint(200), records[1].CourseID)
}
