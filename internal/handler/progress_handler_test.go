package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/utils"
)

type stubProgressService struct{}

func (s *stubProgressService) RecordLessonCompletion(ctx context.Context, studentID, lessonID uint) (dto.ProgressResponse, error) {
	return dto.ProgressResponse{}, nil
}

func (s *stubProgressService) RecordProjectCompletion(ctx context.Context, studentID, projectID uint) error {
	return nil
}

func (s *stubProgressService) GetProgress(ctx context.Context, studentID, courseID uint) (dto.ProgressResponse, error) {
	return dto.ProgressResponse{StudentID: studentID, CourseID: courseID}, nil
}

func TestGetProgressNeverEnrolledReturnsZeroValuedRecord(t *testing.T) {
	handler := NewProgressHandler(&stubProgressService{}, nil, testLogger())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	handler.RegisterProgress(app.Group("/progress"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/progress/424242", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope utils.APIResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.True(t, envelope.Success)

	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var progress dto.ProgressResponse
	require.NoError(t, json.Unmarshal(data, &progress))
	require.Equal(t, uint(7), progress.StudentID)
	require.Equal(t, uint(424242), progress.CourseID)
	require.Zero(t, progress.OverallProgress)
	require.Empty(t, progress.CompletedLessons)
}

func TestGetProgressRequiresAuthentication(t *testing.T) {
	handler := NewProgressHandler(&stubProgressService{}, nil, testLogger())

	app := fiber.New()
	handler.RegisterProgress(app.Group("/progress"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/progress/1", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
