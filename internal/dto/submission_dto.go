package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// ProjectSubmitRequest describes the payload for submitting a project.
type ProjectSubmitRequest struct {
	GithubURL string `json:"github_url" validate:"required,url"`
	Notes     string `json:"notes"`
}

// ReviewRequest carries an instructor's decision on a submission.
type ReviewRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
	Feedback string `json:"feedback" validate:"required,min=3"`
	Grade    *int   `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	StudentID *uint    `query:"student_id"`
	ProjectID *uint    `query:"project_id"`
	Statuses  []string `query:"status" validate:"omitempty,dive,oneof=pending in_review approved rejected"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID         uint         `json:"id"`
	StudentID  uint         `json:"student_id"`
	ProjectID  *uint        `json:"project_id"`
	LessonID   *uint        `json:"lesson_id"`
	Content    string       `json:"content,omitempty"`
	GithubURL  string       `json:"github_url,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	Status     string       `json:"status"`
	Grade      *int         `json:"grade"`
	Feedback   string       `json:"feedback"`
	ReviewerID *uint        `json:"reviewer_id"`
	ReviewedAt *time.Time   `json:"reviewed_at"`
	CreatedAt  time.Time    `json:"created_at"`
	Student    *UserSummary `json:"student,omitempty"`
}

// UserSummary is a compact user reference embedded in other responses.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		ProjectID:  model.ProjectID,
		LessonID:   model.LessonID,
		Content:    model.Content,
		GithubURL:  model.GithubURL,
		Notes:      model.Notes,
		Status:     model.Status,
		Grade:      model.Grade,
		Feedback:   model.Feedback,
		ReviewerID: model.ReviewerID,
		ReviewedAt: model.ReviewedAt,
		CreatedAt:  model.CreatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = &UserSummary{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
