package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// QuizSubmitRequest carries the selected answer indices in question order.
type QuizSubmitRequest struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}

// QuizResultResponse reports the outcome of a quiz attempt.
type QuizResultResponse struct {
	ID          uint                `json:"id"`
	QuizID      uint                `json:"quiz_id"`
	StudentID   uint                `json:"student_id"`
	Answers     []models.QuizAnswer `json:"answers"`
	Score       int                 `json:"score"`
	Passed      bool                `json:"passed"`
	CompletedAt time.Time           `json:"completed_at"`
}

// NewQuizResultResponse converts a QuizSubmission model into a DTO.
func NewQuizResultResponse(model models.QuizSubmission) QuizResultResponse {
	return QuizResultResponse{
		ID:          model.ID,
		QuizID:      model.QuizID,
		StudentID:   model.StudentID,
		Answers:     model.Answers,
		Score:       model.Score,
		Passed:      model.Passed,
		CompletedAt: model.CompletedAt,
	}
}

// NewQuizResultResponseSlice converts quiz attempts into DTOs.
func NewQuizResultResponseSlice(attempts []models.QuizSubmission) []QuizResultResponse {
	responses := make([]QuizResultResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, NewQuizResultResponse(attempt))
	}

	return responses
}

// QuizResponse is the student view of a quiz: correct answers and
// explanations are withheld until after an attempt.
type QuizResponse struct {
	ID               uint               `json:"id"`
	LessonID         uint               `json:"lesson_id"`
	PassingScore     int                `json:"passing_score"`
	TimeLimitMinutes *int               `json:"time_limit_minutes"`
	Questions        []QuestionResponse `json:"questions"`
}

// QuestionResponse is the student view of a question.
type QuestionResponse struct {
	ID      uint     `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// NewQuizResponse converts a Quiz model into the student-facing DTO.
func NewQuizResponse(model models.Quiz) QuizResponse {
	response := QuizResponse{
		ID:               model.ID,
		LessonID:         model.LessonID,
		PassingScore:     model.PassingScore,
		TimeLimitMinutes: model.TimeLimitMinutes,
	}

	for _, question := range model.Questions {
		response.Questions = append(response.Questions, QuestionResponse{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: question.Options,
		})
	}

	return response
}

// ActivitySubmitRequest carries the free-text activity work product.
type ActivitySubmitRequest struct {
	Content string `json:"content" validate:"required"`
}

// ActivityResponse is the public view of an activity.
type ActivityResponse struct {
	ID             uint                    `json:"id"`
	LessonID       uint                    `json:"lesson_id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Instructions   string                  `json:"instructions"`
	MinWords       *int                    `json:"min_words"`
	MaxWords       *int                    `json:"max_words"`
	ExpectedFormat string                  `json:"expected_format,omitempty"`
	Resources      []models.LessonResource `json:"resources,omitempty"`
}

// NewActivityResponse converts an Activity model into a DTO.
func NewActivityResponse(model models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:             model.ID,
		LessonID:       model.LessonID,
		Title:          model.Title,
		Description:    model.Description,
		Instructions:   model.Instructions,
		MinWords:       model.MinWords,
		MaxWords:       model.MaxWords,
		ExpectedFormat: model.ExpectedFormat,
		Resources:      model.Resources,
	}
}
