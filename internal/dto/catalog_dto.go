package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Title         string   `json:"title" validate:"required,min=2,max=255"`
	Description   string   `json:"description"`
	DurationHours int      `json:"duration_hours" validate:"gte=0"`
	Prerequisites []string `json:"prerequisites"`
}

// CourseUpdateRequest carries partial course updates.
type CourseUpdateRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=2,max=255"`
	Description   *string   `json:"description"`
	DurationHours *int      `json:"duration_hours" validate:"omitempty,gte=0"`
	Prerequisites *[]string `json:"prerequisites"`
	IsActive      *bool     `json:"is_active"`
}

// ModuleCreateRequest describes the payload for adding a module to a course.
type ModuleCreateRequest struct {
	Title          string `json:"title" validate:"required,min=2,max=255"`
	Description    string `json:"description"`
	Sequence       int    `json:"sequence" validate:"required,gt=0"`
	EstimatedHours int    `json:"estimated_hours" validate:"gte=0"`
}

// LessonCreateRequest describes the payload for adding a lesson to a module.
type LessonCreateRequest struct {
	Title     string                  `json:"title" validate:"required,min=2,max=255"`
	Content   string                  `json:"content"`
	Type      string                  `json:"type" validate:"required,oneof=theory video reading quiz activity"`
	Sequence  int                     `json:"sequence" validate:"required,gt=0"`
	VideoURL  string                  `json:"video_url" validate:"omitempty,url"`
	Resources []models.LessonResource `json:"resources"`
}

// QuizCreateRequest attaches a quiz to a quiz-type lesson.
type QuizCreateRequest struct {
	PassingScore     int                     `json:"passing_score" validate:"gte=0,lte=100"`
	TimeLimitMinutes *int                    `json:"time_limit_minutes" validate:"omitempty,gt=0"`
	Questions        []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuestionCreateRequest describes one quiz question.
type QuestionCreateRequest struct {
	Prompt       string   `json:"prompt" validate:"required"`
	Options      []string `json:"options" validate:"required,min=2"`
	CorrectIndex int      `json:"correct_index" validate:"gte=0"`
	Explanation  string   `json:"explanation"`
}

// ActivityCreateRequest attaches an activity to an activity-type lesson.
type ActivityCreateRequest struct {
	Title          string                  `json:"title" validate:"required,min=2,max=255"`
	Description    string                  `json:"description"`
	Instructions   string                  `json:"instructions" validate:"required"`
	MinWords       *int                    `json:"min_words" validate:"omitempty,gt=0"`
	MaxWords       *int                    `json:"max_words" validate:"omitempty,gt=0"`
	ExpectedFormat string                  `json:"expected_format"`
	Resources      []models.LessonResource `json:"resources"`
}

// ProjectCreateRequest describes the payload for adding a project to a course.
type ProjectCreateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=255"`
	Description string `json:"description"`
}

// CourseResponse is the public view of a course.
type CourseResponse struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	DurationHours int              `json:"duration_hours"`
	Prerequisites []string         `json:"prerequisites"`
	IsActive      bool             `json:"is_active"`
	Modules       []ModuleResponse `json:"modules,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ModuleResponse is the public view of a module.
type ModuleResponse struct {
	ID             uint             `json:"id"`
	CourseID       uint             `json:"course_id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Sequence       int              `json:"sequence"`
	EstimatedHours int              `json:"estimated_hours"`
	Lessons        []LessonResponse `json:"lessons,omitempty"`
}

// LessonResponse is the public view of a lesson.
type LessonResponse struct {
	ID        uint                    `json:"id"`
	ModuleID  uint                    `json:"module_id"`
	Title     string                  `json:"title"`
	Content   string                  `json:"content"`
	Type      string                  `json:"type"`
	Sequence  int                     `json:"sequence"`
	VideoURL  string                  `json:"video_url,omitempty"`
	Resources []models.LessonResource `json:"resources,omitempty"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		DurationHours: model.DurationHours,
		Prerequisites: model.Prerequisites,
		IsActive:      model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}

	for _, module := range model.Modules {
		response.Modules = append(response.Modules, NewModuleResponse(module))
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}

	return responses
}

// NewModuleResponse converts a Module model into a DTO.
func NewModuleResponse(model models.Module) ModuleResponse {
	response := ModuleResponse{
		ID:             model.ID,
		CourseID:       model.CourseID,
		Title:          model.Title,
		Description:    model.Description,
		Sequence:       model.Sequence,
		EstimatedHours: model.EstimatedHours,
	}

	for _, lesson := range model.Lessons {
		response.Lessons = append(response.Lessons, NewLessonResponse(lesson))
	}

	return response
}

// ProjectResponse is the public view of a course project.
type ProjectResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProjectResponse converts a Project model into a DTO.
func NewProjectResponse(model models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}

// NewLessonResponse converts a Lesson model into a DTO.
func NewLessonResponse(model models.Lesson) LessonResponse {
	return LessonResponse{
		ID:        model.ID,
		ModuleID:  model.ModuleID,
		Title:     model.Title,
		Content:   model.Content,
		Type:      model.Type,
		Sequence:  model.Sequence,
		VideoURL:  model.VideoURL,
		Resources: model.Resources,
	}
}
