package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// CohortCreateRequest describes the payload for scheduling a cohort.
type CohortCreateRequest struct {
	CourseID    uint      `json:"course_id" validate:"required,gt=0"`
	Name        string    `json:"name" validate:"required,min=2,max=255"`
	Code        string    `json:"code" validate:"required,min=2,max=32"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	MaxStudents *int      `json:"max_students" validate:"omitempty,gt=0"`
}

// CohortUpdateRequest carries partial cohort updates.
type CohortUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=2,max=255"`
	Status      *string    `json:"status" validate:"omitempty,oneof=scheduled active completed cancelled"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxStudents *int       `json:"max_students" validate:"omitempty,gt=0"`
}

// CohortResponse is the public view of a cohort.
type CohortResponse struct {
	ID          uint          `json:"id"`
	CourseID    uint          `json:"course_id"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Status      string        `json:"status"`
	MaxStudents *int          `json:"max_students"`
	Students    []UserSummary `json:"students,omitempty"`
	Instructors []UserSummary `json:"instructors,omitempty"`
	Graduated   []uint        `json:"graduated,omitempty"`
	Dropped     []uint        `json:"dropped,omitempty"`
}

// NewCohortResponse converts a Cohort model into a DTO.
func NewCohortResponse(model models.Cohort) CohortResponse {
	response := CohortResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Name:        model.Name,
		Code:        model.Code,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		Status:      model.Status,
		MaxStudents: model.MaxStudents,
		Graduated:   model.Graduated,
		Dropped:     model.Dropped,
	}

	for _, student := range model.Students {
		response.Students = append(response.Students, UserSummary{ID: student.ID, Name: student.Name, Email: student.Email})
	}
	for _, instructor := range model.Instructors {
		response.Instructors = append(response.Instructors, UserSummary{ID: instructor.ID, Name: instructor.Name, Email: instructor.Email})
	}

	return response
}

// NewCohortResponseSlice converts cohort models into DTOs.
func NewCohortResponseSlice(cohorts []models.Cohort) []CohortResponse {
	responses := make([]CohortResponse, 0, len(cohorts))
	for _, cohort := range cohorts {
		responses = append(responses, NewCohortResponse(cohort))
	}

	return responses
}
