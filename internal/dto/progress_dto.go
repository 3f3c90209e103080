package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// ProgressResponse is the per-course completion view for a student.
type ProgressResponse struct {
	StudentID            uint      `json:"student_id"`
	CourseID             uint      `json:"course_id"`
	CompletedLessons     []uint    `json:"completed_lessons"`
	CompletedProjects    []uint    `json:"completed_projects"`
	OverallProgress      int       `json:"overall_progress"`
	LastAccessedLessonID *uint     `json:"last_accessed_lesson_id"`
	CurrentModuleID      *uint     `json:"current_module_id"`
	LastActivityAt       time.Time `json:"last_activity_at"`
}

// NewProgressResponse converts a Progress model into a DTO.
func NewProgressResponse(model models.Progress) ProgressResponse {
	return ProgressResponse{
		StudentID:            model.StudentID,
		CourseID:             model.CourseID,
		CompletedLessons:     model.CompletedLessons,
		CompletedProjects:    model.CompletedProjects,
		OverallProgress:      model.OverallProgress,
		LastAccessedLessonID: model.LastAccessedLessonID,
		CurrentModuleID:      model.CurrentModuleID,
		LastActivityAt:       model.LastActivityAt,
	}
}

// DashboardCourse summarises one course on the student dashboard.
type DashboardCourse struct {
	CourseID        uint      `json:"course_id"`
	CourseTitle     string    `json:"course_title"`
	OverallProgress int       `json:"overall_progress"`
	CompletedCount  int       `json:"completed_count"`
	TotalLessons    int       `json:"total_lessons"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// DashboardResponse aggregates a student's progress across courses.
type DashboardResponse struct {
	StudentID        uint              `json:"student_id"`
	Courses          []DashboardCourse `json:"courses"`
	CompletedCourses int               `json:"completed_courses"`
	AverageProgress  int               `json:"average_progress"`
	GeneratedAt      time.Time         `json:"generated_at"`
}
