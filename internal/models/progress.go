package models

import (
	"time"

	"gorm.io/datatypes"
)

// Progress is the per-student-per-course completion record. Completed
// lesson and project ids are sets: membership only, never duplicated.
// OverallProgress is derived from CompletedLessons and the course lesson
// count at computation time; it is recomputed on every mutation.
//
// Version implements optimistic concurrency: updates carry the version
// they read and bump it, so two near-simultaneous completions for the
// same student cannot silently drop each other.
type Progress struct {
	ID                   uint                      `gorm:"primaryKey" json:"id"`
	StudentID            uint                      `gorm:"not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID             uint                      `gorm:"not null;uniqueIndex:idx_student_course" json:"course_id"`
	CompletedLessons     datatypes.JSONSlice[uint] `json:"completed_lessons"`
	CompletedProjects    datatypes.JSONSlice[uint] `json:"completed_projects"`
	OverallProgress      int                       `gorm:"not null;default:0" json:"overall_progress"`
	LastAccessedLessonID *uint                     `json:"last_accessed_lesson_id"`
	CurrentModuleID      *uint                     `json:"current_module_id"`
	LastActivityAt       time.Time                 `json:"last_activity_at"`
	Version              int                       `gorm:"not null;default:0" json:"-"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// HasLesson reports whether the lesson is already in the completed set.
func (p Progress) HasLesson(lessonID uint) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// HasProject reports whether the project is already in the completed set.
func (p Progress) HasProject(projectID uint) bool {
	for _, id := range p.CompletedProjects {
		if id == projectID {
			return true
		}
	}
	return false
}

// QuizAnswer records a single answered question within an attempt.
type QuizAnswer struct {
	SelectedIndex int  `json:"selected_index"`
	Correct       bool `json:"correct"`
}

// QuizSubmission is one graded quiz attempt. All attempts are kept;
// retakes never delete earlier rows.
type QuizSubmission struct {
	ID          uint                            `gorm:"primaryKey" json:"id"`
	QuizID      uint                            `gorm:"not null;index" json:"quiz_id"`
	StudentID   uint                            `gorm:"not null;index" json:"student_id"`
	Answers     datatypes.JSONSlice[QuizAnswer] `json:"answers"`
	Score       int                             `gorm:"not null" json:"score"`
	Passed      bool                            `gorm:"not null" json:"passed"`
	CompletedAt time.Time                       `json:"completed_at"`
	CreatedAt   time.Time                       `json:"created_at"`
	Quiz        Quiz                            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student     User                            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
