package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course is the top of the catalog hierarchy: Course -> Module -> Lesson.
type Course struct {
	ID            uint                         `gorm:"primaryKey" json:"id"`
	Title         string                       `gorm:"size:255;not null" json:"title"`
	Description   string                       `gorm:"type:text" json:"description"`
	DurationHours int                          `gorm:"default:0" json:"duration_hours"`
	Prerequisites datatypes.JSONSlice[string]  `json:"prerequisites"`
	IsActive      bool                         `gorm:"not null;default:true" json:"is_active"`
	Modules       []Module                     `json:"modules"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// Module groups lessons inside a course. Sequence drives display and
// traversal order; ties are broken by id ascending.
type Module struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Sequence       int       `gorm:"not null;index" json:"sequence"`
	EstimatedHours int       `gorm:"default:2" json:"estimated_hours"`
	Lessons        []Lesson  `json:"lessons"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Project is a course-level deliverable reviewed by an instructor.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
