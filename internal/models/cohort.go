package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Cohort status constants.
const (
	CohortStatusScheduled = "scheduled"
	CohortStatusActive    = "active"
	CohortStatusCompleted = "completed"
	CohortStatusCancelled = "cancelled"
)

// Cohort is a scheduled instance of a course with enrolled students and
// assigned instructors. Invariant: StartDate precedes EndDate.
type Cohort struct {
	ID          uint                      `gorm:"primaryKey" json:"id"`
	CourseID    uint                      `gorm:"not null;index" json:"course_id"`
	Name        string                    `gorm:"size:255;not null" json:"name"`
	Code        string                    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	StartDate   time.Time                 `gorm:"not null" json:"start_date"`
	EndDate     time.Time                 `gorm:"not null" json:"end_date"`
	Status      string                    `gorm:"size:32;not null;default:'scheduled'" json:"status"`
	MaxStudents *int                      `json:"max_students"`
	Students    []User                    `gorm:"many2many:cohort_students" json:"students"`
	Instructors []User                    `gorm:"many2many:cohort_instructors" json:"instructors"`
	Graduated   datatypes.JSONSlice[uint] `json:"graduated"`
	Dropped     datatypes.JSONSlice[uint] `json:"dropped"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	Course      Course                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// BeforeSave normalises the cohort code to its canonical uppercase form.
func (c *Cohort) BeforeSave(tx *gorm.DB) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	return nil
}

// IsFull reports whether the cohort has reached its enrollment capacity.
func (c Cohort) IsFull() bool {
	return c.MaxStudents != nil && len(c.Students) >= *c.MaxStudents
}

// HasStudent reports whether the student is currently enrolled.
func (c Cohort) HasStudent(studentID uint) bool {
	for _, s := range c.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}

// ValidCohortStatus reports whether the value is part of the status enum.
func ValidCohortStatus(value string) bool {
	switch value {
	case CohortStatusScheduled, CohortStatusActive, CohortStatusCompleted, CohortStatusCancelled:
		return true
	default:
		return false
	}
}
