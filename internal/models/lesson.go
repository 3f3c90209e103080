package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lesson type constants. Quiz and activity lessons own exactly one Quiz
// or Activity respectively; the remaining types are plain content.
const (
	LessonTypeTheory   = "theory"
	LessonTypeVideo    = "video"
	LessonTypeReading  = "reading"
	LessonTypeQuiz     = "quiz"
	LessonTypeActivity = "activity"
)

// LessonResource is a supplementary link attached to a lesson or activity.
type LessonResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Lesson is the leaf of the catalog hierarchy.
type Lesson struct {
	ID        uint                                `gorm:"primaryKey" json:"id"`
	ModuleID  uint                                `gorm:"not null;index" json:"module_id"`
	Title     string                              `gorm:"size:255;not null" json:"title"`
	Content   string                              `gorm:"type:text" json:"content"`
	Type      string                              `gorm:"size:32;not null;default:'theory'" json:"type"`
	Sequence  int                                 `gorm:"not null;index" json:"sequence"`
	VideoURL  string                              `gorm:"size:512" json:"video_url"`
	Resources datatypes.JSONSlice[LessonResource] `json:"resources"`
	CreatedAt time.Time                           `json:"created_at"`
	UpdatedAt time.Time                           `json:"updated_at"`
	Module    Module                              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ValidLessonType reports whether the given type is part of the lesson type enum.
func ValidLessonType(value string) bool {
	switch value {
	case LessonTypeTheory, LessonTypeVideo, LessonTypeReading, LessonTypeQuiz, LessonTypeActivity:
		return true
	default:
		return false
	}
}

// Quiz holds the question set for a quiz-type lesson.
type Quiz struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	LessonID         uint       `gorm:"not null;uniqueIndex" json:"lesson_id"`
	PassingScore     int        `gorm:"not null;default:70" json:"passing_score"`
	TimeLimitMinutes *int       `json:"time_limit_minutes"`
	Questions        []Question `json:"questions"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Lesson           Lesson     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Question is a single multiple-choice entry of a quiz. CorrectIndex is
// zero-based into Options.
type Question struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	QuizID       uint                        `gorm:"not null;index" json:"quiz_id"`
	Prompt       string                      `gorm:"type:text;not null" json:"prompt"`
	Options      datatypes.JSONSlice[string] `json:"options"`
	CorrectIndex int                         `gorm:"not null" json:"correct_index"`
	Explanation  string                      `gorm:"type:text" json:"explanation"`
	Sequence     int                         `gorm:"not null;index" json:"sequence"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// Activity is the free-text exercise attached to an activity-type lesson.
// It is graded by the external oracle.
type Activity struct {
	ID             uint                                `gorm:"primaryKey" json:"id"`
	LessonID       uint                                `gorm:"not null;uniqueIndex" json:"lesson_id"`
	Title          string                              `gorm:"size:255;not null" json:"title"`
	Description    string                              `gorm:"type:text" json:"description"`
	Instructions   string                              `gorm:"type:text" json:"instructions"`
	MinWords       *int                                `json:"min_words"`
	MaxWords       *int                                `json:"max_words"`
	ExpectedFormat string                              `gorm:"size:128" json:"expected_format"`
	Resources      datatypes.JSONSlice[LessonResource] `json:"resources"`
	CreatedAt      time.Time                           `json:"created_at"`
	UpdatedAt      time.Time                           `json:"updated_at"`
	Lesson         Lesson                              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
