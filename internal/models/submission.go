package models

import "time"

// Submission status state machine:
// pending -> in_review -> approved | rejected. A rejected submission
// permits resubmission, which creates a new pending row.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusInReview = "in_review"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission is a student work product awaiting or holding a review
// decision. Project submissions carry ProjectID and a repository URL;
// activity submissions carry LessonID and free-text content. Multiple
// historical rows may exist per (student, project|lesson) pair.
type Submission struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	StudentID  uint       `gorm:"not null;index" json:"student_id"`
	ProjectID  *uint      `gorm:"index" json:"project_id"`
	LessonID   *uint      `gorm:"index" json:"lesson_id"`
	Content    string     `gorm:"type:text" json:"content"`
	GithubURL  string     `gorm:"size:512" json:"github_url"`
	Notes      string     `gorm:"type:text" json:"notes"`
	Status     string     `gorm:"size:32;not null;default:'pending';index" json:"status"`
	Grade      *int       `json:"grade"`
	Feedback   string     `gorm:"type:text" json:"feedback"`
	ReviewerID *uint      `json:"reviewer_id"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Student    User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the submission still occupies the review queue.
func (s Submission) IsActive() bool {
	return s.Status == SubmissionStatusPending || s.Status == SubmissionStatusInReview
}

// IsTerminal reports whether the submission reached a review decision.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}
