package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	StudentID *uint
	ProjectID *uint
	LessonID  *uint
	Statuses  []string
}

// SubmissionRepository defines data operations for project and activity submissions.
type SubmissionRepository interface {
	// ListQueue returns matching submissions oldest first. Review queues
	// are FIFO so the longest-waiting student is served next.
	ListQueue(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	HasActiveForProject(ctx context.Context, studentID, projectID uint) (bool, error)
	HasApprovedForLesson(ctx context.Context, studentID, lessonID uint) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	DeleteInactiveForLesson(ctx context.Context, studentID, lessonID uint) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).Preload("Student")
}

func (r *submissionRepository) ListQueue(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if filter.LessonID != nil {
		query = query.Where("lesson_id = ?", *filter.LessonID)
	}

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}

	var submissions []models.Submission
	if err := query.Order("created_at ASC, id ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) HasActiveForProject(ctx context.Context, studentID, projectID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("student_id = ? AND project_id = ?", studentID, projectID).
		Where("status IN ?", []string{models.SubmissionStatusPending, models.SubmissionStatusInReview}).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) HasApprovedForLesson(ctx context.Context, studentID, lessonID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Where("status = ?", models.SubmissionStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// DeleteInactiveForLesson removes superseded pending and rejected
// activity submissions so at most one non-approved row stays live.
func (r *submissionRepository) DeleteInactiveForLesson(ctx context.Context, studentID, lessonID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		Where("status IN ?", []string{models.SubmissionStatusPending, models.SubmissionStatusRejected}).
		Delete(&models.Submission{}).Error
}
