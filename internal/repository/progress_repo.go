package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// ErrVersionConflict indicates a concurrent writer updated the progress
// row between read and write. Callers re-read and retry.
var ErrVersionConflict = errors.New("progress version conflict")

// ProgressRepository defines data operations for progress records.
type ProgressRepository interface {
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Progress, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Progress, error)
	Create(ctx context.Context, progress *models.Progress) error
	UpdateChecked(ctx context.Context, progress *models.Progress) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Progress, error) {
	var progress models.Progress
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&progress).Error
	if err != nil {
		return models.Progress{}, err
	}

	return progress, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Progress, error) {
	var records []models.Progress
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("course_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) Create(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

// UpdateChecked persists the record only if its version is unchanged
// since the read, bumping the version in the same statement.
func (r *progressRepository) UpdateChecked(ctx context.Context, progress *models.Progress) error {
	readVersion := progress.Version
	progress.Version++

	result := r.db.WithContext(ctx).
		Model(&models.Progress{}).
		Where("id = ? AND version = ?", progress.ID, readVersion).
		Updates(map[string]interface{}{
			"completed_lessons":       progress.CompletedLessons,
			"completed_projects":      progress.CompletedProjects,
			"overall_progress":        progress.OverallProgress,
			"last_accessed_lesson_id": progress.LastAccessedLessonID,
			"current_module_id":       progress.CurrentModuleID,
			"last_activity_at":        progress.LastActivityAt,
			"version":                 progress.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}
