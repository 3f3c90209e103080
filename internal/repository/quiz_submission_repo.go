package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// QuizSubmissionRepository defines data operations for quiz attempts.
type QuizSubmissionRepository interface {
	Create(ctx context.Context, submission *models.QuizSubmission) error
	ListByStudentAndQuiz(ctx context.Context, studentID, quizID uint) ([]models.QuizSubmission, error)
}

type quizSubmissionRepository struct {
	db *gorm.DB
}

// NewQuizSubmissionRepository instantiates the repository.
func NewQuizSubmissionRepository(db *gorm.DB) QuizSubmissionRepository {
	return &quizSubmissionRepository{db: db}
}

func (r *quizSubmissionRepository) Create(ctx context.Context, submission *models.QuizSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *quizSubmissionRepository) ListByStudentAndQuiz(ctx context.Context, studentID, quizID uint) ([]models.QuizSubmission, error) {
	var attempts []models.QuizSubmission
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("created_at DESC, id DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}
