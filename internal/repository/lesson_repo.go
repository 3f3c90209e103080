package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// LessonRepository defines data operations for lessons.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	GetWithModule(ctx context.Context, id uint) (models.Lesson, error)
	ListByModule(ctx context.Context, moduleID uint) ([]models.Lesson, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	ListIDsByCourse(ctx context.Context, courseID uint) ([]uint, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates the repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) GetWithModule(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).Preload("Module").First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) ListByModule(ctx context.Context, moduleID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("sequence ASC, id ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}

	return lessons, nil
}

// CountByCourse counts every lesson across all modules of the course. The
// total is never cached: progress percentages float with catalog changes.
func (r *lessonRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListIDsByCourse returns the ids of every lesson currently belonging to
// the course. Progress recomputation intersects completed sets against
// this list so ids of deleted lessons never inflate a percentage.
func (r *lessonRepository) ListIDsByCourse(ctx context.Context, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Pluck("lessons.id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Lesson{}, id).Error
}

// QuizRepository defines data operations for quizzes and their questions.
type QuizRepository interface {
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	GetByLesson(ctx context.Context, lessonID uint) (models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates the repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Preload("Lesson")
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.baseQuery(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) GetByLesson(ctx context.Context, lessonID uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.baseQuery(ctx).Where("lesson_id = ?", lessonID).First(&quiz).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

// ActivityRepository defines data operations for lesson activities.
type ActivityRepository interface {
	GetByLesson(ctx context.Context, lessonID uint) (models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) GetByLesson(ctx context.Context, lessonID uint) (models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&activity).Error; err != nil {
		return models.Activity{}, err
	}

	return activity, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}
