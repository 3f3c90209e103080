package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// CourseRepository defines data operations for the catalog hierarchy roots.
type CourseRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetWithModules(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var courses []models.Course
	if err := query.Order("created_at ASC").Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetWithModules(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC, id ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Save(course).Error
}

// Delete removes the course and cascades to its modules and their lessons.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&models.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}

		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.Lesson{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).Delete(&models.Module{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Course{}, id).Error
	})
}

// ModuleRepository defines data operations for course modules.
type ModuleRepository interface {
	GetByID(ctx context.Context, id uint) (models.Module, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Module, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id uint) error
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository instantiates the repository.
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) GetByID(ctx context.Context, id uint) (models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).First(&module, id).Error; err != nil {
		return models.Module{}, err
	}

	return module, nil
}

func (r *moduleRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Module, error) {
	var modules []models.Module
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sequence ASC, id ASC").
		Find(&modules).Error
	if err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *moduleRepository) Update(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

func (r *moduleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Module{}, id).Error
	})
}

// ProjectRepository defines data operations for course projects.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uint) (models.Project, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Project, error)
	Create(ctx context.Context, project *models.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository instantiates the repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}
