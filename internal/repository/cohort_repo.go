package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// CohortRepository defines data operations for cohorts and their membership.
type CohortRepository interface {
	List(ctx context.Context) ([]models.Cohort, error)
	GetByID(ctx context.Context, id uint) (models.Cohort, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetWithMembers(ctx context.Context, id uint) (models.Cohort, error)
	Create(ctx context.Context, cohort *models.Cohort) error
	Update(ctx context.Context, cohort *models.Cohort) error
	AddStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error
	RemoveStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error
	AddInstructor(ctx context.Context, cohort *models.Cohort, instructor *models.User) error
	Delete(ctx context.Context, id uint) error
}

type cohortRepository struct {
	db *gorm.DB
}

// NewCohortRepository instantiates the repository.
func NewCohortRepository(db *gorm.DB) CohortRepository {
	return &cohortRepository{db: db}
}

func (r *cohortRepository) List(ctx context.Context) ([]models.Cohort, error) {
	var cohorts []models.Cohort
	if err := r.db.WithContext(ctx).Order("start_date ASC").Find(&cohorts).Error; err != nil {
		return nil, err
	}

	return cohorts, nil
}

func (r *cohortRepository) GetByID(ctx context.Context, id uint) (models.Cohort, error) {
	var cohort models.Cohort
	if err := r.db.WithContext(ctx).First(&cohort, id).Error; err != nil {
		return models.Cohort{}, err
	}

	return cohort, nil
}

func (r *cohortRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Cohort{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *cohortRepository) GetWithMembers(ctx context.Context, id uint) (models.Cohort, error) {
	var cohort models.Cohort
	err := r.db.WithContext(ctx).
		Preload("Students").
		Preload("Instructors").
		First(&cohort, id).Error
	if err != nil {
		return models.Cohort{}, err
	}

	return cohort, nil
}

func (r *cohortRepository) Create(ctx context.Context, cohort *models.Cohort) error {
	return r.db.WithContext(ctx).Create(cohort).Error
}

// Update persists cohort columns only. Membership is managed through
// the association methods, so a stale in-memory member list can never
// be written back.
func (r *cohortRepository) Update(ctx context.Context, cohort *models.Cohort) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(cohort).Error
}

func (r *cohortRepository) AddStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error {
	return r.db.WithContext(ctx).Model(cohort).Association("Students").Append(student)
}

func (r *cohortRepository) RemoveStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error {
	return r.db.WithContext(ctx).Model(cohort).Association("Students").Delete(student)
}

func (r *cohortRepository) AddInstructor(ctx context.Context, cohort *models.Cohort, instructor *models.User) error {
	return r.db.WithContext(ctx).Model(cohort).Association("Instructors").Append(instructor)
}

// Delete removes the cohort after clearing both membership associations,
// so no student or instructor keeps a dangling reference.
func (r *cohortRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cohort := models.Cohort{ID: id}
		if err := tx.Model(&cohort).Association("Students").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&cohort).Association("Instructors").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Cohort{}, id).Error
	})
}
