package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// ErrCohortNotFound indicates the cohort could not be located.
var ErrCohortNotFound = errors.New("cohort not found")

// ErrCohortCodeTaken indicates another cohort already uses the code.
var ErrCohortCodeTaken = errors.New("cohort code already in use")

// ErrInvalidSchedule indicates the start date is not before the end date.
var ErrInvalidSchedule = errors.New("cohort start date must be before end date")

// ErrCohortFull indicates the cohort has reached its capacity.
var ErrCohortFull = errors.New("cohort is at capacity")

// ErrAlreadyEnrolled indicates the student is already a cohort member.
var ErrAlreadyEnrolled = errors.New("student already enrolled in cohort")

// ErrNotEnrolled indicates the student is not a cohort member.
var ErrNotEnrolled = errors.New("student is not enrolled in cohort")

// ErrNotAStudent indicates the user does not have the student role.
var ErrNotAStudent = errors.New("user is not a student")

// ErrNotAnInstructor indicates the user does not have the instructor role.
var ErrNotAnInstructor = errors.New("user is not an instructor")

// CohortService manages bootcamp cohorts and their membership.
type CohortService interface {
	Create(ctx context.Context, payload dto.CohortCreateRequest) (dto.CohortResponse, error)
	Get(ctx context.Context, id uint) (dto.CohortResponse, error)
	List(ctx context.Context) ([]dto.CohortResponse, error)
	Update(ctx context.Context, id uint, payload dto.CohortUpdateRequest) (dto.CohortResponse, error)
	Delete(ctx context.Context, id uint) error
	AddStudent(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error)
	RemoveStudent(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error)
	AddInstructor(ctx context.Context, cohortID, instructorID uint) (dto.CohortResponse, error)
	// MarkGraduated records the student as a graduate without removing
	// them from the member list.
	MarkGraduated(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error)
	// MarkDropped removes the student from the member list and records
	// them in the dropped set.
	MarkDropped(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error)
}

type cohortService struct {
	cohorts   repository.CohortRepository
	courses   repository.CourseRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCohortService constructs the cohort service.
func NewCohortService(cohorts repository.CohortRepository, courses repository.CourseRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) CohortService {
	return &cohortService{
		cohorts:   cohorts,
		courses:   courses,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "cohort_service").Logger(),
	}
}

func (s *cohortService) Create(ctx context.Context, payload dto.CohortCreateRequest) (dto.CohortResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CohortResponse{}, err
	}

	if !payload.StartDate.Before(payload.EndDate) {
		return dto.CohortResponse{}, ErrInvalidSchedule
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CohortResponse{}, ErrCourseNotFound
		}
		return dto.CohortResponse{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	taken, err := s.cohorts.CodeExists(ctx, code)
	if err != nil {
		return dto.CohortResponse{}, err
	}
	if taken {
		return dto.CohortResponse{}, ErrCohortCodeTaken
	}

	cohort := models.Cohort{
		CourseID:    payload.CourseID,
		Name:        payload.Name,
		Code:        code,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		Status:      models.CohortStatusScheduled,
		MaxStudents: payload.MaxStudents,
	}

	if err := s.cohorts.Create(ctx, &cohort); err != nil {
		return dto.CohortResponse{}, err
	}

	s.logger.Info().Uint("cohort_id", cohort.ID).Str("code", cohort.Code).Msg("cohort created")

	return dto.NewCohortResponse(cohort), nil
}

func (s *cohortService) Get(ctx context.Context, id uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, id)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	return dto.NewCohortResponse(cohort), nil
}

func (s *cohortService) List(ctx context.Context) ([]dto.CohortResponse, error) {
	cohorts, err := s.cohorts.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewCohortResponseSlice(cohorts), nil
}

func (s *cohortService) Update(ctx context.Context, id uint, payload dto.CohortUpdateRequest) (dto.CohortResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CohortResponse{}, err
	}

	cohort, err := s.loadCohort(ctx, id)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	if payload.Name != nil {
		cohort.Name = *payload.Name
	}
	if payload.Status != nil {
		cohort.Status = *payload.Status
	}
	if payload.StartDate != nil {
		cohort.StartDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		cohort.EndDate = *payload.EndDate
	}
	if payload.MaxStudents != nil {
		cohort.MaxStudents = payload.MaxStudents
	}

	if !cohort.StartDate.Before(cohort.EndDate) {
		return dto.CohortResponse{}, ErrInvalidSchedule
	}

	if err := s.cohorts.Update(ctx, &cohort); err != nil {
		return dto.CohortResponse{}, err
	}

	return dto.NewCohortResponse(cohort), nil
}

func (s *cohortService) Delete(ctx context.Context, id uint) error {
	if _, err := s.loadCohort(ctx, id); err != nil {
		return err
	}

	if err := s.cohorts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("cohort_id", id).Msg("cohort deleted")

	return nil
}

func (s *cohortService) AddStudent(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, cohortID)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	student, err := s.loadUser(ctx, studentID)
	if err != nil {
		return dto.CohortResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.CohortResponse{}, ErrNotAStudent
	}

	if cohort.HasStudent(studentID) {
		return dto.CohortResponse{}, ErrAlreadyEnrolled
	}
	if cohort.IsFull() {
		return dto.CohortResponse{}, ErrCohortFull
	}

	if err := s.cohorts.AddStudent(ctx, &cohort, &student); err != nil {
		return dto.CohortResponse{}, err
	}

	s.logger.Info().Uint("cohort_id", cohortID).Uint("student_id", studentID).Msg("student enrolled in cohort")

	return s.Get(ctx, cohortID)
}

func (s *cohortService) RemoveStudent(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, cohortID)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	if !cohort.HasStudent(studentID) {
		return dto.CohortResponse{}, ErrNotEnrolled
	}

	student := models.User{ID: studentID}
	if err := s.cohorts.RemoveStudent(ctx, &cohort, &student); err != nil {
		return dto.CohortResponse{}, err
	}

	return s.Get(ctx, cohortID)
}

func (s *cohortService) AddInstructor(ctx context.Context, cohortID, instructorID uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, cohortID)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	instructor, err := s.loadUser(ctx, instructorID)
	if err != nil {
		return dto.CohortResponse{}, err
	}
	if instructor.Role != models.RoleInstructor {
		return dto.CohortResponse{}, ErrNotAnInstructor
	}

	for _, existing := range cohort.Instructors {
		if existing.ID == instructorID {
			return dto.NewCohortResponse(cohort), nil
		}
	}

	if err := s.cohorts.AddInstructor(ctx, &cohort, &instructor); err != nil {
		return dto.CohortResponse{}, err
	}

	return s.Get(ctx, cohortID)
}

func (s *cohortService) MarkGraduated(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, cohortID)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	if !cohort.HasStudent(studentID) {
		return dto.CohortResponse{}, ErrNotEnrolled
	}

	if !containsID(cohort.Graduated, studentID) {
		cohort.Graduated = append(cohort.Graduated, studentID)
		if err := s.cohorts.Update(ctx, &cohort); err != nil {
			return dto.CohortResponse{}, err
		}
	}

	return s.Get(ctx, cohortID)
}

func (s *cohortService) MarkDropped(ctx context.Context, cohortID, studentID uint) (dto.CohortResponse, error) {
	cohort, err := s.loadCohort(ctx, cohortID)
	if err != nil {
		return dto.CohortResponse{}, err
	}

	if !cohort.HasStudent(studentID) {
		return dto.CohortResponse{}, ErrNotEnrolled
	}

	student := models.User{ID: studentID}
	if err := s.cohorts.RemoveStudent(ctx, &cohort, &student); err != nil {
		return dto.CohortResponse{}, err
	}

	if !containsID(cohort.Dropped, studentID) {
		cohort.Dropped = append(cohort.Dropped, studentID)
		if err := s.cohorts.Update(ctx, &cohort); err != nil {
			return dto.CohortResponse{}, err
		}
	}

	s.logger.Info().Uint("cohort_id", cohortID).Uint("student_id", studentID).Msg("student dropped from cohort")

	return s.Get(ctx, cohortID)
}

func (s *cohortService) loadCohort(ctx context.Context, id uint) (models.Cohort, error) {
	cohort, err := s.cohorts.GetWithMembers(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Cohort{}, ErrCohortNotFound
		}
		return models.Cohort{}, err
	}

	return cohort, nil
}

func (s *cohortService) loadUser(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}
