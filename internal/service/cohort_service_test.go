package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
)

type fakeCohortRepo struct {
	cohorts map[uint]*models.Cohort
	nextID  uint
}

func (r *fakeCohortRepo) List(ctx context.Context) ([]models.Cohort, error) {
	var out []models.Cohort
	for _, c := range r.cohorts {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCohortRepo) GetByID(ctx context.Context, id uint) (models.Cohort, error) {
	return r.GetWithMembers(ctx, id)
}

func (r *fakeCohortRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	for _, c := range r.cohorts {
		if c.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCohortRepo) GetWithMembers(ctx context.Context, id uint) (models.Cohort, error) {
	cohort, ok := r.cohorts[id]
	if !ok {
		return models.Cohort{}, gorm.ErrRecordNotFound
	}
	return *cohort, nil
}

func (r *fakeCohortRepo) Create(ctx context.Context, cohort *models.Cohort) error {
	if r.cohorts == nil {
		r.cohorts = map[uint]*models.Cohort{}
	}
	r.nextID++
	cohort.ID = r.nextID
	stored := *cohort
	r.cohorts[cohort.ID] = &stored
	return nil
}

// Update mirrors the production repository: cohort columns only, the
// member lists stay whatever the association methods made them.
func (r *fakeCohortRepo) Update(ctx context.Context, cohort *models.Cohort) error {
	stored := r.cohorts[cohort.ID]
	updated := *cohort
	updated.Students = stored.Students
	updated.Instructors = stored.Instructors
	r.cohorts[cohort.ID] = &updated
	return nil
}

func (r *fakeCohortRepo) AddStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error {
	stored := r.cohorts[cohort.ID]
	stored.Students = append(stored.Students, *student)
	return nil
}

func (r *fakeCohortRepo) RemoveStudent(ctx context.Context, cohort *models.Cohort, student *models.User) error {
	stored := r.cohorts[cohort.ID]
	kept := stored.Students[:0]
	for _, s := range stored.Students {
		if s.ID != student.ID {
			kept = append(kept, s)
		}
	}
	stored.Students = kept
	return nil
}

func (r *fakeCohortRepo) AddInstructor(ctx context.Context, cohort *models.Cohort, instructor *models.User) error {
	stored := r.cohorts[cohort.ID]
	stored.Instructors = append(stored.Instructors, *instructor)
	return nil
}

func (r *fakeCohortRepo) Delete(ctx context.Context, id uint) error {
	delete(r.cohorts, id)
	return nil
}

type fakeCourseRepo struct {
	courses map[uint]models.Course
}

func (r *fakeCourseRepo) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	return nil, nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (r *fakeCourseRepo) GetWithModules(ctx context.Context, id uint) (models.Course, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error { return nil }
func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error { return nil }
func (r *fakeCourseRepo) Delete(ctx context.Context, id uint) error               { return nil }

func newCohortFixture() (*fakeCohortRepo, *fakeUserRepo, CohortService) {
	cohorts := &fakeCohortRepo{cohorts: map[uint]*models.Cohort{}}
	courses := &fakeCourseRepo{courses: map[uint]models.Course{100: {ID: 100, Title: "Backend Track"}}}
	users := &fakeUserRepo{users: map[uint]models.User{
		7:  {ID: 7, Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent},
		8:  {ID: 8, Name: "Bram", Email: "bram@example.com", Role: models.RoleStudent},
		20: {ID: 20, Name: "Inge", Email: "inge@example.com", Role: models.RoleInstructor},
	}}

	svc := NewCohortService(cohorts, courses, users, testValidator(), testLogger())
	return cohorts, users, svc
}

func cohortPayload(code string) dto.CohortCreateRequest {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	return dto.CohortCreateRequest{
		CourseID:  100,
		Name:      "Backend Batch 12",
		Code:      code,
		StartDate: start,
		EndDate:   start.AddDate(0, 3, 0),
	}
}

func TestCohortCreateNormalisesCode(t *testing.T) {
	_, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("  be-12 "))
	require.NoError(t, err)
	require.Equal(t, "BE-12", created.Code)
	require.Equal(t, models.CohortStatusScheduled, created.Status)
}

func TestCohortCreateRejectsDuplicateCode(t *testing.T) {
	_, _, svc := newCohortFixture()

	_, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), cohortPayload("be-12"))
	require.ErrorIs(t, err, ErrCohortCodeTaken)
}

func TestCohortCreateRejectsInvertedSchedule(t *testing.T) {
	_, _, svc := newCohortFixture()

	payload := cohortPayload("BE-12")
	payload.StartDate, payload.EndDate = payload.EndDate, payload.StartDate

	_, err := svc.Create(context.Background(), payload)
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestCohortCreateUnknownCourse(t *testing.T) {
	_, _, svc := newCohortFixture()

	payload := cohortPayload("BE-12")
	payload.CourseID = 999

	_, err := svc.Create(context.Background(), payload)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAddStudentEnforcesCapacity(t *testing.T) {
	cohorts, _, svc := newCohortFixture()

	payload := cohortPayload("BE-12")
	capacity := 1
	payload.MaxStudents = &capacity
	created, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.AddStudent(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Len(t, cohorts.cohorts[created.ID].Students, 1)

	_, err = svc.AddStudent(context.Background(), created.ID, 8)
	require.ErrorIs(t, err, ErrCohortFull)
}

func TestAddStudentRejectsNonStudentRole(t *testing.T) {
	_, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)

	_, err = svc.AddStudent(context.Background(), created.ID, 20)
	require.ErrorIs(t, err, ErrNotAStudent)
}

func TestAddStudentRejectsDoubleEnrollment(t *testing.T) {
	_, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)

	_, err = svc.AddStudent(context.Background(), created.ID, 7)
	require.NoError(t, err)

	_, err = svc.AddStudent(context.Background(), created.ID, 7)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestAddInstructorRejectsStudentRole(t *testing.T) {
	_, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)

	_, err = svc.AddInstructor(context.Background(), created.ID, 7)
	require.ErrorIs(t, err, ErrNotAnInstructor)
}

func TestMarkGraduatedKeepsEnrollment(t *testing.T) {
	cohorts, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)
	_, err = svc.AddStudent(context.Background(), created.ID, 7)
	require.NoError(t, err)

	result, err := svc.MarkGraduated(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Contains(t, result.Graduated, uint(7))
	require.Len(t, cohorts.cohorts[created.ID].Students, 1)

	// marking twice does not duplicate the entry
	result, err = svc.MarkGraduated(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Len(t, result.Graduated, 1)
}

func TestMarkDroppedRemovesEnrollment(t *testing.T) {
	cohorts, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)
	_, err = svc.AddStudent(context.Background(), created.ID, 7)
	require.NoError(t, err)

	result, err := svc.MarkDropped(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.Contains(t, result.Dropped, uint(7))
	require.Empty(t, cohorts.cohorts[created.ID].Students)
}

func TestMarkDroppedRequiresEnrollment(t *testing.T) {
	_, _, svc := newCohortFixture()

	created, err := svc.Create(context.Background(), cohortPayload("BE-12"))
	require.NoError(t, err)

	_, err = svc.MarkDropped(context.Background(), created.ID, 8)
	require.ErrorIs(t, err, ErrNotEnrolled)
}
