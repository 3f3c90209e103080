package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
)

type fakeUserRepo struct {
	users map[uint]models.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.users == nil {
		r.users = map[uint]models.User{}
	}
	user.ID = uint(len(r.users) + 1)
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = *user
	return nil
}

type fakeProjectCompleter struct {
	completed [][2]uint
	err       error
}

func (c *fakeProjectCompleter) RecordProjectCompletion(ctx context.Context, studentID, projectID uint) error {
	c.completed = append(c.completed, [2]uint{studentID, projectID})
	return c.err
}

type fakeNotifier struct {
	reviews  []string
	welcomes []string
}

func (n *fakeNotifier) ProjectReviewed(studentEmail, studentName, projectTitle, status, feedback string, grade *int) {
	n.reviews = append(n.reviews, studentEmail+":"+status)
}

func (n *fakeNotifier) Welcome(email, name, role, temporaryPassword string) {
	n.welcomes = append(n.welcomes, email)
}

func newReviewFixture() (*fakeSubmissionRepo, *fakeProjectCompleter, *fakeNotifier, ReviewService) {
	submissions := &fakeSubmissionRepo{}
	projects := &fakeProjectRepo{projects: map[uint]models.Project{
		3: {ID: 3, CourseID: 100, Title: "Capstone API"},
	}}
	users := &fakeUserRepo{users: map[uint]models.User{
		7: {ID: 7, Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent},
	}}
	completer := &fakeProjectCompleter{}
	notifier := &fakeNotifier{}

	svc := NewReviewService(submissions, projects, users, completer, notifier, nil, testValidator(), testLogger())
	return submissions, completer, notifier, svc
}

func TestSubmitProjectRejectsDuplicateActiveSubmission(t *testing.T) {
	_, _, _, svc := newReviewFixture()
	payload := dto.ProjectSubmitRequest{GithubURL: "https://github.com/ana/capstone"}

	first, err := svc.SubmitProject(context.Background(), 7, 3, payload)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, first.Status)

	_, err = svc.SubmitProject(context.Background(), 7, 3, payload)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestSubmitProjectAllowedAfterRejection(t *testing.T) {
	submissions, _, _, svc := newReviewFixture()
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusRejected},
	}
	submissions.nextID = 1

	resubmitted, err := svc.SubmitProject(context.Background(), 7, 3, dto.ProjectSubmitRequest{GithubURL: "https://github.com/ana/capstone"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, resubmitted.Status)
	require.Len(t, submissions.submissions, 2)
}

func TestSubmitProjectUnknownProject(t *testing.T) {
	_, _, _, svc := newReviewFixture()

	_, err := svc.SubmitProject(context.Background(), 7, 99, dto.ProjectSubmitRequest{GithubURL: "https://github.com/ana/capstone"})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestClaimMovesPendingToInReview(t *testing.T) {
	submissions, _, _, svc := newReviewFixture()
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusPending},
	}
	submissions.nextID = 1

	claimed, err := svc.Claim(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusInReview, claimed.Status)
	require.NotNil(t, claimed.ReviewerID)
	require.Equal(t, uint(20), *claimed.ReviewerID)
}

func TestClaimRejectsNonPendingSubmission(t *testing.T) {
	submissions, _, _, svc := newReviewFixture()
	projectID := uint(3)
	reviewer := uint(20)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusInReview, ReviewerID: &reviewer},
	}
	submissions.nextID = 1

	_, err := svc.Claim(context.Background(), 1, 21)
	require.ErrorIs(t, err, ErrSubmissionNotClaimable)
}

func TestReviewApprovalCompletesProjectAndNotifies(t *testing.T) {
	submissions, completer, notifier, svc := newReviewFixture()
	projectID := uint(3)
	reviewer := uint(20)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusInReview, ReviewerID: &reviewer},
	}
	submissions.nextID = 1

	grade := 90
	result, err := svc.Review(context.Background(), 1, 20, dto.ReviewRequest{
		Status:   models.SubmissionStatusApproved,
		Feedback: "clean separation of concerns, ship it",
		Grade:    &grade,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, result.Status)
	require.NotNil(t, result.ReviewedAt)

	require.Equal(t, [][2]uint{{7, 3}}, completer.completed)
	require.Equal(t, []string{"ana@example.com:approved"}, notifier.reviews)
}

func TestReviewRejectionSkipsCompletion(t *testing.T) {
	submissions, completer, notifier, svc := newReviewFixture()
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusInReview},
	}
	submissions.nextID = 1

	result, err := svc.Review(context.Background(), 1, 20, dto.ReviewRequest{
		Status:   models.SubmissionStatusRejected,
		Feedback: "tests are missing for the payment flow",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, result.Status)
	require.Empty(t, completer.completed)
	require.Equal(t, []string{"ana@example.com:rejected"}, notifier.reviews)
}

func TestReviewCompletionFailureDoesNotFailReview(t *testing.T) {
	submissions, completer, _, svc := newReviewFixture()
	completer.err = errors.New("progress store down")
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusInReview},
	}
	submissions.nextID = 1

	result, err := svc.Review(context.Background(), 1, 20, dto.ReviewRequest{
		Status:   models.SubmissionStatusApproved,
		Feedback: "approved despite flaky infra",
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, result.Status)
}

func TestReviewRequiresFeedback(t *testing.T) {
	submissions, _, _, svc := newReviewFixture()
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusInReview},
	}
	submissions.nextID = 1

	_, err := svc.Review(context.Background(), 1, 20, dto.ReviewRequest{
		Status:   models.SubmissionStatusApproved,
		Feedback: "   ",
	})
	require.Error(t, err)
}

func TestQueueReturnsOldestFirst(t *testing.T) {
	submissions, _, _, svc := newReviewFixture()
	projectID := uint(3)
	submissions.submissions = []models.Submission{
		{ID: 1, StudentID: 7, ProjectID: &projectID, Status: models.SubmissionStatusPending},
		{ID: 2, StudentID: 8, ProjectID: &projectID, Status: models.SubmissionStatusPending},
	}
	submissions.nextID = 2

	queue, err := svc.Queue(context.Background(), dto.SubmissionFilter{Statuses: []string{models.SubmissionStatusPending}})
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, uint(1), queue[0].ID)
}
