package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
	"github.com/nivora-labs/bootcamp-api/pkg/ai"
)

type fakeActivityRepo struct {
	activities map[uint]models.Activity
}

func (r *fakeActivityRepo) GetByLesson(ctx context.Context, lessonID uint) (models.Activity, error) {
	activity, ok := r.activities[lessonID]
	if !ok {
		return models.Activity{}, gorm.ErrRecordNotFound
	}
	return activity, nil
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error { return nil }

type fakeSubmissionRepo struct {
	submissions []models.Submission
	nextID      uint
}

func (r *fakeSubmissionRepo) ListQueue(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range r.submissions {
		if filter.StudentID != nil && s.StudentID != *filter.StudentID {
			continue
		}
		if filter.ProjectID != nil && (s.ProjectID == nil || *s.ProjectID != *filter.ProjectID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, s.Status) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	for _, s := range r.submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) HasActiveForProject(ctx context.Context, studentID, projectID uint) (bool, error) {
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.ProjectID != nil && *s.ProjectID == projectID && s.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) HasApprovedForLesson(ctx context.Context, studentID, lessonID uint) (bool, error) {
	for _, s := range r.submissions {
		if s.StudentID == studentID && s.LessonID != nil && *s.LessonID == lessonID && s.Status == models.SubmissionStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	r.nextID++
	submission.ID = r.nextID
	submission.CreatedAt = time.Now()
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	for i, s := range r.submissions {
		if s.ID == submission.ID {
			r.submissions[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) DeleteInactiveForLesson(ctx context.Context, studentID, lessonID uint) error {
	kept := r.submissions[:0]
	for _, s := range r.submissions {
		superseded := s.StudentID == studentID && s.LessonID != nil && *s.LessonID == lessonID &&
			(s.Status == models.SubmissionStatusPending || s.Status == models.SubmissionStatusRejected)
		if !superseded {
			kept = append(kept, s)
		}
	}
	r.submissions = kept
	return nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

type fakeGrader struct {
	result ai.GradeResult
	err    error
	calls  int
}

func (g *fakeGrader) Grade(ctx context.Context, activity ai.ActivityContext, content string) (ai.GradeResult, error) {
	g.calls++
	return g.result, g.err
}

func minWordsActivity(lessonID uint, minWords, maxWords int) models.Activity {
	return models.Activity{
		ID:       1,
		LessonID: lessonID,
		Title:    "Reflection",
		MinWords: &minWords,
		MaxWords: &maxWords,
	}
}

func TestActivitySubmitApprovedAboveThreshold(t *testing.T) {
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	submissions := &fakeSubmissionRepo{}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 8.5, Feedback: "solid work"}}
	completer := &fakeCompleter{}

	svc := NewActivityService(activities, submissions, grader, completer, testValidator(), time.Second, testLogger())

	result, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "a thoughtful reflection on the material"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, result.Status)
	require.NotNil(t, result.Grade)
	require.Equal(t, 85, *result.Grade)
	require.Equal(t, "solid work", result.Feedback)

	// approval marks the lesson complete
	require.Equal(t, []uint{40}, completer.calls)
}

func TestActivitySubmitGradeAtThresholdIsRejected(t *testing.T) {
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 7.0, Feedback: "close but not enough"}}
	completer := &fakeCompleter{}

	svc := NewActivityService(activities, &fakeSubmissionRepo{}, grader, completer, testValidator(), time.Second, testLogger())

	result, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "some words here"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, result.Status)
	require.Equal(t, 70, *result.Grade)
	require.Empty(t, completer.calls)
}

func TestActivitySubmitWordBoundsCheckedBeforeOracle(t *testing.T) {
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 10, 20)}}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 9}}

	svc := NewActivityService(activities, &fakeSubmissionRepo{}, grader, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	_, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "too short"})
	require.ErrorIs(t, err, ErrWordCountOutOfRange)
	require.Zero(t, grader.calls)
}

func TestActivitySubmitEmptyContent(t *testing.T) {
	svc := NewActivityService(&fakeActivityRepo{}, &fakeSubmissionRepo{}, &fakeGrader{}, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	_, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "   \n\t  "})
	require.ErrorIs(t, err, ErrEmptyContent)
}

func TestActivitySubmitConflictsWhenAlreadyApproved(t *testing.T) {
	lessonID := uint(40)
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	submissions := &fakeSubmissionRepo{nextID: 1, submissions: []models.Submission{
		{ID: 1, StudentID: 7, LessonID: &lessonID, Status: models.SubmissionStatusApproved},
	}}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 9}}

	svc := NewActivityService(activities, submissions, grader, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	_, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "another go at it"})
	require.ErrorIs(t, err, ErrActivityAlreadyApproved)
	require.Zero(t, grader.calls)
}

func TestActivityResubmissionSupersedesRejected(t *testing.T) {
	lessonID := uint(40)
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	submissions := &fakeSubmissionRepo{nextID: 1, submissions: []models.Submission{
		{ID: 1, StudentID: 7, LessonID: &lessonID, Status: models.SubmissionStatusRejected},
	}}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 8, Feedback: "much improved"}}

	svc := NewActivityService(activities, submissions, grader, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	result, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "a better attempt this time"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, result.Status)

	// only the fresh submission remains for this lesson
	require.Len(t, submissions.submissions, 1)
	require.Equal(t, result.ID, submissions.submissions[0].ID)
}

func TestActivityOracleFailureFallsBackToNeutralGrade(t *testing.T) {
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	grader := &fakeGrader{err: errors.New("oracle timeout")}
	completer := &fakeCompleter{}

	svc := NewActivityService(activities, &fakeSubmissionRepo{}, grader, completer, testValidator(), time.Second, testLogger())

	result, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "content that never gets graded"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, result.Status)
	require.Equal(t, 50, *result.Grade)
	require.Equal(t, fallbackFeedback, result.Feedback)
	require.Empty(t, completer.calls)
}

func TestActivityOutOfRangeGradeFallsBack(t *testing.T) {
	activities := &fakeActivityRepo{activities: map[uint]models.Activity{40: minWordsActivity(40, 1, 100)}}
	grader := &fakeGrader{result: ai.GradeResult{Grade: 42, Feedback: "impossible"}}

	svc := NewActivityService(activities, &fakeSubmissionRepo{}, grader, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	result, err := svc.Submit(context.Background(), 7, 40, dto.ActivitySubmitRequest{Content: "ordinary submission text"})
	require.NoError(t, err)
	require.Equal(t, 50, *result.Grade)
	require.Equal(t, fallbackFeedback, result.Feedback)
}

func TestActivitySubmitUnknownLesson(t *testing.T) {
	svc := NewActivityService(&fakeActivityRepo{activities: map[uint]models.Activity{}}, &fakeSubmissionRepo{}, &fakeGrader{}, &fakeCompleter{}, testValidator(), time.Second, testLogger())

	_, err := svc.Submit(context.Background(), 7, 99, dto.ActivitySubmitRequest{Content: "anything"})
	require.ErrorIs(t, err, ErrActivityNotFound)
}
