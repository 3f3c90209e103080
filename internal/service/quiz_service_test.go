package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
)

type fakeQuizRepo struct {
	quizzes map[uint]models.Quiz
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, ok := r.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) GetByLesson(ctx context.Context, lessonID uint) (models.Quiz, error) {
	for _, quiz := range r.quizzes {
		if quiz.LessonID == lessonID {
			return quiz, nil
		}
	}
	return models.Quiz{}, gorm.ErrRecordNotFound
}

func (r *fakeQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error { return nil }

type fakeQuizSubmissionRepo struct {
	attempts []models.QuizSubmission
}

func (r *fakeQuizSubmissionRepo) Create(ctx context.Context, submission *models.QuizSubmission) error {
	submission.ID = uint(len(r.attempts) + 1)
	r.attempts = append(r.attempts, *submission)
	return nil
}

func (r *fakeQuizSubmissionRepo) ListByStudentAndQuiz(ctx context.Context, studentID, quizID uint) ([]models.QuizSubmission, error) {
	var out []models.QuizSubmission
	for _, attempt := range r.attempts {
		if attempt.StudentID == studentID && attempt.QuizID == quizID {
			out = append(out, attempt)
		}
	}
	return out, nil
}

type fakeCompleter struct {
	calls []uint
	err   error
}

func (c *fakeCompleter) RecordLessonCompletion(ctx context.Context, studentID, lessonID uint) (dto.ProgressResponse, error) {
	c.calls = append(c.calls, lessonID)
	return dto.ProgressResponse{}, c.err
}

func fourQuestionQuiz() models.Quiz {
	return models.Quiz{
		ID:           1,
		LessonID:     40,
		PassingScore: 70,
		Questions: []models.Question{
			{ID: 1, CorrectIndex: 0},
			{ID: 2, CorrectIndex: 1},
			{ID: 3, CorrectIndex: 2},
			{ID: 4, CorrectIndex: 3},
		},
	}
}

func TestQuizSubmitGradesByIndexEquality(t *testing.T) {
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: fourQuestionQuiz()}}
	attempts := &fakeQuizSubmissionRepo{}
	completer := &fakeCompleter{}

	svc := NewQuizService(quizzes, attempts, completer, testValidator(), testLogger())

	result, err := svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{0, 1, 2, 0}})
	require.NoError(t, err)
	require.Equal(t, 75, result.Score)
	require.True(t, result.Passed)
	require.Len(t, result.Answers, 4)
	require.True(t, result.Answers[0].Correct)
	require.False(t, result.Answers[3].Correct)

	// passing marks the owning lesson complete exactly once
	require.Equal(t, []uint{40}, completer.calls)
	require.Len(t, attempts.attempts, 1)
}

func TestQuizSubmitFailingScoreSkipsCompletion(t *testing.T) {
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: fourQuestionQuiz()}}
	attempts := &fakeQuizSubmissionRepo{}
	completer := &fakeCompleter{}

	svc := NewQuizService(quizzes, attempts, completer, testValidator(), testLogger())

	result, err := svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{3, 3, 3, 3}})
	require.NoError(t, err)
	require.Equal(t, 25, result.Score)
	require.False(t, result.Passed)
	require.Empty(t, completer.calls)

	// the failed attempt is still recorded
	require.Len(t, attempts.attempts, 1)
}

func TestQuizSubmitAnswerCountMismatch(t *testing.T) {
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: fourQuestionQuiz()}}
	svc := NewQuizService(quizzes, &fakeQuizSubmissionRepo{}, &fakeCompleter{}, testValidator(), testLogger())

	_, err := svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{0, 1}})
	require.ErrorIs(t, err, ErrAnswerCountMismatch)
}

func TestQuizSubmitUnknownQuiz(t *testing.T) {
	svc := NewQuizService(&fakeQuizRepo{quizzes: map[uint]models.Quiz{}}, &fakeQuizSubmissionRepo{}, &fakeCompleter{}, testValidator(), testLogger())

	_, err := svc.Submit(context.Background(), 7, 9, dto.QuizSubmitRequest{Answers: []int{0}})
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizSubmitCompletionFailureDoesNotFailAttempt(t *testing.T) {
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: fourQuestionQuiz()}}
	attempts := &fakeQuizSubmissionRepo{}
	completer := &fakeCompleter{err: gorm.ErrInvalidDB}

	svc := NewQuizService(quizzes, attempts, completer, testValidator(), testLogger())

	result, err := svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{0, 1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, 100, result.Score)
	require.Len(t, attempts.attempts, 1)
}

func TestQuizRetakesKeepEveryAttempt(t *testing.T) {
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: fourQuestionQuiz()}}
	attempts := &fakeQuizSubmissionRepo{}
	completer := &fakeCompleter{}

	svc := NewQuizService(quizzes, attempts, completer, testValidator(), testLogger())

	_, err := svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{3, 3, 3, 3}})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 7, 1, dto.QuizSubmitRequest{Answers: []int{0, 1, 2, 3}})
	require.NoError(t, err)

	listed, err := svc.ListAttempts(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestGetQuizWithholdsCorrectAnswers(t *testing.T) {
	quiz := fourQuestionQuiz()
	quiz.Questions[0].Options = []string{"a", "b", "c"}
	quizzes := &fakeQuizRepo{quizzes: map[uint]models.Quiz{1: quiz}}

	svc := NewQuizService(quizzes, &fakeQuizSubmissionRepo{}, &fakeCompleter{}, testValidator(), testLogger())

	view, err := svc.GetQuiz(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Questions, 4)
	require.Equal(t, []string{"a", "b", "c"}, view.Questions[0].Options)
}
