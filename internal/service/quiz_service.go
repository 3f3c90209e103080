package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/observability"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// ErrQuizNotFound indicates the quiz could not be located.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrAnswerCountMismatch indicates the answer sequence does not match the question count.
var ErrAnswerCountMismatch = errors.New("answer count does not match question count")

// LessonCompleter is the slice of the progress tracker the assessment
// engine feeds completions into.
type LessonCompleter interface {
	RecordLessonCompletion(ctx context.Context, studentID, lessonID uint) (dto.ProgressResponse, error)
}

// QuizService grades quiz attempts and records every one of them.
type QuizService interface {
	GetQuiz(ctx context.Context, quizID uint) (dto.QuizResponse, error)
	// Submit grades the attempt by index equality against each question's
	// correct index. Attempts are always recorded; passing additionally
	// marks the owning lesson complete. Retakes never delete prior rows.
	Submit(ctx context.Context, studentID, quizID uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
	ListAttempts(ctx context.Context, studentID, quizID uint) ([]dto.QuizResultResponse, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	attempts  repository.QuizSubmissionRepository
	progress  LessonCompleter
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizService constructs the quiz grading service.
func NewQuizService(quizzes repository.QuizRepository, attempts repository.QuizSubmissionRepository, progress LessonCompleter, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizzes,
		attempts:  attempts,
		progress:  progress,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizService) GetQuiz(ctx context.Context, quizID uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Submit(ctx context.Context, studentID, quizID uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResultResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResultResponse{}, ErrQuizNotFound
		}
		return dto.QuizResultResponse{}, err
	}

	if len(payload.Answers) != len(quiz.Questions) {
		return dto.QuizResultResponse{}, ErrAnswerCountMismatch
	}

	answers := make([]models.QuizAnswer, len(quiz.Questions))
	correct := 0
	for i, question := range quiz.Questions {
		isCorrect := payload.Answers[i] == question.CorrectIndex
		if isCorrect {
			correct++
		}
		answers[i] = models.QuizAnswer{SelectedIndex: payload.Answers[i], Correct: isCorrect}
	}

	score := int(math.Round(100 * float64(correct) / float64(len(quiz.Questions))))
	passed := score >= quiz.PassingScore

	attempt := models.QuizSubmission{
		QuizID:      quiz.ID,
		StudentID:   studentID,
		Answers:     answers,
		Score:       score,
		Passed:      passed,
		CompletedAt: s.now(),
	}

	if err := s.attempts.Create(ctx, &attempt); err != nil {
		return dto.QuizResultResponse{}, err
	}

	if passed {
		observability.LessonCompletions().WithLabelValues("quiz").Inc()
		if _, err := s.progress.RecordLessonCompletion(ctx, studentID, quiz.LessonID); err != nil {
			// The attempt is already recorded; completion is retried on the
			// next passing attempt rather than failing this one.
			s.logger.Error().Err(err).Uint("student_id", studentID).Uint("lesson_id", quiz.LessonID).Msg("failed to record lesson completion after passed quiz")
		}
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("student_id", studentID).Int("score", score).Bool("passed", passed).Msg("quiz attempt recorded")

	return dto.NewQuizResultResponse(attempt), nil
}

func (s *quizService) ListAttempts(ctx context.Context, studentID, quizID uint) ([]dto.QuizResultResponse, error) {
	attempts, err := s.attempts.ListByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizResultResponseSlice(attempts), nil
}
