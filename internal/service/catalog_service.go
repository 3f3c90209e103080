package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// ErrCourseNotFound indicates the course could not be located.
var ErrCourseNotFound = errors.New("course not found")

// ErrModuleNotFound indicates the module could not be located.
var ErrModuleNotFound = errors.New("module not found")

// ErrLessonTypeMismatch indicates a quiz or activity was attached to a
// lesson of the wrong type.
var ErrLessonTypeMismatch = errors.New("lesson type does not accept this attachment")

// ErrQuizAlreadyExists indicates the lesson already has a quiz.
var ErrQuizAlreadyExists = errors.New("lesson already has a quiz")

// ErrActivityAlreadyExists indicates the lesson already has an activity.
var ErrActivityAlreadyExists = errors.New("lesson already has an activity")

// ErrInvalidCorrectIndex indicates a question's correct answer index
// falls outside its options.
var ErrInvalidCorrectIndex = errors.New("correct answer index out of range for options")

// ErrInvalidWordBounds indicates min words exceeds max words.
var ErrInvalidWordBounds = errors.New("minimum word count exceeds maximum")

// CatalogService manages the course, module, and lesson hierarchy along
// with quiz, activity, and project attachments.
type CatalogService interface {
	CreateCourse(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id uint) error

	CreateModule(ctx context.Context, courseID uint, payload dto.ModuleCreateRequest) (dto.ModuleResponse, error)
	DeleteModule(ctx context.Context, id uint) error

	CreateLesson(ctx context.Context, moduleID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	GetLesson(ctx context.Context, id uint) (dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, id uint) error

	// CreateQuiz attaches a quiz to a quiz-type lesson. One quiz per lesson.
	CreateQuiz(ctx context.Context, lessonID uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	// CreateActivity attaches an activity to an activity-type lesson.
	CreateActivity(ctx context.Context, lessonID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error)

	CreateProject(ctx context.Context, courseID uint, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error)
	ListProjects(ctx context.Context, courseID uint) ([]dto.ProjectResponse, error)
}

type catalogService struct {
	courses    repository.CourseRepository
	modules    repository.ModuleRepository
	lessons    repository.LessonRepository
	quizzes    repository.QuizRepository
	activities repository.ActivityRepository
	projects   repository.ProjectRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(
	courses repository.CourseRepository,
	modules repository.ModuleRepository,
	lessons repository.LessonRepository,
	quizzes repository.QuizRepository,
	activities repository.ActivityRepository,
	projects repository.ProjectRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		courses:    courses,
		modules:    modules,
		lessons:    lessons,
		quizzes:    quizzes,
		activities: activities,
		projects:   projects,
		validator:  validate,
		logger:     logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) CreateCourse(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:         payload.Title,
		Description:   payload.Description,
		DurationHours: payload.DurationHours,
		Prerequisites: payload.Prerequisites,
		IsActive:      true,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("title", course.Title).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *catalogService) GetCourse(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetWithModules(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *catalogService) ListCourses(ctx context.Context, activeOnly bool) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	return dto.NewCourseResponseSlice(courses), nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = *payload.Title
	}
	if payload.Description != nil {
		course.Description = *payload.Description
	}
	if payload.DurationHours != nil {
		course.DurationHours = *payload.DurationHours
	}
	if payload.Prerequisites != nil {
		course.Prerequisites = *payload.Prerequisites
	}
	if payload.IsActive != nil {
		course.IsActive = *payload.IsActive
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.courses.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("course_id", id).Msg("course deleted")

	return nil
}

func (s *catalogService) CreateModule(ctx context.Context, courseID uint, payload dto.ModuleCreateRequest) (dto.ModuleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ModuleResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ModuleResponse{}, ErrCourseNotFound
		}
		return dto.ModuleResponse{}, err
	}

	module := models.Module{
		CourseID:       courseID,
		Title:          payload.Title,
		Description:    payload.Description,
		Sequence:       payload.Sequence,
		EstimatedHours: payload.EstimatedHours,
	}

	if err := s.modules.Create(ctx, &module); err != nil {
		return dto.ModuleResponse{}, err
	}

	return dto.NewModuleResponse(module), nil
}

func (s *catalogService) DeleteModule(ctx context.Context, id uint) error {
	if _, err := s.modules.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrModuleNotFound
		}
		return err
	}

	return s.modules.Delete(ctx, id)
}

func (s *catalogService) CreateLesson(ctx context.Context, moduleID uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrModuleNotFound
		}
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		ModuleID:  moduleID,
		Title:     payload.Title,
		Content:   payload.Content,
		Type:      payload.Type,
		Sequence:  payload.Sequence,
		VideoURL:  payload.VideoURL,
		Resources: payload.Resources,
	}

	if err := s.lessons.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("module_id", moduleID).Str("type", lesson.Type).Msg("lesson created")

	return dto.NewLessonResponse(lesson), nil
}

func (s *catalogService) GetLesson(ctx context.Context, id uint) (dto.LessonResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	return dto.NewLessonResponse(lesson), nil
}

func (s *catalogService) DeleteLesson(ctx context.Context, id uint) error {
	if _, err := s.lessons.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	return s.lessons.Delete(ctx, id)
}

func (s *catalogService) CreateQuiz(ctx context.Context, lessonID uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrLessonNotFound
		}
		return dto.QuizResponse{}, err
	}
	if lesson.Type != models.LessonTypeQuiz {
		return dto.QuizResponse{}, ErrLessonTypeMismatch
	}

	if _, err := s.quizzes.GetByLesson(ctx, lessonID); err == nil {
		return dto.QuizResponse{}, ErrQuizAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.QuizResponse{}, err
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		if q.CorrectIndex >= len(q.Options) {
			return dto.QuizResponse{}, ErrInvalidCorrectIndex
		}
		questions = append(questions, models.Question{
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			Sequence:     i + 1,
		})
	}

	quiz := models.Quiz{
		LessonID:         lessonID,
		PassingScore:     payload.PassingScore,
		TimeLimitMinutes: payload.TimeLimitMinutes,
		Questions:        questions,
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("lesson_id", lessonID).Int("questions", len(questions)).Msg("quiz created")

	return dto.NewQuizResponse(quiz), nil
}

func (s *catalogService) CreateActivity(ctx context.Context, lessonID uint, payload dto.ActivityCreateRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ActivityResponse{}, err
	}

	if payload.MinWords != nil && payload.MaxWords != nil && *payload.MinWords > *payload.MaxWords {
		return dto.ActivityResponse{}, ErrInvalidWordBounds
	}

	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrLessonNotFound
		}
		return dto.ActivityResponse{}, err
	}
	if lesson.Type != models.LessonTypeActivity {
		return dto.ActivityResponse{}, ErrLessonTypeMismatch
	}

	if _, err := s.activities.GetByLesson(ctx, lessonID); err == nil {
		return dto.ActivityResponse{}, ErrActivityAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ActivityResponse{}, err
	}

	activity := models.Activity{
		LessonID:       lessonID,
		Title:          payload.Title,
		Description:    payload.Description,
		Instructions:   payload.Instructions,
		MinWords:       payload.MinWords,
		MaxWords:       payload.MaxWords,
		ExpectedFormat: payload.ExpectedFormat,
		Resources:      payload.Resources,
	}

	if err := s.activities.Create(ctx, &activity); err != nil {
		return dto.ActivityResponse{}, err
	}

	return dto.NewActivityResponse(activity), nil
}

func (s *catalogService) CreateProject(ctx context.Context, courseID uint, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrCourseNotFound
		}
		return dto.ProjectResponse{}, err
	}

	project := models.Project{
		CourseID:    courseID,
		Title:       payload.Title,
		Description: payload.Description,
	}

	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	return dto.NewProjectResponse(project), nil
}

func (s *catalogService) ListProjects(ctx context.Context, courseID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, dto.NewProjectResponse(project))
	}

	return responses, nil
}
