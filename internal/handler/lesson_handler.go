package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/service"
	"github.com/nivora-labs/bootcamp-api/internal/utils"
)

// LessonHandler wires lesson routes, including the attachment endpoints
// for quizzes and activities and the manual completion endpoint.
type LessonHandler struct {
	catalog  service.CatalogService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(catalog service.CatalogService, progress service.ProgressService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		catalog:  catalog,
		progress: progress,
		logger:   logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// RegisterRead attaches the lesson read and completion endpoints.
func (h *LessonHandler) RegisterRead(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/complete", h.complete)
}

// RegisterWrite attaches the lesson mutation endpoints. The module-scoped
// create endpoint is registered separately under /modules.
func (h *LessonHandler) RegisterWrite(router fiber.Router) {
	router.Delete("/:id", h.delete)
	router.Post("/:id/quiz", h.createQuiz)
	router.Post("/:id/activity", h.createActivity)
}

// RegisterModuleWrite attaches the module-scoped lesson endpoints.
func (h *LessonHandler) RegisterModuleWrite(router fiber.Router) {
	router.Post("/:id/lessons", h.createLesson)
	router.Delete("/:id", h.deleteModule)
}

func (h *LessonHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	lesson, err := h.catalog.GetLesson(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson retrieved", lesson)
}

// complete records a manual lesson completion for the calling student.
// The operation is idempotent: repeating it never changes the progress.
func (h *LessonHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	progress, err := h.progress.RecordLessonCompletion(c.Context(), studentID, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson completed", progress)
}

func (h *LessonHandler) createLesson(c *fiber.Ctx) error {
	moduleID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.catalog.CreateLesson(c.Context(), moduleID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", lesson)
}

func (h *LessonHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.catalog.DeleteLesson(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson deleted", fiber.Map{"id": id})
}

func (h *LessonHandler) deleteModule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.catalog.DeleteModule(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "module deleted", fiber.Map{"id": id})
}

func (h *LessonHandler) createQuiz(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.catalog.CreateQuiz(c.Context(), lessonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *LessonHandler) createActivity(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ActivityCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	activity, err := h.catalog.CreateActivity(c.Context(), lessonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", activity)
}

func (h *LessonHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrModuleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "module not found")
	case errors.Is(err, service.ErrLessonTypeMismatch):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "lesson type does not accept this attachment")
	case errors.Is(err, service.ErrQuizAlreadyExists):
		return utils.SendError(c, fiber.StatusConflict, "lesson already has a quiz")
	case errors.Is(err, service.ErrActivityAlreadyExists):
		return utils.SendError(c, fiber.StatusConflict, "lesson already has an activity")
	case errors.Is(err, service.ErrInvalidCorrectIndex):
		return utils.SendError(c, fiber.StatusBadRequest, "correct answer index out of range")
	case errors.Is(err, service.ErrInvalidWordBounds):
		return utils.SendError(c, fiber.StatusBadRequest, "minimum word count exceeds maximum")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
