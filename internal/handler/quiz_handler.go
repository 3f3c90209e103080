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

// QuizHandler wires quiz retrieval and submission routes.
type QuizHandler struct {
	service service.QuizService
	logger  zerolog.Logger
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(service service.QuizService, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches quiz endpoints to the router group.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/submissions", h.submit)
	router.Get("/:id/submissions", h.listAttempts)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	quiz, err := h.service.GetQuiz(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.QuizSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), studentID, id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz graded", result)
}

func (h *QuizHandler) listAttempts(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	attempts, err := h.service.ListAttempts(c.Context(), studentID, id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *QuizHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "quiz not found")
	case errors.Is(err, service.ErrAnswerCountMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "answer count does not match question count")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
