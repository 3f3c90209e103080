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

// ActivityHandler wires activity submission routes.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity endpoints to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Post("/:lessonId/submissions", h.submit)
}

func (h *ActivityHandler) submit(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ActivitySubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), studentID, lessonID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity graded", submission)
}

func (h *ActivityHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "activity not found")
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "content must not be empty")
	case errors.Is(err, service.ErrWordCountOutOfRange):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "content word count outside the allowed range")
	case errors.Is(err, service.ErrActivityAlreadyApproved):
		return utils.SendError(c, fiber.StatusConflict, "activity already approved")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
