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

// SubmissionHandler wires the project submission and review routes.
type SubmissionHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.ReviewService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterStudent attaches the student-facing project submission endpoint.
func (h *SubmissionHandler) RegisterStudent(router fiber.Router) {
	router.Post("/:id/submissions", h.submit)
}

// RegisterInstructor attaches the review queue and decision endpoints.
func (h *SubmissionHandler) RegisterInstructor(router fiber.Router) {
	router.Get("", h.queue)
	router.Post("/:id/claim", h.claim)
	router.Patch("/:id/review", h.review)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ProjectSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.SubmitProject(c.Context(), studentID, projectID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project submitted", submission)
}

func (h *SubmissionHandler) queue(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{}

	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID

	projectID, err := parseQueryUint(c, "project_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.ProjectID = projectID

	if status := c.Query("status"); status != "" {
		filter.Statuses = splitAndTrim(status)
	}

	submissions, err := h.service.Queue(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) claim(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reviewerID := userIDFromContext(c)
	if reviewerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submission, err := h.service.Claim(c.Context(), id, reviewerID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission claimed", submission)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reviewerID := userIDFromContext(c)
	if reviewerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Review(c.Context(), id, reviewerID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, "an active submission already exists for this project")
	case errors.Is(err, service.ErrSubmissionNotClaimable):
		return utils.SendError(c, fiber.StatusConflict, "submission is not pending")
	case errors.Is(err, service.ErrInvalidReviewStatus):
		return utils.SendError(c, fiber.StatusBadRequest, "review status must be approved or rejected")
	case errors.Is(err, service.ErrEmptyFeedback):
		return utils.SendError(c, fiber.StatusBadRequest, "review feedback is required")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
