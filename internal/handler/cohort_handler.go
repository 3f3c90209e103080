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

// CohortHandler wires cohort management routes.
type CohortHandler struct {
	service service.CohortService
	logger  zerolog.Logger
}

// NewCohortHandler constructs the handler.
func NewCohortHandler(service service.CohortService, logger zerolog.Logger) *CohortHandler {
	return &CohortHandler{
		service: service,
		logger:  logger.With().Str("component", "cohort_handler").Logger(),
	}
}

// Register attaches cohort endpoints to the router group.
func (h *CohortHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/students/:studentId", h.addStudent)
	router.Delete("/:id/students/:studentId", h.removeStudent)
	router.Post("/:id/instructors/:instructorId", h.addInstructor)
	router.Post("/:id/students/:studentId/graduate", h.graduate)
	router.Post("/:id/students/:studentId/drop", h.drop)
}

func (h *CohortHandler) list(c *fiber.Ctx) error {
	cohorts, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohorts retrieved", cohorts)
}

func (h *CohortHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort retrieved", cohort)
}

func (h *CohortHandler) create(c *fiber.Ctx) error {
	var payload dto.CohortCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	cohort, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "cohort created", cohort)
}

func (h *CohortHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CohortUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	cohort, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort updated", cohort)
}

func (h *CohortHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "cohort deleted", fiber.Map{"id": id})
}

func (h *CohortHandler) addStudent(c *fiber.Ctx) error {
	cohortID, studentID, err := h.memberParams(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.AddStudent(c.Context(), cohortID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student enrolled", cohort)
}

func (h *CohortHandler) removeStudent(c *fiber.Ctx) error {
	cohortID, studentID, err := h.memberParams(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.RemoveStudent(c.Context(), cohortID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student removed", cohort)
}

func (h *CohortHandler) addInstructor(c *fiber.Ctx) error {
	cohortID, instructorID, err := h.memberParams(c, "instructorId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.AddInstructor(c.Context(), cohortID, instructorID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "instructor assigned", cohort)
}

func (h *CohortHandler) graduate(c *fiber.Ctx) error {
	cohortID, studentID, err := h.memberParams(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.MarkGraduated(c.Context(), cohortID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student graduated", cohort)
}

func (h *CohortHandler) drop(c *fiber.Ctx) error {
	cohortID, studentID, err := h.memberParams(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	cohort, err := h.service.MarkDropped(c.Context(), cohortID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student dropped", cohort)
}

func (h *CohortHandler) memberParams(c *fiber.Ctx, member string) (uint, uint, error) {
	cohortID, err := parseUintParam(c, "id")
	if err != nil {
		return 0, 0, err
	}

	memberID, err := parseUintParam(c, member)
	if err != nil {
		return 0, 0, err
	}

	return cohortID, memberID, nil
}

func (h *CohortHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCohortNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "cohort not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrCohortCodeTaken):
		return utils.SendError(c, fiber.StatusConflict, "cohort code already in use")
	case errors.Is(err, service.ErrInvalidSchedule):
		return utils.SendError(c, fiber.StatusBadRequest, "cohort start date must be before end date")
	case errors.Is(err, service.ErrCohortFull):
		return utils.SendError(c, fiber.StatusConflict, "cohort is at capacity")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return utils.SendError(c, fiber.StatusConflict, "student already enrolled")
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, "student is not enrolled")
	case errors.Is(err, service.ErrNotAStudent):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "user is not a student")
	case errors.Is(err, service.ErrNotAnInstructor):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "user is not an instructor")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
