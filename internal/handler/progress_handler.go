package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/service"
	"github.com/nivora-labs/bootcamp-api/internal/utils"
)

// ProgressHandler wires progress and dashboard routes.
type ProgressHandler struct {
	progress  service.ProgressService
	dashboard service.DashboardService
	logger    zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(progress service.ProgressService, dashboard service.DashboardService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "progress_handler").Logger(),
	}
}

// RegisterProgress attaches the per-course progress endpoint.
func (h *ProgressHandler) RegisterProgress(router fiber.Router) {
	router.Get("/:courseId", h.get)
}

// RegisterDashboard attaches the aggregate dashboard endpoint.
func (h *ProgressHandler) RegisterDashboard(router fiber.Router) {
	router.Get("", h.getDashboard)
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	// GetProgress creates a zero-valued record on first access, so there
	// is no not-found outcome to map here.
	progress, err := h.progress.GetProgress(c.Context(), studentID, courseID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) getDashboard(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	dashboard, err := h.dashboard.GetDashboard(c.Context(), studentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
