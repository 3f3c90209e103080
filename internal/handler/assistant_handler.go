package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/service"
	"github.com/nivora-labs/bootcamp-api/internal/utils"
)

// AssistantHandler wires the chat assistant endpoints including the
// websocket upgrade.
type AssistantHandler struct {
	service service.AssistantService
	logger  zerolog.Logger
}

// NewAssistantHandler constructs the handler.
func NewAssistantHandler(service service.AssistantService, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register binds assistant routes under the provided router group.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/history", h.history)
	router.Post("/ask", h.ask)
}

// wsEnvelope is the frame exchanged over the assistant websocket.
type wsEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *AssistantHandler) handleConnection(conn *websocket.Conn) {
	studentID := websocketUserID(conn)
	if studentID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication required"))
		_ = conn.Close()
		return
	}

	ctx, _ := conn.Locals("request_ctx").(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}

	h.logger.Info().Uint("student_id", studentID).Msg("assistant websocket connected")
	defer h.logger.Info().Uint("student_id", studentID).Msg("assistant websocket disconnected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame wsEnvelope
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Message == "" {
			h.writeFrame(conn, wsEnvelope{Type: "error", Error: "message required"})
			continue
		}

		answer, err := h.service.Ask(ctx, studentID, dto.AssistantAskRequest{Message: frame.Message})
		if err != nil {
			h.writeFrame(conn, wsEnvelope{Type: "error", Error: h.clientMessage(err)})
			continue
		}

		h.writeFrame(conn, wsEnvelope{Type: "answer", Message: answer.Content})
	}
}

func (h *AssistantHandler) writeFrame(conn *websocket.Conn, frame wsEnvelope) {
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Warn().Err(err).Msg("assistant websocket write failed")
	}
}

func (h *AssistantHandler) ask(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.AssistantAskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	answer, err := h.service.Ask(c.Context(), studentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assistant replied", answer)
}

func (h *AssistantHandler) history(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	messages, err := h.service.History(c.Context(), studentID, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "conversation history", messages)
}

func (h *AssistantHandler) clientMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return "message must not be empty"
	case errors.Is(err, service.ErrAssistantUnavailable):
		return "assistant is not available"
	case isValidationError(err):
		return err.Error()
	default:
		h.logger.Error().Err(err).Msg("assistant request failed")
		return "assistant request failed"
	}
}

func (h *AssistantHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, "message must not be empty")
	case errors.Is(err, service.ErrAssistantUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "assistant is not available")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
