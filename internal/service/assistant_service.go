package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
	"github.com/nivora-labs/bootcamp-api/pkg/ai"
)

// ErrEmptyMessage indicates the question contains no usable text.
var ErrEmptyMessage = errors.New("message must not be empty")

// ErrAssistantUnavailable indicates the assistant backend is not configured.
var ErrAssistantUnavailable = errors.New("assistant is not available")

// Number of prior turns replayed to the assistant for context.
const assistantHistoryWindow = 20

// AssistantService answers student questions with conversational context.
// Every exchanged turn is persisted so conversations survive reconnects.
type AssistantService interface {
	Ask(ctx context.Context, studentID uint, payload dto.AssistantAskRequest) (dto.ChatMessageResponse, error)
	History(ctx context.Context, studentID uint, limit int) ([]dto.ChatMessageResponse, error)
}

type assistantService struct {
	chats     repository.ChatRepository
	assistant ai.Assistant
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssistantService constructs the assistant service.
func NewAssistantService(chats repository.ChatRepository, assistant ai.Assistant, validate *validator.Validate, logger zerolog.Logger) AssistantService {
	return &assistantService{
		chats:     chats,
		assistant: assistant,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Ask(ctx context.Context, studentID uint, payload dto.AssistantAskRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	if s.assistant == nil {
		return dto.ChatMessageResponse{}, ErrAssistantUnavailable
	}

	message := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if message == "" {
		return dto.ChatMessageResponse{}, ErrEmptyMessage
	}

	history, err := s.chats.ListByStudent(ctx, studentID, assistantHistoryWindow)
	if err != nil {
		return dto.ChatMessageResponse{}, err
	}

	turns := make([]ai.ChatTurn, 0, len(history))
	for _, entry := range history {
		turns = append(turns, ai.ChatTurn{Role: entry.Role, Content: entry.Content})
	}

	question := models.ChatMessage{
		StudentID: studentID,
		Role:      models.ChatRoleStudent,
		Content:   message,
	}
	if err := s.chats.Create(ctx, &question); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	reply, err := s.assistant.Reply(ctx, turns, message)
	if err != nil {
		s.logger.Error().Err(err).Uint("student_id", studentID).Msg("assistant reply failed")
		return dto.ChatMessageResponse{}, err
	}

	answer := models.ChatMessage{
		StudentID: studentID,
		Role:      models.ChatRoleAssistant,
		Content:   reply,
	}
	if err := s.chats.Create(ctx, &answer); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	return dto.NewChatMessageResponse(answer), nil
}

func (s *assistantService) History(ctx context.Context, studentID uint, limit int) ([]dto.ChatMessageResponse, error) {
	messages, err := s.chats.ListByStudent(ctx, studentID, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewChatMessageResponseSlice(messages), nil
}
