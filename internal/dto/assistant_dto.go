package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// AssistantAskRequest carries a student question for the chat assistant.
type AssistantAskRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// ChatMessageResponse is one turn of an assistant conversation.
type ChatMessageResponse struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatMessageResponse converts a ChatMessage model into a DTO.
func NewChatMessageResponse(model models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        model.ID,
		Role:      model.Role,
		Content:   model.Content,
		CreatedAt: model.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts chat messages into DTOs.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	responses := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, NewChatMessageResponse(message))
	}

	return responses
}
