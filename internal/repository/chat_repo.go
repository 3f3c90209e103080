package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// ChatRepository defines data operations for assistant conversations.
type ChatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository instantiates the repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByStudent returns the most recent messages in chronological order.
func (r *chatRepository) ListByStudent(ctx context.Context, studentID uint, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
