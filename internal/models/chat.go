package models

import "time"

// Chat message roles recognised by the assistant.
const (
	ChatRoleStudent   = "student"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a student's conversation with the assistant.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;index" json:"student_id"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
