package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"classroom-live-backend/internal/models"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) SendMessage(sender *models.User, content, messageType string) (*models.Message, error) {
	if sender.SessionID == nil {
		return nil, errors.New("you are not in a session")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message content is required")
	}
	if len(content) > models.MessageMaxLength {
		return nil, errors.New("message must be 1000 characters or less")
	}
	if messageType == "" {
		messageType = models.MessageTypeText
	}
	if !models.ValidMessageType(messageType) {
		return nil, errors.New("invalid message type")
	}

	message := models.Message{
		Content:     content,
		SenderID:    sender.ID,
		SenderName:  sender.Name,
		SenderRole:  sender.Role,
		SessionID:   *sender.SessionID,
		MessageType: messageType,
	}
	if err := s.db.Create(&message).Error; err != nil {
		log.Printf("chat: send in session %d: %v", *sender.SessionID, err)
		return nil, errors.New("failed to send message")
	}
	return &message, nil
}

// DeleteMessage soft-deletes: content stays for audit, read paths filter it.
func (s *ChatService) DeleteMessage(actor *models.User, messageID uint) (*models.Message, error) {
	if actor.Role != models.RoleFacilitator {
		return nil, errors.New("only facilitators can delete messages")
	}

	var message models.Message
	if err := s.db.First(&message, messageID).Error; err != nil {
		return nil, ErrMessageNotFound
	}

	now := time.Now()
	message.IsDeleted = true
	message.DeletedAt = &now
	message.DeletedBy = &actor.ID
	if err := s.db.Save(&message).Error; err != nil {
		log.Printf("chat: delete message %d: %v", messageID, err)
		return nil, errors.New("failed to delete message")
	}
	return &message, nil
}

func (s *ChatService) ListMessages(sessionID uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var messages []models.Message
	if err := s.db.Where("session_id = ? AND is_deleted = ?", sessionID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		log.Printf("chat: list for session %d: %v", sessionID, err)
		return nil, errors.New("failed to load messages")
	}

	// Oldest first for the client.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
