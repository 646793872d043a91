package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/coinvest-api/models"
	"gorm.io/gorm"
)

type SupportService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSupportService(db *gorm.DB, log *logrus.Logger) *SupportService {
	return &SupportService{db: db, log: log}
}

// Open starts a conversation with its first message.
func (s *SupportService) Open(ctx context.Context, user *models.Profile, subject, content string) (*models.Conversation, *models.Message, error) {
	subject = strings.TrimSpace(subject)
	content = strings.TrimSpace(content)
	if subject == "" || content == "" {
		return nil, nil, ErrEmptyMessage
	}

	now := messageTime()
	conversation := models.Conversation{
		UserID:        user.ID,
		Subject:       subject,
		Status:        models.ConversationStatusOpen,
		LastMessageAt: now,
	}
	message := models.Message{
		CreatedAt:  now,
		SenderID:   user.ID,
		SenderRole: models.RoleUser,
		Content:    content,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversation).Error; err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		message.ConversationID = conversation.ID
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{"conversation_id": conversation.ID, "user_id": user.ID}).Info("conversation opened")
	return &conversation, &message, nil
}

// List returns conversations, most recently active first. A nil userID lists everyone's.
func (s *SupportService) List(ctx context.Context, userID *uuid.UUID, status string, page Page) ([]models.Conversation, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Conversation{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conversations []models.Conversation
	err := page.apply(q).Order("last_message_at DESC").Find(&conversations).Error
	return conversations, total, err
}

// conversationFor loads a conversation the viewer may see. Users only see their own.
func (s *SupportService) conversationFor(ctx context.Context, id uuid.UUID, viewer *models.Profile) (*models.Conversation, error) {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if !viewer.IsAdmin() {
		q = q.Where("user_id = ?", viewer.ID)
	}
	var conversation models.Conversation
	if err := q.First(&conversation).Error; err != nil {
		return nil, notFound(err)
	}
	return &conversation, nil
}

// messageTime stamps messages at the precision Postgres stores, so a
// created_at echoed to the client is a valid since cursor.
func messageTime() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// Messages returns the thread in order. With since set, only newer messages
// are returned so clients can poll.
func (s *SupportService) Messages(ctx context.Context, id uuid.UUID, viewer *models.Profile, since *time.Time) ([]models.Message, error) {
	if _, err := s.conversationFor(ctx, id, viewer); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("conversation_id = ?", id)
	if since != nil {
		q = q.Where("created_at > ?", since.Local())
	}
	var messages []models.Message
	err := q.Order("created_at ASC").Find(&messages).Error
	return messages, err
}

// Post appends a message. Admin replies are tagged with the admin role.
func (s *SupportService) Post(ctx context.Context, id uuid.UUID, sender *models.Profile, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	conversation, err := s.conversationFor(ctx, id, sender)
	if err != nil {
		return nil, err
	}
	if conversation.Status == models.ConversationStatusClosed {
		return nil, ErrConversationClosed
	}

	role := models.RoleUser
	if sender.IsAdmin() && conversation.UserID != sender.ID {
		role = models.RoleAdmin
	}
	message := models.Message{
		CreatedAt:      messageTime(),
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		SenderRole:     role,
		Content:        content,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", message.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *SupportService) Close(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	res := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("status", models.ConversationStatusClosed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var conversation models.Conversation
	if err := s.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &conversation, nil
}
