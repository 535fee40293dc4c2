package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"learnflix/pkg/logger"
	"learnflix/pkg/models"
	"learnflix/pkg/queue"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
)

// TaskPublisher is satisfied by *queue.Client.
type TaskPublisher interface {
	PublishNotificationTask(task map[string]interface{}) error
}

type MessageUseCase interface {
	// Send delivers a teacher's message to one student, or to every student when
	// no recipient is given, and a student's message to every active teacher.
	Send(ctx context.Context, sender entity.Reader, draft entity.Draft) ([]*entity.Message, error)
	Inbox(ctx context.Context, reader entity.Reader, limit, offset int) ([]entity.Message, int64, error)
	UnreadCount(ctx context.Context, reader entity.Reader) (int64, error)
	MarkRead(ctx context.Context, reader entity.Reader, messageID string) error
	Sent(ctx context.Context, senderID string, limit, offset int) ([]entity.Message, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]entity.Message, int64, error)
	Delete(ctx context.Context, messageID string) error
}

type messageUseCase struct {
	messageRepo persistent.MessageRepository
	publisher   TaskPublisher
	logger      *logger.Logger
	now         func() time.Time
}

// NewMessageUseCase accepts a nil publisher.
func NewMessageUseCase(messageRepo persistent.MessageRepository, publisher TaskPublisher, logger *logger.Logger) MessageUseCase {
	return &messageUseCase{
		messageRepo: messageRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *messageUseCase) Send(ctx context.Context, sender entity.Reader, draft entity.Draft) ([]*entity.Message, error) {
	title := strings.TrimSpace(draft.Title)
	content := strings.TrimSpace(draft.Content)
	if title == "" || content == "" {
		return nil, entity.ErrEmptyMessage
	}
	if utf8.RuneCountInString(title) > entity.MaxMessageTitle || utf8.RuneCountInString(content) > entity.MaxMessageContent {
		return nil, entity.ErrMessageTooLong
	}

	var recipients []string
	switch models.UserRole(sender.Role) {
	case models.RoleTeacher:
		if draft.RecipientID != "" {
			if err := uc.checkStudent(ctx, sender.ID, draft.RecipientID); err != nil {
				return nil, err
			}
			recipients = []string{draft.RecipientID}
		}
	case models.RoleStudent:
		if draft.RecipientID != "" {
			return nil, entity.ErrInvalidRecipient
		}
		teachers, err := uc.messageRepo.ActiveUserIDsByRole(ctx, string(models.RoleTeacher))
		if err != nil {
			return nil, err
		}
		if len(teachers) == 0 {
			return nil, entity.ErrNoRecipients
		}
		recipients = teachers
	default:
		return nil, entity.ErrSendForbidden
	}

	var messages []*entity.Message
	if recipients == nil {
		messages = []*entity.Message{{SenderID: sender.ID, Title: title, Content: content, IsBroadcast: true}}
	} else {
		messages = make([]*entity.Message, len(recipients))
		for i := range recipients {
			messages[i] = &entity.Message{SenderID: sender.ID, RecipientID: &recipients[i], Title: title, Content: content}
		}
	}

	if err := uc.messageRepo.Create(ctx, messages); err != nil {
		uc.logger.Error("[MESSAGES] failed to store message from %s: %v", sender.ID, err)
		return nil, err
	}

	if recipients == nil {
		uc.logger.Info("[MESSAGES] teacher %s broadcast %s", sender.ID, messages[0].ID)
	} else {
		uc.logger.Info("[MESSAGES] %s %s sent %d message(s)", sender.Role, sender.ID, len(messages))
		uc.publishReceived(messages)
	}
	return messages, nil
}

func (uc *messageUseCase) checkStudent(ctx context.Context, senderID, recipientID string) error {
	if _, err := uuid.Parse(recipientID); err != nil || recipientID == senderID {
		return entity.ErrRecipientNotFound
	}
	role, err := uc.messageRepo.UserRole(ctx, recipientID)
	if err != nil {
		return err
	}
	if role == "" {
		return entity.ErrRecipientNotFound
	}
	if models.UserRole(role) != models.RoleStudent {
		return entity.ErrInvalidRecipient
	}
	return nil
}

func (uc *messageUseCase) publishReceived(messages []*entity.Message) {
	if uc.publisher == nil {
		return
	}
	for _, m := range messages {
		task := map[string]interface{}{
			"type":       queue.TaskMessageReceived,
			"user_id":    *m.RecipientID,
			"sender_id":  m.SenderID,
			"message_id": m.ID,
			"title":      m.Title,
		}
		if err := uc.publisher.PublishNotificationTask(task); err != nil {
			uc.logger.Warn("[MESSAGES] failed to publish message notification for %s: %v", *m.RecipientID, err)
		}
	}
}

func (uc *messageUseCase) Inbox(ctx context.Context, reader entity.Reader, limit, offset int) ([]entity.Message, int64, error) {
	return uc.messageRepo.Inbox(ctx, reader, limit, offset)
}

func (uc *messageUseCase) UnreadCount(ctx context.Context, reader entity.Reader) (int64, error) {
	return uc.messageRepo.UnreadCount(ctx, reader)
}

func (uc *messageUseCase) MarkRead(ctx context.Context, reader entity.Reader, messageID string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return entity.ErrMessageNotFound
	}
	found, err := uc.messageRepo.MarkRead(ctx, reader, messageID, uc.now().UTC())
	if err != nil {
		return err
	}
	if !found {
		return entity.ErrMessageNotFound
	}
	return nil
}

func (uc *messageUseCase) Sent(ctx context.Context, senderID string, limit, offset int) ([]entity.Message, int64, error) {
	return uc.messageRepo.Sent(ctx, senderID, limit, offset)
}

func (uc *messageUseCase) ListAll(ctx context.Context, limit, offset int) ([]entity.Message, int64, error) {
	return uc.messageRepo.All(ctx, limit, offset)
}

func (uc *messageUseCase) Delete(ctx context.Context, messageID string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return entity.ErrMessageNotFound
	}
	deleted, err := uc.messageRepo.Delete(ctx, messageID)
	if err != nil {
		return err
	}
	if !deleted {
		return entity.ErrMessageNotFound
	}
	uc.logger.Info("[MESSAGES] admin deleted message %s", messageID)
	return nil
}
