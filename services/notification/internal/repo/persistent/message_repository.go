package persistent

import (
	"context"
	"time"

	"learnflix/pkg/models"
	"learnflix/services/notification/internal/entity"
	"learnflix/services/notification/internal/model"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, messages []*entity.Message) error
	// UserRole returns "" when userID does not exist.
	UserRole(ctx context.Context, userID string) (string, error)
	ActiveUserIDsByRole(ctx context.Context, role string) ([]string, error)
	Inbox(ctx context.Context, reader entity.Reader, limit, offset int) ([]entity.Message, int64, error)
	UnreadCount(ctx context.Context, reader entity.Reader) (int64, error)
	// MarkRead keeps the first read time and reports whether the message is visible to reader.
	MarkRead(ctx context.Context, reader entity.Reader, messageID string, at time.Time) (bool, error)
	Sent(ctx context.Context, senderID string, limit, offset int) ([]entity.Message, int64, error)
	All(ctx context.Context, limit, offset int) ([]entity.Message, int64, error)
	Delete(ctx context.Context, messageID string) (bool, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func toMessageModel(m *entity.Message) *model.MessageModel {
	return &model.MessageModel{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Title:       m.Title,
		Content:     m.Content,
		IsBroadcast: m.IsBroadcast,
	}
}

func toMessage(row *model.MessageRow) entity.Message {
	return entity.Message{
		ID:          row.ID,
		SenderID:    row.SenderID,
		SenderName:  row.SenderName,
		RecipientID: row.RecipientID,
		Title:       row.Title,
		Content:     row.Content,
		IsBroadcast: row.IsBroadcast,
		ReadAt:      row.ReadAt,
		CreatedAt:   row.CreatedAt,
	}
}

func toMessages(rows []model.MessageRow) []entity.Message {
	messages := make([]entity.Message, len(rows))
	for i := range rows {
		messages[i] = toMessage(&rows[i])
	}
	return messages
}

func (r *messageRepository) Create(ctx context.Context, messages []*entity.Message) error {
	batch := make([]*model.MessageModel, len(messages))
	for i, m := range messages {
		batch[i] = toMessageModel(m)
	}
	if err := r.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return err
	}
	for i, m := range batch {
		messages[i].ID = m.ID
		messages[i].CreatedAt = m.CreatedAt
	}
	return nil
}

func (r *messageRepository) UserRole(ctx context.Context, userID string) (string, error) {
	var users []model.UserRoleModel
	if err := r.db.WithContext(ctx).Select("id", "role").Where("id = ?", userID).Limit(1).Find(&users).Error; err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", nil
	}
	return users[0].Role, nil
}

func (r *messageRepository) ActiveUserIDsByRole(ctx context.Context, role string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.UserRoleModel{}).
		Where("role = ? AND is_active = ?", role, true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

const messageColumns = `m.id, m.sender_id, u.username AS sender_name, m.recipient_id, m.title, m.content,
	m.is_broadcast, m.created_at`

// visibleTo selects the reader's direct messages plus broadcasts when the reader is a student.
func (r *messageRepository) visibleTo(ctx context.Context, reader entity.Reader) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("messages AS m").
		Joins("JOIN users AS u ON u.id = m.sender_id").
		Joins("LEFT JOIN message_reads AS mr ON mr.message_id = m.id AND mr.user_id = ?", reader.ID).
		Where("(m.recipient_id = ? OR (m.is_broadcast AND ?))", reader.ID, reader.Role == string(models.RoleStudent))
}

func (r *messageRepository) Inbox(ctx context.Context, reader entity.Reader, limit, offset int) ([]entity.Message, int64, error) {
	var total int64
	if err := r.visibleTo(ctx, reader).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.MessageRow
	err := r.visibleTo(ctx, reader).
		Select(messageColumns + ", CASE WHEN m.is_broadcast THEN mr.read_at ELSE m.read_at END AS read_at").
		Order("m.created_at DESC, m.id").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toMessages(rows), total, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, reader entity.Reader) (int64, error) {
	var count int64
	err := r.visibleTo(ctx, reader).
		Where("((m.is_broadcast AND mr.read_at IS NULL) OR (NOT m.is_broadcast AND m.read_at IS NULL))").
		Count(&count).Error
	return count, err
}

func (r *messageRepository) MarkRead(ctx context.Context, reader entity.Reader, messageID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		"UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ? AND recipient_id = ?",
		at, messageID, reader.ID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 || reader.Role != string(models.RoleStudent) {
		return res.RowsAffected > 0, nil
	}

	// The no-op DO UPDATE makes an already read broadcast count as affected.
	res = r.db.WithContext(ctx).Exec(`
		INSERT INTO message_reads (message_id, user_id, read_at)
		SELECT id, ?, ? FROM messages WHERE id = ? AND is_broadcast
		ON CONFLICT (message_id, user_id) DO UPDATE SET read_at = message_reads.read_at`,
		reader.ID, at, messageID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *messageRepository) Sent(ctx context.Context, senderID string, limit, offset int) ([]entity.Message, int64, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("m.sender_id = ?", senderID)
	}, limit, offset)
}

func (r *messageRepository) All(ctx context.Context, limit, offset int) ([]entity.Message, int64, error) {
	return r.page(ctx, func(db *gorm.DB) *gorm.DB { return db }, limit, offset)
}

func (r *messageRepository) page(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit, offset int) ([]entity.Message, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Table("messages AS m").
			Joins("JOIN users AS u ON u.id = m.sender_id").
			Scopes(scope)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.MessageRow
	err := base().
		Select(messageColumns + ", m.read_at").
		Order("m.created_at DESC, m.id").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toMessages(rows), total, nil
}

func (r *messageRepository) Delete(ctx context.Context, messageID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&model.MessageModel{})
	return res.RowsAffected > 0, res.Error
}
