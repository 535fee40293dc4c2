package persistent

import (
	"context"
	"errors"

	"learnflix/pkg/database"
	"learnflix/services/moderation/internal/entity"
	"learnflix/services/moderation/internal/model"

	"gorm.io/gorm"
)

type ModerationRepository interface {
	GetUserRole(ctx context.Context, userID string) (string, error)
	CreateBan(ctx context.Context, ban *entity.Ban) error
	DeleteBan(ctx context.Context, userID string) error
	ListBans(ctx context.Context) ([]*entity.Ban, error)
	ListBannedUserIDs(ctx context.Context) ([]string, error)
	GetVideo(ctx context.Context, videoID string) (*entity.VideoObjects, error)
	DeleteVideo(ctx context.Context, videoID string) error
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) GetUserRole(ctx context.Context, userID string) (string, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return "", entity.ErrUserNotFound
	}
	return roles[0], nil
}

func (r *moderationRepository) CreateBan(ctx context.Context, ban *entity.Ban) error {
	banModel := &model.BannedUserModel{
		UserID:   ban.UserID,
		BannedBy: ban.BannedBy,
		Reason:   ban.Reason,
	}
	if err := r.db.WithContext(ctx).Create(banModel).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return entity.ErrAlreadyBanned
		case database.IsForeignKeyViolation(err):
			return entity.ErrUserNotFound
		}
		return err
	}

	ban.ID = banModel.ID
	ban.BannedAt = banModel.BannedAt
	return nil
}

func (r *moderationRepository) DeleteBan(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.BannedUserModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrBanNotFound
	}
	return nil
}

func (r *moderationRepository) ListBans(ctx context.Context) ([]*entity.Ban, error) {
	var rows []model.BanRow
	err := r.db.WithContext(ctx).
		Table("banned_users b").
		Select("b.id, b.user_id, u.username, b.banned_by, b.reason, b.banned_at").
		Joins("JOIN users u ON u.id = b.user_id").
		Order("b.banned_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	bans := make([]*entity.Ban, len(rows))
	for i, row := range rows {
		bans[i] = &entity.Ban{
			ID:       row.ID,
			UserID:   row.UserID,
			Username: row.Username,
			BannedBy: row.BannedBy,
			Reason:   row.Reason,
			BannedAt: row.BannedAt,
		}
	}
	return bans, nil
}

func (r *moderationRepository) ListBannedUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.BannedUserModel{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *moderationRepository) GetVideo(ctx context.Context, videoID string) (*entity.VideoObjects, error) {
	var videoModel model.VideoModel
	if err := r.db.WithContext(ctx).Where("id = ?", videoID).First(&videoModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrVideoNotFound
		}
		return nil, err
	}

	video := &entity.VideoObjects{
		ID:        videoModel.ID,
		TeacherID: videoModel.TeacherID,
		VideoURL:  videoModel.VideoURL,
	}
	if videoModel.ThumbnailURL != nil {
		video.ThumbnailURL = *videoModel.ThumbnailURL
	}
	return video, nil
}

// DeleteVideo relies on ON DELETE CASCADE to drop the video's view counters.
func (r *moderationRepository) DeleteVideo(ctx context.Context, videoID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", videoID).Delete(&model.VideoModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrVideoNotFound
	}
	return nil
}
