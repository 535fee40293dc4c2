package persistent

import (
	"learnflix/services/playback/internal/entity"
	"learnflix/services/playback/internal/model"
)

func ToVideoEntity(m *model.VideoModel) *entity.Video {
	if m == nil {
		return nil
	}

	video := &entity.Video{
		ID:        m.ID,
		TeacherID: m.TeacherID,
		Title:     m.Title,
		VideoURL:  m.VideoURL,
	}
	if m.ThumbnailURL != nil {
		video.ThumbnailURL = *m.ThumbnailURL
	}
	return video
}

func ToSubscriptionEntity(m *model.SubscriptionModel) *entity.Subscription {
	if m == nil {
		return nil
	}

	return &entity.Subscription{
		ID:        m.ID,
		UserID:    m.UserID,
		IsActive:  m.IsActive,
		StartedAt: m.StartedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
