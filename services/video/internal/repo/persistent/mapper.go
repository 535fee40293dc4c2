package persistent

import (
	"learnflix/services/video/internal/entity"
	"learnflix/services/video/internal/model"
)

func ToVideoEntity(m *model.VideoModel) *entity.Video {
	if m == nil {
		return nil
	}

	video := &entity.Video{
		ID:              m.ID,
		TeacherID:       m.TeacherID,
		Title:           m.Title,
		Description:     m.Description,
		Category:        m.Category,
		VideoURL:        m.VideoURL,
		QualityHD:       m.QualityHD,
		QualityStandard: m.QualityStandard,
		Duration:        m.Duration,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.ThumbnailURL != nil {
		video.ThumbnailURL = *m.ThumbnailURL
	}
	return video
}

func ToVideoModel(e *entity.Video) *model.VideoModel {
	if e == nil {
		return nil
	}

	m := &model.VideoModel{
		ID:              e.ID,
		TeacherID:       e.TeacherID,
		Title:           e.Title,
		Description:     e.Description,
		Category:        e.Category,
		VideoURL:        e.VideoURL,
		QualityHD:       e.QualityHD,
		QualityStandard: e.QualityStandard,
		Duration:        e.Duration,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.ThumbnailURL != "" {
		thumbnail := e.ThumbnailURL
		m.ThumbnailURL = &thumbnail
	}
	return m
}

func ToViewRecord(m *model.ViewModel) entity.ViewRecord {
	return entity.ViewRecord{
		VideoID:      m.VideoID,
		ViewCount:    m.ViewCount,
		LastViewedAt: m.LastViewedAt,
	}
}

func ToVideoStats(row *model.VideoStatsRow) entity.VideoStats {
	return entity.VideoStats{
		VideoID:       row.VideoID,
		Title:         row.Title,
		TotalViews:    row.TotalViews,
		UniqueViewers: row.UniqueViewers,
		LastViewedAt:  row.LastViewedAt,
	}
}
