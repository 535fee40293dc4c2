package persistent

import (
	"learnflix/services/auth/internal/entity"
	"learnflix/services/auth/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Username:  m.Username,
		Password:  m.Password,
		AvatarURL: m.AvatarURL,
		Role:      entity.UserRole(m.Role),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:        e.ID,
		Email:     e.Email,
		Username:  e.Username,
		Password:  e.Password,
		AvatarURL: e.AvatarURL,
		Role:      string(e.Role),
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToBypassRequestEntity(m *model.BypassRequestModel) *entity.BypassRequest {
	return &entity.BypassRequest{
		ID:            m.ID,
		IPAddress:     m.IPAddress,
		RequestedRole: entity.UserRole(m.RequestedRole),
		Reason:        m.Reason,
		Status:        entity.BypassStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		ReviewedAt:    m.ReviewedAt,
		ReviewedBy:    m.ReviewedBy,
	}
}
