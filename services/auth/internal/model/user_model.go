package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	AvatarURL string    `gorm:"type:varchar(500)" json:"avatar_url"`
	Role      string    `gorm:"type:varchar(20);default:'student'" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

type InviteCodeModel struct {
	ID        string `gorm:"type:uuid;primary_key"`
	CodeHash  string `gorm:"type:char(64);uniqueIndex;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (InviteCodeModel) TableName() string {
	return "teacher_invite_codes"
}

type BannedUserModel struct {
	ID     string `gorm:"type:uuid;primary_key"`
	UserID string `gorm:"type:uuid;uniqueIndex;not null"`
}

func (BannedUserModel) TableName() string {
	return "banned_users"
}
