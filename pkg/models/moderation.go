package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BannedUser struct {
	ID       string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID   string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BannedBy *string   `gorm:"type:uuid" json:"banned_by,omitempty"`
	Reason   string    `gorm:"type:text" json:"reason"`
	BannedAt time.Time `json:"banned_at"`
}

func (b *BannedUser) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

type TeacherInviteCode struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CodeHash  string    `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *TeacherInviteCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// HashInviteCode is the lookup key for teacher_invite_codes.code_hash.
func HashInviteCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

type AIUsage struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID        string    `gorm:"type:uuid;not null" json:"user_id"`
	UsageDate     time.Time `gorm:"type:date;not null" json:"usage_date"`
	QuestionCount int       `gorm:"not null;default:0" json:"question_count"`
}

func (AIUsage) TableName() string {
	return "ai_usage"
}

func (a *AIUsage) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
