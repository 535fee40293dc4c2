package entity

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrCannotBanSelf  = errors.New("you cannot ban yourself")
	ErrCannotBanAdmin = errors.New("admins cannot be banned")
	ErrAlreadyBanned  = errors.New("user is already banned")
	ErrBanNotFound    = errors.New("user is not banned")
	ErrVideoNotFound  = errors.New("video not found")
)

type Ban struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username,omitempty"`
	BannedBy *string   `json:"banned_by,omitempty"`
	Reason   string    `json:"reason"`
	BannedAt time.Time `json:"banned_at"`
}

// VideoObjects is the part of a video row needed to remove it from storage.
type VideoObjects struct {
	ID           string
	TeacherID    string
	VideoURL     string
	ThumbnailURL string
}
