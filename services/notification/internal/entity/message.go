package entity

import (
	"errors"
	"time"
)

const (
	MaxMessageTitle   = 200
	MaxMessageContent = 5000
)

var (
	ErrEmptyMessage      = errors.New("title and content are required")
	ErrMessageTooLong    = errors.New("message is too long")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrInvalidRecipient  = errors.New("teachers can only message students")
	ErrNoRecipients      = errors.New("no teachers to receive the message")
	ErrSendForbidden     = errors.New("this role cannot send messages")
	ErrMessageNotFound   = errors.New("message not found")
)

// Message is either addressed to one user or, with IsBroadcast set and no
// RecipientID, visible to every student.
type Message struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	SenderName  string     `json:"sender_name,omitempty"`
	RecipientID *string    `json:"recipient_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsBroadcast bool       `json:"is_broadcast"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Draft struct {
	Title       string
	Content     string
	RecipientID string
}

// Reader is the caller whose inbox is being read. Broadcasts reach students only.
type Reader struct {
	ID   string
	Role string
}
