package entity

import "errors"

var ErrInvalidTask = errors.New("invalid notification task")

const (
	TypeSubscriptionActivated = "subscription_activated"
	TypeViewLimitReached      = "view_limit_reached"
	TypeAccountRestored       = "account_restored"
	TypeMessageReceived       = "message_received"
)

// Notification is stored newest first in a per-user Redis list.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"created_at"`
}
