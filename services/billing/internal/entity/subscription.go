package entity

import (
	"errors"
	"time"
)

var (
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderTaken          = errors.New("order belongs to another account")
	ErrPaymentGateway      = errors.New("payment provider unavailable")
)

type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IsActive  bool      `json:"is_active"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
	OrderID   string    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveAt uses the same inclusive expiry as the playback entitlement check.
func (s Subscription) ActiveAt(t time.Time) bool {
	return s.IsActive && !s.ExpiresAt.Before(t)
}

type Status struct {
	Premium   bool       `json:"premium"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Order struct {
	ID       string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}
