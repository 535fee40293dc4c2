package entity

import (
	"errors"
	"time"
)

const MaxBypassReason = 500

var (
	ErrIPLimitReached     = errors.New("account limit reached for this network")
	ErrUnknownClientIP    = errors.New("client address is unknown")
	ErrBypassPending      = errors.New("a bypass request for this network is already pending")
	ErrBypassNotFound     = errors.New("bypass request not found")
	ErrBypassReviewed     = errors.New("bypass request was already reviewed")
	ErrInvalidBypassState = errors.New("invalid bypass request status")
)

type BypassStatus string

const (
	BypassPending  BypassStatus = "pending"
	BypassApproved BypassStatus = "approved"
	BypassRejected BypassStatus = "rejected"
	BypassUsed     BypassStatus = "used"
)

func (s BypassStatus) Valid() bool {
	switch s {
	case BypassPending, BypassApproved, BypassRejected, BypassUsed:
		return true
	}
	return false
}

// BypassRequest asks an admin to allow one more account of RequestedRole from IPAddress.
type BypassRequest struct {
	ID            string       `json:"id"`
	IPAddress     string       `json:"ip_address"`
	RequestedRole UserRole     `json:"requested_role"`
	Reason        string       `json:"reason"`
	Status        BypassStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	ReviewedAt    *time.Time   `json:"reviewed_at,omitempty"`
	ReviewedBy    *string      `json:"reviewed_by,omitempty"`
}
