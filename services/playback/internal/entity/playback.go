package entity

import (
	"errors"
	"time"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrUserNotFound  = errors.New("user not found")
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type Video struct {
	ID           string
	TeacherID    string
	Title        string
	VideoURL     string
	ThumbnailURL string
}

type Subscription struct {
	ID        string
	UserID    string
	IsActive  bool
	StartedAt time.Time
	ExpiresAt time.Time
}

// ActiveAt is the premium predicate: active and not yet past expiry (inclusive).
func (s Subscription) ActiveAt(t time.Time) bool {
	return s.IsActive && !s.ExpiresAt.Before(t)
}

type ConsumeOutcome string

const (
	OutcomeCreated     ConsumeOutcome = "created"
	OutcomeIncremented ConsumeOutcome = "incremented"
	OutcomeRejected    ConsumeOutcome = "rejected"
)

// ConsumeResult is what the atomic view upsert reports back.
type ConsumeResult struct {
	Outcome ConsumeOutcome
	Count   int
}

type ViewAllowance struct {
	ViewCount int
	Premium   bool
}

type PlaybackGrant struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	ViewCount *int      `json:"view_count,omitempty"`
	Limit     *int      `json:"limit,omitempty"`
	Bypass    bool      `json:"bypass"`
}

type Entitlement struct {
	Premium       bool       `json:"premium"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	FreeViewLimit int        `json:"free_view_limit"`
}

type PlaybackState string

const (
	StateRequested  PlaybackState = "REQUESTED"
	StateEvaluating PlaybackState = "EVALUATING"
	StateAllowed    PlaybackState = "ALLOWED"
	StateURLIssued  PlaybackState = "URL_ISSUED"
	StateDenied     PlaybackState = "DENIED"
)
