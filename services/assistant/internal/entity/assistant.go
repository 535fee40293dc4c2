package entity

import (
	"errors"
	"fmt"
)

// AIDailyQuestionLimit applies to non-premium users per UTC day.
const AIDailyQuestionLimit = 10

const ReasonDailyLimit = "AI_DAILY_LIMIT"

var (
	ErrInvalidMessages = errors.New("messages must be a non-empty list of user and assistant turns")
	ErrAIRateLimited   = errors.New("ai gateway rate limit exceeded")
	ErrAICredits       = errors.New("ai gateway credits exhausted")
	ErrAIGateway       = errors.New("ai gateway error")
	ErrAINotConfigured = errors.New("ai gateway is not configured")
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// QuotaError is returned when the daily question allowance is spent.
type QuotaError struct {
	Count int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("daily question limit reached (%d/%d)", e.Count, e.Limit)
}

type Answer struct {
	Reply         string `json:"reply"`
	QuestionCount int    `json:"question_count"`
	Limit         *int   `json:"limit,omitempty"`
}

type Usage struct {
	QuestionCount int  `json:"question_count"`
	Limit         *int `json:"limit,omitempty"`
	Premium       bool `json:"premium"`
}

type ConsumeOutcome string

const (
	OutcomeCreated     ConsumeOutcome = "created"
	OutcomeIncremented ConsumeOutcome = "incremented"
	OutcomeRejected    ConsumeOutcome = "rejected"
)

type ConsumeResult struct {
	Outcome ConsumeOutcome
	Count   int
}
