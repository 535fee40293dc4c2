package entity

import (
	"errors"
	"fmt"
)

type DenyReason string

const (
	ReasonViewLimitReached DenyReason = "VIEW_LIMIT_REACHED"
	ReasonNotFound         DenyReason = "NOT_FOUND"
	ReasonUnauthenticated  DenyReason = "UNAUTHENTICATED"
	ReasonInternalError    DenyReason = "INTERNAL_ERROR"
)

// Denial is the structured refusal returned by the evaluator and the gateway.
// CurrentCount and Limit are only set for VIEW_LIMIT_REACHED.
type Denial struct {
	Reason       DenyReason `json:"reason"`
	CurrentCount *int       `json:"current_count,omitempty"`
	Limit        *int       `json:"limit,omitempty"`

	cause error
}

func Deny(reason DenyReason) *Denial {
	return &Denial{Reason: reason}
}

func DenyWithCause(reason DenyReason, cause error) *Denial {
	return &Denial{Reason: reason, cause: cause}
}

func QuotaExceeded(currentCount, limit int) *Denial {
	return &Denial{
		Reason:       ReasonViewLimitReached,
		CurrentCount: &currentCount,
		Limit:        &limit,
	}
}

func (d *Denial) Error() string {
	switch {
	case d.Reason == ReasonViewLimitReached && d.CurrentCount != nil && d.Limit != nil:
		return fmt.Sprintf("view limit reached (%d/%d)", *d.CurrentCount, *d.Limit)
	case d.cause != nil:
		return fmt.Sprintf("playback denied: %s: %v", d.Reason, d.cause)
	default:
		return fmt.Sprintf("playback denied: %s", d.Reason)
	}
}

func (d *Denial) Unwrap() error {
	return d.cause
}

// AsDenial extracts a Denial from err. Anything else is an internal error.
func AsDenial(err error) *Denial {
	if err == nil {
		return nil
	}
	var denial *Denial
	if errors.As(err, &denial) {
		return denial
	}
	return DenyWithCause(ReasonInternalError, err)
}
