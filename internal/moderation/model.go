// Package moderation provides paper flagging and the verdicts that resolve
// flags by dismissing or removing content.
package moderation

import (
	"errors"
	"time"
)

// Common errors for moderation operations.
var (
	ErrFlagNotFound  = errors.New("flag not found")
	ErrFlagExists    = errors.New("flag already exists for this paper")
	ErrFlagResolved  = errors.New("flag already resolved")
	ErrInvalidReason = errors.New("invalid flag reason")
)

// Flag reasons. Mirrors the choices moderation clients send.
const (
	ReasonSpam         = "SPAM"
	ReasonCopyright    = "COPYRIGHT"
	ReasonLowQuality   = "LOW_QUALITY"
	ReasonNotSpecified = "NOT_SPECIFIED"
)

// ValidReason reports whether reason is a recognized flag reason.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonSpam, ReasonCopyright, ReasonLowQuality, ReasonNotSpecified:
		return true
	}
	return false
}

// Flag is a user's report against a paper. At most one flag exists per
// (user, paper) pair.
type Flag struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	CreatedBy string    `json:"created_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_date"`
	VerdictID string    `json:"verdict_id,omitempty"` // Set once resolved
}

// Resolved reports whether the flag has a verdict.
func (f *Flag) Resolved() bool {
	return f.VerdictID != ""
}

// Verdict is a moderator's resolution of a flag. A removing verdict sets
// the paper's removed bit; a dismissing verdict records the rejection
// reason as NOT_<reason> and leaves the content up.
type Verdict struct {
	ID               string    `json:"id"`
	FlagID           string    `json:"flag_id"`
	CreatedBy        string    `json:"created_by"`
	Choice           string    `json:"verdict_choice"`
	IsContentRemoved bool      `json:"is_content_removed"`
	CreatedAt        time.Time `json:"created_date"`
}
