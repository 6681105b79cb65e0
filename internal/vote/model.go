// Package vote provides the vote model, repository, and the service that
// applies vote actions and notifies the recompute pipeline.
package vote

import (
	"errors"
	"time"
)

// Common errors for vote operations.
var (
	ErrVoteNotFound = errors.New("vote not found")
	ErrVoteExists   = errors.New("this vote already exists")
)

// Type is the direction of a vote.
type Type int

// Vote type constants. Values match the wire representation.
const (
	TypeUpvote   Type = 1
	TypeDownvote Type = 2
)

// String returns the wire name of the vote type.
func (t Type) String() string {
	switch t {
	case TypeUpvote:
		return "upvote"
	case TypeDownvote:
		return "downvote"
	default:
		return "unknown"
	}
}

// Valid reports whether the type is a recognized vote direction.
func (t Type) Valid() bool {
	return t == TypeUpvote || t == TypeDownvote
}

// Vote is a single user's vote on a paper. At most one vote exists per
// (voter, paper) pair; changing direction updates the row in place.
type Vote struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	CreatedBy string    `json:"created_by"`
	VoteType  Type      `json:"vote_type"`
	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"updated_date"`
}
