// Package discussion provides thread and comment models for paper
// discussions, plus the activity counts consumed by ranking.
package discussion

import (
	"errors"
	"time"
)

// Common errors for discussion operations.
var (
	ErrThreadNotFound  = errors.New("thread not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Thread is a top-level discussion thread attached to a paper.
type Thread struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	CreatedBy string    `json:"created_by"`
	Text      string    `json:"text"`
	IsRemoved bool      `json:"is_removed"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a reply within a thread.
type Comment struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	PaperID   string    `json:"paper_id"`
	CreatedBy string    `json:"created_by"`
	Text      string    `json:"text"`
	IsRemoved bool      `json:"is_removed"`
	CreatedAt time.Time `json:"created_at"`
}
