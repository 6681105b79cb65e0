package api

import (
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openscholar/paperhub/internal/discussion"
	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/paper"
)

// MaxDiscussionTextLength caps thread and comment bodies.
const MaxDiscussionTextLength = 10000

// CreateThreadRequest represents the request body for starting a thread.
type CreateThreadRequest struct {
	Text string `json:"text"`
}

// CreateCommentRequest represents the request body for replying in a thread.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// DiscussionHandlers holds dependencies for discussion HTTP handlers.
type DiscussionHandlers struct {
	service *discussion.Service
}

// NewDiscussionHandlers creates a new DiscussionHandlers instance.
func NewDiscussionHandlers(service *discussion.Service) *DiscussionHandlers {
	return &DiscussionHandlers{
		service: service,
	}
}

// validateDiscussionText validates a thread or comment body.
// Returns error message if validation fails, empty string if valid.
func validateDiscussionText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "text is required"
	}
	if len(text) > MaxDiscussionTextLength {
		return "text must not exceed 10000 characters"
	}
	return ""
}

// CreateThread handles POST /papers/{id}/threads.
func (h *DiscussionHandlers) CreateThread(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to post")
		return
	}

	var req CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if errMsg := validateDiscussionText(req.Text); errMsg != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, errMsg)
		return
	}

	t := &discussion.Thread{
		PaperID:   paperID,
		CreatedBy: userID,
		Text:      html.EscapeString(strings.TrimSpace(req.Text)),
	}
	if err := h.service.CreateThread(r.Context(), t); err != nil {
		if errors.Is(err, paper.ErrPaperNotFound) || errors.Is(err, paper.ErrPaperRemoved) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create thread", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create thread")
		return
	}

	writeJSON(w, r, http.StatusCreated, t)
}

// ListThreads handles GET /papers/{id}/threads.
func (h *DiscussionHandlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return
	}

	threads, err := h.service.Threads(paperID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list threads", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list threads")
		return
	}
	if threads == nil {
		threads = []*discussion.Thread{}
	}

	writeJSON(w, r, http.StatusOK, threads)
}

// CreateComment handles POST /threads/{id}/comments.
func (h *DiscussionHandlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	threadID, err := ExtractPathID(r.URL.Path, "/threads/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Thread ID is required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to post")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if errMsg := validateDiscussionText(req.Text); errMsg != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, errMsg)
		return
	}

	c := &discussion.Comment{
		ThreadID:  threadID,
		CreatedBy: userID,
		Text:      html.EscapeString(strings.TrimSpace(req.Text)),
	}
	if err := h.service.CreateComment(r.Context(), c); err != nil {
		if errors.Is(err, discussion.ErrThreadNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Thread not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create comment", "thread_id", threadID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create comment")
		return
	}

	writeJSON(w, r, http.StatusCreated, c)
}
