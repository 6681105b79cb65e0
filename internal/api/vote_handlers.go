package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/paper"
	"github.com/openscholar/paperhub/internal/vote"
)

// VoteHandlers holds dependencies for vote HTTP handlers.
type VoteHandlers struct {
	service *vote.Service
}

// NewVoteHandlers creates a new VoteHandlers instance.
func NewVoteHandlers(service *vote.Service) *VoteHandlers {
	return &VoteHandlers{
		service: service,
	}
}

// Upvote handles POST /papers/{id}/upvote.
func (h *VoteHandlers) Upvote(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, vote.TypeUpvote)
}

// Downvote handles POST /papers/{id}/downvote.
func (h *VoteHandlers) Downvote(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, vote.TypeDownvote)
}

// cast applies a vote in the given direction for the authenticated caller.
func (h *VoteHandlers) cast(w http.ResponseWriter, r *http.Request, voteType vote.Type) {
	paperID, userID, ok := h.voteContext(w, r)
	if !ok {
		return
	}

	var v *vote.Vote
	var err error
	if voteType == vote.TypeUpvote {
		v, err = h.service.Upvote(r.Context(), userID, paperID)
	} else {
		v, err = h.service.Downvote(r.Context(), userID, paperID)
	}
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrVoteExists):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeVoteExists)
			WriteError(w, ctx, http.StatusConflict, ErrCodeVoteExists, "This vote already exists")
		case errors.Is(err, paper.ErrPaperNotFound), errors.Is(err, paper.ErrPaperRemoved):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		default:
			slog.ErrorContext(r.Context(), "failed to apply vote",
				"paper_id", paperID,
				"vote_type", voteType.String(),
				"error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to apply vote")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, v)
}

// RemoveVote handles DELETE /papers/{id}/user_vote.
func (h *VoteHandlers) RemoveVote(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.voteContext(w, r)
	if !ok {
		return
	}

	v, err := h.service.Remove(r.Context(), userID, paperID)
	if err != nil {
		if errors.Is(err, vote.ErrVoteNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "No vote to remove")
			return
		}
		slog.ErrorContext(r.Context(), "failed to remove vote", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to remove vote")
		return
	}

	writeJSON(w, r, http.StatusOK, v)
}

// GetUserVote handles GET /papers/{id}/user_vote.
func (h *VoteHandlers) GetUserVote(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.voteContext(w, r)
	if !ok {
		return
	}

	v, err := h.service.Get(userID, paperID)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "No vote found")
		return
	}

	writeJSON(w, r, http.StatusOK, v)
}

// voteContext extracts the paper ID and caller identity shared by every
// vote endpoint, writing the error response on failure.
func (h *VoteHandlers) voteContext(w http.ResponseWriter, r *http.Request) (paperID, userID string, ok bool) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return "", "", false
	}

	userID = middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to vote")
		return "", "", false
	}
	return paperID, userID, true
}
