package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/openscholar/paperhub/internal/bookmark"
	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/paper"
)

// PaperChecker verifies a paper is present and visible.
type PaperChecker interface {
	Exists(id string) error
}

// BookmarkHandlers holds dependencies for bookmark HTTP handlers.
type BookmarkHandlers struct {
	repo   bookmark.Repository
	papers PaperChecker
}

// NewBookmarkHandlers creates a new BookmarkHandlers instance.
func NewBookmarkHandlers(repo bookmark.Repository, papers PaperChecker) *BookmarkHandlers {
	return &BookmarkHandlers{
		repo:   repo,
		papers: papers,
	}
}

// AddBookmark handles POST /papers/{id}/bookmark.
func (h *BookmarkHandlers) AddBookmark(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.bookmarkContext(w, r)
	if !ok {
		return
	}

	if err := h.papers.Exists(paperID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		return
	}

	b, err := h.repo.Add(userID, paperID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to add bookmark", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to add bookmark")
		return
	}

	writeJSON(w, r, http.StatusCreated, b)
}

// RemoveBookmark handles DELETE /papers/{id}/bookmark.
func (h *BookmarkHandlers) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.bookmarkContext(w, r)
	if !ok {
		return
	}

	if err := h.repo.Remove(userID, paperID); err != nil {
		if errors.Is(err, bookmark.ErrBookmarkNotFound) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "No bookmark to remove")
			return
		}
		slog.ErrorContext(r.Context(), "failed to remove bookmark", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to remove bookmark")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBookmarks handles GET /bookmarks - the caller's saved papers.
func (h *BookmarkHandlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to list bookmarks")
		return
	}

	bookmarks, err := h.repo.ListByUser(userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list bookmarks", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list bookmarks")
		return
	}
	if bookmarks == nil {
		bookmarks = []*bookmark.Bookmark{}
	}

	writeJSON(w, r, http.StatusOK, bookmarks)
}

// bookmarkContext extracts the paper ID and caller identity, writing the
// error response on failure.
func (h *BookmarkHandlers) bookmarkContext(w http.ResponseWriter, r *http.Request) (paperID, userID string, ok bool) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return "", "", false
	}

	userID = middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to bookmark")
		return "", "", false
	}
	return paperID, userID, true
}

var _ PaperChecker = (*paper.InMemoryRepository)(nil)
