package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openscholar/paperhub/internal/middleware"
	"github.com/openscholar/paperhub/internal/moderation"
	"github.com/openscholar/paperhub/internal/paper"
)

// FlagPaperRequest represents the request body for flagging a paper.
type FlagPaperRequest struct {
	Reason string `json:"reason"`
}

// ModerationHandlers holds dependencies for moderation HTTP handlers.
type ModerationHandlers struct {
	service *moderation.Service
}

// NewModerationHandlers creates a new ModerationHandlers instance.
func NewModerationHandlers(service *moderation.Service) *ModerationHandlers {
	return &ModerationHandlers{
		service: service,
	}
}

// FlagPaper handles POST /papers/{id}/flag.
func (h *ModerationHandlers) FlagPaper(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.flagContext(w, r)
	if !ok {
		return
	}

	var req FlagPaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Reason == "" {
		req.Reason = moderation.ReasonNotSpecified
	}

	f, err := h.service.FlagPaper(userID, paperID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrFlagExists):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeFlagExists)
			WriteError(w, ctx, http.StatusConflict, ErrCodeFlagExists, "You have already flagged this paper")
		case errors.Is(err, moderation.ErrInvalidReason):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid flag reason")
		case errors.Is(err, paper.ErrPaperNotFound), errors.Is(err, paper.ErrPaperRemoved):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Paper not found")
		default:
			slog.ErrorContext(r.Context(), "failed to flag paper", "paper_id", paperID, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to flag paper")
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, f)
}

// DeleteFlag handles DELETE /papers/{id}/flag - removes the caller's own flag.
func (h *ModerationHandlers) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	paperID, userID, ok := h.flagContext(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFlag(userID, paperID); err != nil {
		if moderation.IsNotFound(err) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "No flag to delete")
			return
		}
		if errors.Is(err, moderation.ErrFlagResolved) {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeFlagResolved)
			WriteError(w, ctx, http.StatusConflict, ErrCodeFlagResolved, "Flag already resolved")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete flag", "paper_id", paperID, "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to delete flag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveContent handles POST /moderation/flags/{id}/remove.
func (h *ModerationHandlers) RemoveContent(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// DismissFlag handles POST /moderation/flags/{id}/dismiss.
func (h *ModerationHandlers) DismissFlag(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

// resolve applies a verdict to a flag.
func (h *ModerationHandlers) resolve(w http.ResponseWriter, r *http.Request, remove bool) {
	flagID, err := ExtractPathID(r.URL.Path, "/moderation/flags/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Flag ID is required")
		return
	}

	moderatorID := middleware.GetUserID(r.Context())
	if moderatorID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to moderate")
		return
	}

	var v *moderation.Verdict
	if remove {
		v, err = h.service.RemoveFlaggedContent(r.Context(), moderatorID, flagID)
	} else {
		v, err = h.service.DismissFlaggedContent(moderatorID, flagID)
	}
	if err != nil {
		switch {
		case moderation.IsNotFound(err):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Flag not found")
		case errors.Is(err, moderation.ErrFlagResolved):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeFlagResolved)
			WriteError(w, ctx, http.StatusConflict, ErrCodeFlagResolved, "Flag already resolved")
		default:
			slog.ErrorContext(r.Context(), "failed to resolve flag", "flag_id", flagID, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to resolve flag")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, v)
}

// ListFlags handles GET /moderation/flags - unresolved flags, oldest first.
func (h *ModerationHandlers) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.service.Unresolved()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list flags", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to list flags")
		return
	}
	if flags == nil {
		flags = []*moderation.Flag{}
	}
	writeJSON(w, r, http.StatusOK, flags)
}

// CountFlags handles GET /moderation/flags/count.
func (h *ModerationHandlers) CountFlags(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnresolvedCount()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count flags", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to count flags")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"count": count})
}

// flagContext extracts the paper ID and caller identity shared by the flag
// endpoints, writing the error response on failure.
func (h *ModerationHandlers) flagContext(w http.ResponseWriter, r *http.Request) (paperID, userID string, ok bool) {
	paperID, err := ExtractPathID(r.URL.Path, "/papers/")
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Paper ID is required")
		return "", "", false
	}

	userID = middleware.GetUserID(r.Context())
	if userID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeForbidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeForbidden, "Identity required to flag")
		return "", "", false
	}
	return paperID, userID, true
}
